package ports

import (
	"context"

	"csvclean/domain/table"
)

// TableReader loads a complete table from its source
type TableReader interface {
	ReadTable() (table.Table, error)
}

// TableWriter persists a table; it reports false when nothing was written
type TableWriter interface {
	WriteTable(t table.Table) (bool, error)
}

// TableSink receives a copy of every cleaned table and returns where it went
type TableSink interface {
	Store(ctx context.Context, jobName string, t table.Table) (string, error)
}
