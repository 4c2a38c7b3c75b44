package postgres

import (
	"context"
	"fmt"
	"strings"

	"csvclean/domain/table"
	"csvclean/internal"
	"csvclean/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// maxIdentifierLength is the Postgres NAMEDATALEN limit minus the terminator
const maxIdentifierLength = 63

// TableSink copies cleaned tables into Postgres, one TEXT column per header
type TableSink struct {
	db     *sqlx.DB
	prefix string
	logger *internal.Logger
}

// Connect opens and pings a Postgres connection
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	return db, nil
}

// NewTableSink creates a sink writing tables named <prefix><job name>
func NewTableSink(db *sqlx.DB, prefix string, logger *internal.Logger) *TableSink {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TableSink{db: db, prefix: prefix, logger: logger.With("TableSink")}
}

// TableName returns the sanitized database table name for a job
func (s *TableSink) TableName(jobName string) string {
	return sanitizeIdentifier(s.prefix+jobName, "cleaned_table")
}

// Store replaces the job's table with the rows of t inside one transaction
// and returns the table name used. Tables without rows or columns are not
// stored and yield an empty name.
func (s *TableSink) Store(ctx context.Context, jobName string, t table.Table) (string, error) {
	name := s.TableName(jobName)
	if !t.HasData() {
		s.logger.Warn("%q has no cells to store (%d rows, %d columns), skipping %s", jobName, t.Len(), t.Width(), name)
		return "", nil
	}
	columns := columnNames(t.Headers)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	quotedTable := pq.QuoteIdentifier(name)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quotedTable); err != nil {
		return "", errors.DatabaseError(fmt.Sprintf("failed to drop table %s", name), err)
	}

	definitions := make([]string, len(columns))
	quotedColumns := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quotedColumns[i] = pq.QuoteIdentifier(c)
		definitions[i] = quotedColumns[i] + " TEXT"
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s)", quotedTable, strings.Join(definitions, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return "", errors.DatabaseError(fmt.Sprintf("failed to create table %s", name), err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quotedTable, strings.Join(quotedColumns, ", "), strings.Join(placeholders, ", "))
	stmt, err := tx.PreparexContext(ctx, insert)
	if err != nil {
		return "", errors.DatabaseError(fmt.Sprintf("failed to prepare insert into %s", name), err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		args := make([]interface{}, len(row))
		for j, v := range row {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return "", errors.DatabaseError(fmt.Sprintf("failed to insert row %d into %s", i+1, name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.DatabaseError(fmt.Sprintf("failed to commit table %s", name), err)
	}

	s.logger.Info("stored %d rows in %s", t.Len(), name)
	return name, nil
}

// columnNames makes headers usable as column names: blank headers get a
// positional name and repeated names get a numeric suffix
func columnNames(headers []string) []string {
	seen := make(map[string]int, len(headers))
	names := make([]string, len(headers))
	for i, h := range headers {
		name := sanitizeIdentifier(h, fmt.Sprintf("column_%d", i+1))
		if seen[name] > 0 {
			base := name
			for n := seen[base] + 1; seen[name] > 0; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
			}
			seen[base]++
		}
		seen[name]++
		names[i] = name
	}
	return names
}

// sanitizeIdentifier lowercases s and replaces anything outside [a-z0-9_]
func sanitizeIdentifier(s, fallback string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	name := b.String()
	if name == "" {
		name = fallback
	}
	if len(name) > maxIdentifierLength {
		name = name[:maxIdentifierLength]
	}
	return name
}
