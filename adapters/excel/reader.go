package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"csvclean/domain/table"
	"csvclean/internal"
	"csvclean/internal/errors"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// DataReader reads CSV and Excel files into a table
type DataReader struct {
	filePath string
	fileType FileType
	config   Config
	logger   *internal.Logger
}

// NewDataReader creates a reader for filePath using the default config
func NewDataReader(filePath string) *DataReader {
	return NewDataReaderWithConfig(filePath, DefaultConfig(), internal.DefaultLogger)
}

// NewDataReaderWithConfig creates a reader with explicit options
func NewDataReaderWithConfig(filePath string, config Config, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.Comma == 0 {
		config.Comma = ','
	}
	return &DataReader{
		filePath: filePath,
		fileType: DetectFileType(filePath),
		config:   config,
		logger:   logger.With("DataReader"),
	}
}

// ReadTable loads the whole file. The first record is the header row.
// Rows shorter than the header are padded with empty values.
func (r *DataReader) ReadTable() (table.Table, error) {
	r.logger.Debug("reading %s file: %s", r.fileType, r.filePath)

	start := time.Now()
	var (
		records [][]string
		err     error
	)
	switch r.fileType {
	case FileTypeXLSX:
		records, err = r.readExcelRecords()
	default:
		records, err = r.readCSVRecords()
	}
	if err != nil {
		return table.Table{}, err
	}

	t := buildTable(tableName(r.filePath), records)
	for _, h := range duplicateHeaders(t.Headers) {
		r.logger.Warn("%s: duplicate column %q, lookups by name use the first one", r.filePath, h)
	}
	r.logger.Info("%s loaded in %.2fms (%d columns, %d rows)",
		r.filePath, float64(time.Since(start).Nanoseconds())/1e6, t.Width(), t.Len())
	return t, nil
}

func (r *DataReader) readCSVRecords() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	defer file.Close()

	records, err := ReadCSV(file, r.config.Comma)
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	return records, nil
}

// ReadCSV parses all records from src, tolerating ragged rows
func ReadCSV(src io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return records, nil
}

func (r *DataReader) readExcelRecords() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	defer f.Close()

	sheet := r.config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.IOError(r.filePath, fmt.Errorf("failed to read sheet %q: %w", sheet, err))
	}
	return rows, nil
}

// buildTable turns raw records into a table; the first record is the header
func buildTable(name string, records [][]string) table.Table {
	if len(records) == 0 {
		return table.New(name, nil, nil)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]table.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, table.Row(record))
	}
	return table.New(name, headers, rows)
}

// duplicateHeaders lists every header name that occurs more than once, in
// order of its second occurrence
func duplicateHeaders(headers []string) []string {
	seen := make(map[string]int, len(headers))
	var dups []string
	for _, h := range headers {
		seen[h]++
		if seen[h] == 2 {
			dups = append(dups, h)
		}
	}
	return dups
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
