package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"csvclean/domain/table"
	"csvclean/internal"
	"csvclean/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataWriter writes tables as CSV or Excel files
type DataWriter struct {
	filePath string
	fileType FileType
	config   Config
	logger   *internal.Logger
}

// NewDataWriter creates a writer for filePath using the default config
func NewDataWriter(filePath string) *DataWriter {
	return NewDataWriterWithConfig(filePath, DefaultConfig(), internal.DefaultLogger)
}

// NewDataWriterWithConfig creates a writer with explicit options
func NewDataWriterWithConfig(filePath string, config Config, logger *internal.Logger) *DataWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.Comma == 0 {
		config.Comma = ','
	}
	return &DataWriter{
		filePath: filePath,
		fileType: DetectFileType(filePath),
		config:   config,
		logger:   logger.With("DataWriter"),
	}
}

// WriteTable saves t with its header row. A table without rows or without
// columns is not written; the returned flag reports whether a file was produced.
func (w *DataWriter) WriteTable(t table.Table) (bool, error) {
	if t.IsEmpty() {
		w.logger.Warn("%q has no rows left, skipping %s", t.Name, w.filePath)
		return false, nil
	}
	if t.Width() == 0 {
		w.logger.Warn("%q has no columns left, skipping %s", t.Name, w.filePath)
		return false, nil
	}

	if dir := filepath.Dir(w.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, errors.IOError(dir, err)
		}
	}

	var err error
	switch w.fileType {
	case FileTypeXLSX:
		err = w.writeExcel(t)
	default:
		err = w.writeCSVFile(t)
	}
	if err != nil {
		return false, err
	}

	w.logger.Info("wrote %d rows to %s", t.Len(), w.filePath)
	return true, nil
}

func (w *DataWriter) writeCSVFile(t table.Table) error {
	file, err := os.Create(w.filePath)
	if err != nil {
		return errors.IOError(w.filePath, err)
	}

	if err := WriteCSV(file, t, w.config.Comma); err != nil {
		file.Close()
		return errors.IOError(w.filePath, err)
	}
	if err := file.Close(); err != nil {
		return errors.IOError(w.filePath, err)
	}
	return nil
}

// WriteCSV encodes the header row followed by every data row
func WriteCSV(dst io.Writer, t table.Table, comma rune) error {
	writer := csv.NewWriter(dst)
	writer.Comma = comma

	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (w *DataWriter) writeExcel(t table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := defaultSheetName
	if w.config.SheetName != "" && w.config.SheetName != defaultSheetName {
		if err := f.SetSheetName(defaultSheetName, w.config.SheetName); err != nil {
			return errors.IOError(w.filePath, err)
		}
		sheet = w.config.SheetName
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return errors.IOError(w.filePath, err)
	}

	if err := streamRow(sw, 1, t.Headers); err != nil {
		return errors.IOError(w.filePath, err)
	}
	for i, row := range t.Rows {
		if err := streamRow(sw, i+2, row); err != nil {
			return errors.IOError(w.filePath, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return errors.IOError(w.filePath, err)
	}
	if err := f.SaveAs(w.filePath); err != nil {
		return errors.IOError(w.filePath, err)
	}
	return nil
}

func streamRow(sw *excelize.StreamWriter, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return sw.SetRow(cell, cells)
}
