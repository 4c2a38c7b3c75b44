package excel

import (
	"path/filepath"
	"strings"
)

// FileType identifies a supported tabular file format
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// DetectFileType picks the format from the file extension. Anything that is
// not .xlsx is treated as CSV.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FileTypeXLSX
	default:
		return FileTypeCSV
	}
}
