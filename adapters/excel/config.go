package excel

// Config holds format options shared by readers and writers
type Config struct {
	SheetName string // xlsx sheet to read or write; empty reads the first sheet
	Comma     rune   // csv field delimiter
}

// DefaultConfig returns sensible defaults for CSV and Excel files
func DefaultConfig() Config {
	return Config{
		SheetName: "",
		Comma:     ',',
	}
}

const defaultSheetName = "Sheet1"
