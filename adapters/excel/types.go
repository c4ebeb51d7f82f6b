package excel

// RawData is a delimited or spreadsheet file as header plus string cells.
// Every row has exactly len(Headers) cells.
type RawData struct {
	Source  string     // file path
	Headers []string   // column headers, de-duplicated
	Rows    [][]string // data rows
}

// Column returns the raw cells of column i
func (d *RawData) Column(i int) []string {
	out := make([]string, len(d.Rows))
	for r, row := range d.Rows {
		out[r] = row[i]
	}
	return out
}
