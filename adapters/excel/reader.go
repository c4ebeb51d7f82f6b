package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"corrscreen/domain/core"
	"corrscreen/internal"
	"corrscreen/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	config   ReaderConfig
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config ReaderConfig, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	fileType := "csv"
	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		fileType = "xlsx"
	case ".tsv", ".tab":
		if config.Delimiter == "" {
			config.Delimiter = "\t"
		}
	}
	return &DataReader{config: config, fileType: fileType, logger: logger}
}

// FileType returns "csv" or "xlsx"
func (r *DataReader) FileType() string {
	return r.fileType
}

// ReadData reads the file into header plus rows
func (r *DataReader) ReadData() (*RawData, error) {
	r.logger.Debug("reading %s file: %s", r.fileType, r.config.FilePath)

	if _, err := os.Stat(r.config.FilePath); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithCode(errors.CodeNotFound, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.config.FilePath))
		}
		return nil, errors.IOError(r.config.FilePath, err)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, r.fileType)
	}
}

// readExcelData reads the configured (or first) sheet
func (r *DataReader) readExcelData() (*RawData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.config.FilePath)
	if err != nil {
		return nil, errors.IOError(r.config.FilePath, err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
	}
	r.logger.Debug("sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// readCSVData reads delimited text
func (r *DataReader) readCSVData() (*RawData, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, errors.IOError(r.config.FilePath, err)
	}
	defer file.Close()

	return r.readCSV(file)
}

func (r *DataReader) readCSV(src io.Reader) (*RawData, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if r.config.Delimiter != "" {
		delim, size := utf8.DecodeRuneInString(r.config.Delimiter)
		if size != len(r.config.Delimiter) {
			return nil, errors.InvalidInput(fmt.Sprintf("delimiter must be a single character, got %q", r.config.Delimiter))
		}
		reader.Comma = delim
	}

	startTime := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read CSV file: %w", err))
	}
	r.logger.Debug("CSV read in %.2fms (%d rows)", float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows pads short rows, rejects long ones and de-duplicates headers
func (r *DataReader) processRows(rows [][]string) (*RawData, error) {
	if len(rows) < 2 {
		return nil, errors.WithCode(errors.CodeInvalidInput,
			fmt.Errorf("%w: file must have a header row and at least one data row", core.ErrInsufficientData))
	}

	headers := dedupeHeaders(rows[0])
	width := len(headers)

	data := make([][]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) > width {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d has %d fields, header has %d", i+2, len(row), width))
		}
		cells := make([]string, width)
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		data = append(data, cells)
	}

	r.logger.Debug("%s processed (%d columns, %d rows)", strings.ToUpper(r.fileType), width, len(data))

	return &RawData{
		Source:  r.config.FilePath,
		Headers: headers,
		Rows:    data,
	}, nil
}

// dedupeHeaders trims names, names blank headers "Unnamed: i" and suffixes
// repeats as name.1, name.2, ...
func dedupeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	next := make(map[string]int)
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for used[candidate] {
			next[name]++
			candidate = fmt.Sprintf("%s.%d", name, next[name])
		}
		used[candidate] = true
		headers[i] = candidate
	}
	return headers
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
