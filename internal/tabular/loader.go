package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"quartermaps/config"
)

// ErrUnsupportedFormat is returned for file extensions no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// Encoding selects the byte decoding applied to delimited files.
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingCP1251 Encoding = "cp1251"
)

// Options tune the delimited-file parsers. The zero value means comma
// delimited UTF-8.
type Options struct {
	Delimiter rune
	Encoding  Encoding
}

// Load reads a tabular dataset, dispatching on the file extension:
// .csv (comma), .tsv (tab), .xlsx (first sheet), .parquet. The file must
// exist before any parse is attempted.
func Load(path string, opts Options) (*Table, error) {
	path, err := config.Require(path)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		if opts.Delimiter == 0 {
			opts.Delimiter = ','
		}
		return loadDelimited(path, opts)
	case ".tsv":
		opts.Delimiter = '\t'
		return loadDelimited(path, opts)
	case ".xlsx":
		return loadXLSX(path)
	case ".parquet":
		return loadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// LoadLegacy reads a delimited file of unknown delimiter/encoding, trying
// comma+UTF-8, then semicolon+cp1251, then semicolon+UTF-8, and accepting
// the first attempt whose column set contains requiredColumn.
func LoadLegacy(path string, requiredColumn string) (*Table, error) {
	path, err := config.Require(path)
	if err != nil {
		return nil, err
	}

	attempts := []Options{
		{Delimiter: ',', Encoding: EncodingUTF8},
		{Delimiter: ';', Encoding: EncodingCP1251},
		{Delimiter: ';', Encoding: EncodingUTF8},
	}
	for _, opts := range attempts {
		table, err := loadDelimited(path, opts)
		if err != nil {
			continue
		}
		if table.HasColumn(requiredColumn) {
			return table, nil
		}
	}
	return nil, fmt.Errorf(
		"column %q not found in %s (tried comma/UTF-8, semicolon/cp1251, semicolon/UTF-8)",
		requiredColumn, path)
}

func loadDelimited(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if opts.Encoding == EncodingCP1251 {
		r = charmap.Windows1251.NewDecoder().Reader(f)
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	table := &Table{Columns: header}
	for _, rec := range records[1:] {
		table.Rows = append(table.Rows, padRow(rec, len(header)))
	}
	return table, nil
}

func loadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	table := &Table{Columns: rows[0]}
	for _, row := range rows[1:] {
		table.Rows = append(table.Rows, padRow(row, len(rows[0])))
	}
	return table, nil
}

func loadParquet(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file %s: %w", path, err)
	}

	var columns []string
	for _, field := range pf.Schema().Fields() {
		columns = append(columns, field.Name())
	}

	table := &Table{Columns: columns}
	buf := make([]parquet.Row, 64)
	for _, group := range pf.RowGroups() {
		rows := group.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, rec := range buf[:n] {
				row := make([]string, len(columns))
				for _, v := range rec {
					if col := v.Column(); col >= 0 && col < len(row) {
						row[col] = formatValue(v)
					}
				}
				table.Rows = append(table.Rows, row)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to read parquet rows from %s: %w", path, err)
			}
		}
		rows.Close()
	}
	return table, nil
}

// formatValue renders a parquet leaf value as a cell, nulls as the empty
// string.
func formatValue(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	default:
		return v.String()
	}
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
