package recipients

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
	"github.com/knieriem/odf/ods"
	"github.com/xuri/excelize/v2"
)

type Format int

const (
	FormatCSV Format = iota
	FormatTSV
	FormatXLSX
	FormatXLS
	FormatODS
)

const (
	xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsMIME  = "application/vnd.ms-excel"
	odsMIME  = "application/vnd.oasis.opendocument.spreadsheet"
)

// Detect sniffs the file content, not the extension. Anything that isn't
// delimited text or a spreadsheet is rejected with UnreadableFileError.
func Detect(filename string, data []byte) (Format, error) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is(xlsxMIME):
		return FormatXLSX, nil
	case mt.Is(xlsMIME):
		return FormatXLS, nil
	case mt.Is(odsMIME):
		return FormatODS, nil
	case mt.Is("text/tab-separated-values"):
		return FormatTSV, nil
	case mt.Is("text/csv"), mt.Is("text/plain"), mt.Is("inode/x-empty"):
		return FormatCSV, nil
	}
	return 0, UnreadableFileError{Filename: filename}
}

// Parse reads the uploaded bytes into rows of raw cells. Cell values are
// whitespace-trimmed; fully empty trailing rows are dropped.
func Parse(filename string, data []byte) ([][]string, error) {
	format, err := Detect(filename, data)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch format {
	case FormatXLSX:
		records, err = parseXLSX(data)
	case FormatXLS:
		records, err = parseXLS(data)
	case FormatODS:
		records, err = parseODS(data)
	default:
		records, err = parseDelimited(data, format)
	}
	if err != nil {
		return nil, UnreadableFileError{Filename: filename}
	}
	return trimRecords(records), nil
}

func parseDelimited(data []byte, format Format) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	r := csv.NewReader(bytes.NewReader(data))
	if format == FormatTSV {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func parseXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, excelize.ErrSheetNotExist{SheetName: ""}
	}
	return f.GetRows(sheets[0])
}

func parseXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("xls: no sheets")
	}
	var records [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		records = append(records, cells)
	}
	return records, nil
}

func parseODS(data []byte) ([][]string, error) {
	r, err := ods.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	var doc ods.Doc
	if err := r.ParseContent(&doc); err != nil {
		return nil, err
	}
	if len(doc.Table) == 0 {
		return nil, errors.New("ods: no sheets")
	}
	return doc.Table[0].Strings(), nil
}

func trimRecords(records [][]string) [][]string {
	out := make([][]string, 0, len(records))
	for _, rec := range records {
		trimmed := make([]string, len(rec))
		empty := true
		for i, cell := range rec {
			trimmed[i] = strings.TrimSpace(cell)
			if trimmed[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// ToCSV renders parsed rows back to canonical CSV (CRLF line endings); this
// is what gets written to the object store regardless of the uploaded format.
func ToCSV(records [][]string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	for _, rec := range records {
		_ = w.Write(rec)
	}
	w.Flush()
	return buf.String()
}
