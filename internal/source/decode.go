package source

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/acspacelit/indicadores/internal/dataprocessing"
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

var zipMagic = []byte("PK\x03\x04")

// detectFormat resolves FormatAuto from the payload, the resource name and
// the declared content type. Anything that is not a workbook is read as
// CSV.
func detectFormat(format, name, contentType string, body []byte) string {
	if format != "" && format != FormatAuto {
		return format
	}
	switch {
	case bytes.HasPrefix(body, zipMagic):
		return FormatXLSX
	case strings.EqualFold(path.Ext(name), ".xlsx"):
		return FormatXLSX
	case strings.Contains(contentType, "spreadsheetml"):
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// readLimited reads r fully, failing once more than limit bytes arrive.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("table exceeds %d bytes", limit)
	}
	return body, nil
}

// decodeTable decodes a CSV or XLSX payload.
func decodeTable(body []byte, format, sheet string) ([]domain.Record, dataprocessing.LoadStats, error) {
	switch format {
	case FormatXLSX:
		rows, err := workbookRows(body, sheet)
		if err != nil {
			return nil, dataprocessing.LoadStats{}, err
		}
		return decodeRowsChecked(rows)
	case FormatCSV:
		return dataprocessing.DecodeCSV(bytes.NewReader(body))
	default:
		return nil, dataprocessing.LoadStats{}, fmt.Errorf("unsupported format %q", format)
	}
}

// workbookRows returns the rows of sheet, or of the first sheet when sheet
// is empty.
func workbookRows(body []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// decodeRowsChecked rejects a table without even a header row.
func decodeRowsChecked(rows [][]string) ([]domain.Record, dataprocessing.LoadStats, error) {
	if len(rows) == 0 {
		return nil, dataprocessing.LoadStats{}, fmt.Errorf("table is empty")
	}
	return dataprocessing.DecodeRows(rows)
}
