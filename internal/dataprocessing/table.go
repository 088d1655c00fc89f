package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

// TableOptions are the load options shared by every table source. Columns
// stay as text so that numeric coercion happens in DecodeRecords only.
func TableOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	}
}

// DecodeCSV reads a comma separated table with a header row.
func DecodeCSV(r io.Reader) ([]domain.Record, LoadStats, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("decode table: %w", err)
	}
	return DecodeRecords(loadFrame(rows))
}

// DecodeRows decodes a table given as rows of cells, header first. Short
// rows are padded with empty cells and extra cells are dropped, as
// spreadsheet exports trim trailing blanks.
func DecodeRows(rows [][]string) ([]domain.Record, LoadStats, error) {
	return DecodeRecords(loadFrame(squareRows(rows)))
}

// loadFrame builds the text frame for rows. A header without data rows is
// an empty table, not an error.
func loadFrame(rows [][]string) dataframe.DataFrame {
	if len(rows) != 1 {
		return dataframe.LoadRecords(rows, TableOptions()...)
	}
	cols := make([]series.Series, len(rows[0]))
	for i, name := range rows[0] {
		cols[i] = series.New([]string{}, series.String, name)
	}
	return dataframe.New(cols...)
}

func squareRows(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	width := len(rows[0])
	out := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) == width {
			out[i] = row
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}
