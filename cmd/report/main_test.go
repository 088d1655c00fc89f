package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acspacelit/indicadores/internal/charts"
	"github.com/acspacelit/indicadores/internal/config"
	"github.com/acspacelit/indicadores/internal/exporter"
	"github.com/acspacelit/indicadores/internal/shared/testutil"
)

func writeStations(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stations.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.StationsCSV(testutil.ExampleRows...)), 0o644))
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "defaults",
			args: nil,
			want: options{output: outputJSON},
		},
		{
			name: "selection and output",
			args: []string{"-file", "a.csv", "-from", "2020", "-to", "2021", "-station", "Vigencia", "-country", "Bolivia,Brasil", "-output", "csv", "-out", "dir"},
			want: options{file: "a.csv", from: 2020, to: 2021, station: "Vigencia", countries: "Bolivia,Brasil", output: outputCSV, out: "dir"},
		},
		{
			name:    "unknown output",
			args:    []string{"-output", "pdf"},
			wantErr: true,
		},
		{
			name:    "bad year",
			args:    []string{"-from", "veinte"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptions_Query(t *testing.T) {
	q := options{from: 2020, station: "Vigencia", countries: "Bolivia,Brasil"}.query()
	require.NotNil(t, q.From)
	assert.Equal(t, 2020, *q.From)
	assert.Nil(t, q.To)
	assert.Equal(t, "Vigencia", q.Station)
	assert.Equal(t, []string{"Bolivia", "Brasil"}, q.Countries)

	assert.Nil(t, options{}.query().Countries)
}

func TestOptions_SourceConfig(t *testing.T) {
	base := config.SourceConfig{URL: "https://example.com/data.csv", SpreadsheetID: "abc"}

	cfg := options{file: "local.xlsx", sheet: "Datos"}.sourceConfig(base)
	assert.Equal(t, "file", cfg.Kind())
	assert.Equal(t, "Datos", cfg.Sheet)

	cfg = options{url: "https://example.com/other.csv"}.sourceConfig(base)
	assert.Equal(t, "url", cfg.Kind())
	assert.Equal(t, "https://example.com/other.csv", cfg.URL)
}

func TestRun_JSON(t *testing.T) {
	var out bytes.Buffer
	opts := options{file: writeStations(t), output: outputJSON, station: "Aprobacion"}
	require.NoError(t, run(context.Background(), opts, &out, discardLogger()))

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, float64(2), report["record_count"])
}

func TestRun_Files(t *testing.T) {
	file := writeStations(t)

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.xlsx")
		require.NoError(t, run(context.Background(), options{file: file, output: outputXLSX, out: path}, io.Discard, discardLogger()))
		assert.FileExists(t, path)
	})

	t.Run("csv", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, run(context.Background(), options{file: file, output: outputCSV, out: dir}, io.Discard, discardLogger()))
		assert.FileExists(t, filepath.Join(dir, exporter.TablePivot+".csv"))
	})

	t.Run("png", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, run(context.Background(), options{file: file, output: outputPNG, out: dir}, io.Discard, discardLogger()))
		for _, name := range charts.Names {
			assert.FileExists(t, filepath.Join(dir, name+".png"))
		}
	})
}

func TestRun_MissingFile(t *testing.T) {
	opts := options{file: filepath.Join(t.TempDir(), "missing.csv"), output: outputJSON}
	assert.Error(t, run(context.Background(), opts, io.Discard, discardLogger()))
}
