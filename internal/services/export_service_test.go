package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/acspacelit/indicadores/internal/charts"
	"github.com/acspacelit/indicadores/internal/exporter"
	"github.com/acspacelit/indicadores/internal/shared/testutil"
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

func newTestExportService(t *testing.T) *ExportService {
	t.Helper()
	reports, _ := newTestReportService(t)
	logger, _ := testutil.NewTestLogger(t)
	return NewExportService(reports, testMetrics(t), logger)
}

func TestExportService_Workbook(t *testing.T) {
	svc := newTestExportService(t)

	data, err := svc.Workbook(context.Background(), ReportQuery{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Resumen")
	assert.Contains(t, sheets, "Aporte por País")
}

func TestExportService_CSV(t *testing.T) {
	svc := newTestExportService(t)

	data, err := svc.CSV(context.Background(), ReportQuery{}, exporter.TableHighDelay)
	require.NoError(t, err)

	text := strings.TrimPrefix(string(data), "\ufeff")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Ruta Norte")
}

func TestExportService_Chart(t *testing.T) {
	svc := newTestExportService(t)

	img, err := svc.Chart(context.Background(), ReportQuery{}, charts.Contributions)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))
}

func TestExportService_Errors(t *testing.T) {
	svc := newTestExportService(t)
	ctx := context.Background()

	_, err := svc.CSV(ctx, ReportQuery{}, "nope")
	assert.ErrorIs(t, err, ErrUnknownExport)
	assert.Contains(t, err.Error(), "not found")

	_, err = svc.Chart(ctx, ReportQuery{}, "nope")
	assert.ErrorIs(t, err, ErrUnknownExport)

	_, err = svc.Workbook(ctx, ReportQuery{From: intPtr(2022), To: intPtr(2020)})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}
