package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/acspacelit/indicadores/internal/errors"
	"github.com/acspacelit/indicadores/internal/middleware"
	"github.com/acspacelit/indicadores/internal/services"
	"github.com/acspacelit/indicadores/pkg/contracts/domain"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypePNG  = "image/png"

	exportPrefix = "indicadores"
)

// ReportRequest is the JSON body of POST /api/dashboard/report. Omitted
// fields take the dataset defaults; an empty countries array selects no
// country.
type ReportRequest struct {
	From      *int     `json:"from" validate:"omitempty,gte=1900,lte=2100"`
	To        *int     `json:"to" validate:"omitempty,gte=1900,lte=2100"`
	Station   string   `json:"station" validate:"omitempty,max=100"`
	Countries []string `json:"countries" validate:"omitempty,max=50,dive,max=100"`
}

// Query converts the request to a service query
func (req ReportRequest) Query() services.ReportQuery {
	return services.ReportQuery{
		From:      req.From,
		To:        req.To,
		Station:   req.Station,
		Countries: req.Countries,
	}
}

// OptionsResponse lists the filter choices of the current dataset
type OptionsResponse struct {
	Options          domain.FilterOptions   `json:"options"`
	DefaultSelection domain.FilterSelection `json:"default_selection"`
	Dataset          services.DatasetStatus `json:"dataset"`
}

// DatasetResponse wraps the dataset status
type DatasetResponse struct {
	Dataset services.DatasetStatus `json:"dataset"`
}

// DashboardHandler serves the dashboard API
type DashboardHandler struct {
	reports      ReportServiceInterface
	exports      ExportServiceInterface
	dataset      DatasetServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	reports ReportServiceInterface,
	exports ExportServiceInterface,
	dataset DatasetServiceInterface,
	validator *middleware.Validator,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *DashboardHandler {
	return &DashboardHandler{
		reports:      reports,
		exports:      exports,
		dataset:      dataset,
		validator:    validator,
		logger:       logger.With(slog.String("handler", "dashboard")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetOverview)
	r.Get("/options", h.GetOptions)

	r.Get("/report", h.GetReport)
	r.Post("/report", h.PostReport)

	r.Get("/export.xlsx", h.ExportWorkbook)
	r.Get("/export/{table}.csv", h.ExportCSV)
	r.Get("/charts/{chart}.png", h.GetChart)

	r.Route("/dataset", func(r chi.Router) {
		r.Get("/", h.GetDataset)
		r.Post("/reload", h.ReloadDataset)
	})

	return r
}

// GetOverview handles GET /api/dashboard
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.reports.Overview())
}

// GetOptions handles GET /api/dashboard/options
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, status := h.reports.Options()
	render.JSON(w, r, OptionsResponse{
		Options:          opts,
		DefaultSelection: services.ResolveSelection(services.ReportQuery{}, opts),
		Dataset:          status,
	})
}

// GetReport handles GET /api/dashboard/report
func (h *DashboardHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.renderReport(w, r, q)
}

// PostReport handles POST /api/dashboard/report
func (h *DashboardHandler) PostReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := h.validator.DecodeJSON(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.renderReport(w, r, req.Query())
}

func (h *DashboardHandler) renderReport(w http.ResponseWriter, r *http.Request, q services.ReportQuery) {
	report, err := h.reports.Report(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// ExportWorkbook handles GET /api/dashboard/export.xlsx
func (h *DashboardHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data, err := h.exports.Workbook(r.Context(), q)
	if err != nil {
		h.handleExportError(w, r, "workbook", err)
		return
	}
	writeFile(w, contentTypeXLSX, exportPrefix+".xlsx", data)
}

// ExportCSV handles GET /api/dashboard/export/{table}.csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	q, err := parseReportQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data, err := h.exports.CSV(r.Context(), q, table)
	if err != nil {
		h.handleExportError(w, r, table, err)
		return
	}
	writeFile(w, contentTypeCSV, fmt.Sprintf("%s-%s.csv", exportPrefix, table), data)
}

// GetChart handles GET /api/dashboard/charts/{chart}.png
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	chart := chi.URLParam(r, "chart")
	q, err := parseReportQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data, err := h.exports.Chart(r.Context(), q, chart)
	if err != nil {
		h.handleExportError(w, r, chart, err)
		return
	}
	w.Header().Set("Content-Type", contentTypePNG)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetDataset handles GET /api/dashboard/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, DatasetResponse{Dataset: h.dataset.Status()})
}

// ReloadDataset handles POST /api/dashboard/dataset/reload. A failed
// reload answers 503; the dashboard then serves an empty dataset.
func (h *DashboardHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "dataset reload requested",
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	status, err := h.dataset.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, DatasetResponse{Dataset: status})
}

func (h *DashboardHandler) handleExportError(w http.ResponseWriter, r *http.Request, name string, err error) {
	if errors.Is(err, services.ErrUnknownExport) {
		h.errorHandler.HandleError(w, r, apierrors.ExportNotFoundError(name))
		return
	}
	h.errorHandler.HandleError(w, r, err)
}

// parseReportQuery reads from, to, station and country from the query
// string
func parseReportQuery(r *http.Request) (services.ReportQuery, error) {
	var q services.ReportQuery

	from, ok, err := middleware.QueryInt(r, "from")
	if err != nil {
		return q, err
	}
	if ok {
		q.From = &from
	}

	to, ok, err := middleware.QueryInt(r, "to")
	if err != nil {
		return q, err
	}
	if ok {
		q.To = &to
	}

	q.Station = strings.TrimSpace(r.URL.Query().Get("station"))

	if countries, ok := middleware.QueryList(r, "country"); ok {
		q.Countries = countries
	}
	return q, nil
}

func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
