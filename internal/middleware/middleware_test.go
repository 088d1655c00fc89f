package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	apierrors "github.com/acspacelit/indicadores/internal/errors"
	"github.com/acspacelit/indicadores/internal/infrastructure"
	"github.com/acspacelit/indicadores/internal/shared/testutil"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{name: "generates id", incoming: ""},
		{name: "keeps client id", incoming: "client-supplied"},
		{name: "replaces malformed id", incoming: "bad id\r\nX-Injected: 1"},
		{name: "replaces oversized id", incoming: strings.Repeat("a", maxRequestIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen, traceID string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
				traceID = infrastructure.GetTraceID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
			assert.Equal(t, seen, traceID)
			if validRequestID(tt.incoming) {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.Len(t, seen, 36)
			}
		})
	}
}

func TestStructuredLogger(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)

	h := StructuredLogger(logger)(http.HandlerFunc(okHandler))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	assert.True(t, logs.ContainsMessage("request completed"))
	assert.True(t, logs.ContainsAttr("path", "/api/dashboard"))
	assert.True(t, logs.ContainsAttr("status", int64(http.StatusOK)))
}

func TestRequestLogLevel(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   slog.Level
	}{
		{"/api/dashboard/report", http.StatusOK, slog.LevelInfo},
		{"/api/dashboard/report", http.StatusBadRequest, slog.LevelWarn},
		{"/api/dashboard/report", http.StatusServiceUnavailable, slog.LevelError},
		{"/api/health/ready", http.StatusOK, slog.LevelDebug},
		{"/api/health/ready", http.StatusServiceUnavailable, slog.LevelError},
		{"/metrics", http.StatusOK, slog.LevelDebug},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, requestLogLevel(tt.path, tt.status), "%s %d", tt.path, tt.status)
	}
}

func TestRateLimiter(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	limiter := NewRateLimiter(0.001, 1, logger, apierrors.NewErrorHandler(logger, false))
	h := limiter.Handler(http.HandlerFunc(okHandler))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	retry, err := strconv.Atoi(second.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 1)
	assert.True(t, logs.ContainsMessage("rate limit exceeded"))
}

func TestTimeout(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	t.Run("handler observes deadline", func(t *testing.T) {
		h := Timeout(10*time.Millisecond, errorHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/report", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, apierrors.TypeTimeout, body["type"])
	})

	t.Run("fast handler untouched", func(t *testing.T) {
		h := Timeout(time.Second, errorHandler)(http.HandlerFunc(okHandler))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}})(http.HandlerFunc(okHandler))

	tests := []struct {
		name       string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{"allowed origin", http.MethodGet, "http://localhost:3000", "http://localhost:3000", http.StatusOK},
		{"foreign origin", http.MethodGet, "http://evil.example", "", http.StatusOK},
		{"preflight", http.MethodOptions, "http://localhost:3000", "http://localhost:3000", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/dashboard", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(okHandler)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestOTelMiddleware(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	metrics, err := infrastructure.CreateBusinessMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	m := NewOTelMiddleware(tracenoop.NewTracerProvider().Tracer("test"), metrics, logger)

	w := httptest.NewRecorder()
	m.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestGetRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", GetRealIP(req))

	req.Header.Set("X-Real-IP", "192.168.1.5")
	assert.Equal(t, "192.168.1.5", GetRealIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", GetRealIP(req))
}

type sampleRequest struct {
	Station  string `json:"station" validate:"notblank"`
	YearFrom int    `json:"year_from" validate:"gte=1900"`
	YearTo   int    `json:"year_to" validate:"gtefield=YearFrom"`
}

func TestValidator_DecodeJSON(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewValidator(logger)

	tests := []struct {
		name      string
		body      string
		wantCode  apierrors.Code
		wantField string
	}{
		{name: "valid", body: `{"station":"Aprobacion","year_from":2020,"year_to":2021}`},
		{name: "empty body", body: ``, wantCode: apierrors.CodeInvalidRequest},
		{name: "malformed", body: `{"station":`, wantCode: apierrors.CodeInvalidRequest},
		{name: "blank station", body: `{"station":"  ","year_from":2020,"year_to":2021}`, wantCode: apierrors.CodeValidationFailed, wantField: "station"},
		{name: "inverted years", body: `{"station":"Vigencia","year_from":2021,"year_to":2020}`, wantCode: apierrors.CodeValidationFailed, wantField: "year_to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst sampleRequest

			err := v.DecodeJSON(httptest.NewRecorder(), req, &dst)

			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "Aprobacion", dst.Station)
				return
			}
			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
			if tt.wantField != "" {
				details, ok := apiErr.Details.(apierrors.ValidationErrors)
				require.True(t, ok)
				require.Len(t, details.Errors, 1)
				assert.Equal(t, tt.wantField, details.Errors[0].Field)
			}
		})
	}
}

func TestValidator_DecodeJSONTooLarge(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewValidator(logger)
	v.maxBodySize = 8

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"station":"Aprobacion"}`))
	err := v.DecodeJSON(httptest.NewRecorder(), req, &sampleRequest{})

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.StatusCode)
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?from=2020&to=x&country=Bolivia,Brasil&country=Paraguay&empty=", nil)

	from, ok, err := QueryInt(req, "from")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2020, from)

	_, _, err = QueryInt(req, "to")
	assert.Error(t, err)

	_, ok, err = QueryInt(req, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	countries, ok := QueryList(req, "country")
	assert.True(t, ok)
	assert.Equal(t, []string{"Bolivia", "Brasil", "Paraguay"}, countries)

	empty, ok := QueryList(req, "empty")
	assert.True(t, ok)
	assert.Empty(t, empty)

	_, ok = QueryList(req, "absent")
	assert.False(t, ok)
}
