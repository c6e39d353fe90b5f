package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/posimport/internal/config"
	"github.com/JonMunkholm/posimport/internal/core"
	_ "github.com/JonMunkholm/posimport/internal/core/brokers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)

const genericCSV = "symbol,type,strike,expiry,quantity,entry_price\n" +
	"AAPL,call,190,2027-01-15,2,5.25\n" +
	"MSFT,put,400,2027-04-16,-1,7.50\n"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, RequestTimeout: 5 * time.Second, ShutdownTimeout: time.Second},
		Import: config.ImportConfig{MaxFileSize: 1 << 20, MaxConcurrent: 2, MaxWaitTime: 50 * time.Millisecond, Workers: 1, ParallelThreshold: 500},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *core.ImportLimiter) {
	t.Helper()
	limiter := core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
	importer := core.NewImporter(core.WithClock(func() time.Time { return fixedNow }))
	return NewServer(cfg, importer, limiter), limiter
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) core.CSVImportResult {
	t.Helper()
	var result core.CSVImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result), rec.Body.String())
	return result
}

func multipartBody(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, core.SchemaCount(), body["brokers"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestListBrokers(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/brokers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var brokers []BrokerInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &brokers))
	require.Len(t, brokers, core.SchemaCount())
	assert.Equal(t, core.GenericKey, brokers[0].Key)
	assert.Equal(t, core.FieldSymbol, brokers[0].Fields[0])

	var tasty BrokerInfo
	for _, b := range brokers {
		if b.Key == "tastytrade" {
			tasty = b
		}
	}
	assert.Equal(t, []string{"Strike Price"}, tasty.FieldMap["strike"])
	assert.Equal(t, core.TransformSignedBySide, tasty.Transforms["quantity"])
}

func TestSample(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/brokers/tastytrade/sample", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tastytrade_sample.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Underlying Symbol")
}

func TestSample_UnknownBroker(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/brokers/nobody/sample", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, core.CodeUnknownBroker, resp.Code)
}

func TestDetect(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	sample, ok := core.Get("tastytrade")
	require.True(t, ok)
	header := strings.SplitN(core.GenerateSampleCSV(sample, fixedNow), "\n", 2)[0]
	body, err := json.Marshal(DetectRequest{Headers: strings.Split(header, ",")})
	require.NoError(t, err)

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/detect", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tastytrade", resp.Broker)
	assert.Len(t, resp.Scores, core.SchemaCount())
	assert.Greater(t, resp.Scores["tastytrade"], resp.Scores[core.GenericKey])
}

func TestDetect_BadBody(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/detect", strings.NewReader("{")))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "REQ004", resp.Code)
}

func TestImport_RawBody(t *testing.T) {
	s, limiter := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(genericCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	result := decodeResult(t, rec)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.ImportID)
	assert.Equal(t, core.GenericKey, result.Broker)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.ImportedRows)
	assert.Equal(t, "1800", result.Summary.TotalValue.String())
	assert.Equal(t, 0, limiter.ActiveCount())
}

func TestImport_RejectedRowsStillOK(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	text := genericCSV + "SPY,call,500,2020-01-17,1,1\n"
	rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(text)))
	require.Equal(t, http.StatusOK, rec.Code)

	result := decodeResult(t, rec)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.ImportedRows)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Equal(t, core.CodeExpired, result.Errors[0].Code)
}

func TestImport_Multipart(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	text := "Ticker,type,strike,expiry,quantity\nAAPL,call,190,2027-01-15,2\n"
	override := `{"fieldMap": {"symbol": ["Ticker"], "type": ["type"], "strike": ["strike"], "expiry": ["expiry"], "quantity": ["quantity"]}}`
	body, contentType := multipartBody(t, map[string]string{"broker": "generic", "override": override}, "positions.csv", text)

	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decodeResult(t, rec)
	assert.True(t, result.Success)
	require.Len(t, result.Positions, 1)
	assert.Equal(t, "AAPL", result.Positions[0].Symbol)
}

func TestImport_MultipartErrors(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		wantCode string
	}{
		{"missing file", map[string]string{"broker": "generic"}, "", "FILE004"},
		{"bad override", map[string]string{"override": "{"}, "positions.csv", "REQ003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.fields, tt.filename, genericCSV)
			req := httptest.NewRequest(http.MethodPost, "/api/import", body)
			req.Header.Set("Content-Type", contentType)

			rec := serve(s, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestImport_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Import.MaxFileSize = 32
	s, _ := newTestServer(t, cfg)

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(genericCSV)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FILE001", resp.Code)
}

func TestImport_Busy(t *testing.T) {
	cfg := testConfig()
	cfg.Import.MaxConcurrent = 1
	s, limiter := newTestServer(t, cfg)

	require.True(t, limiter.TryAcquire())
	defer limiter.Release()

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(genericCSV)))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, core.CodeSystemBusy, resp.Code)
}

func TestImport_HTMX(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/import?broker=generic", strings.NewReader(genericCSV+"<b>,call,1,2027-01-15,1\n"))
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	html := rec.Body.String()
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, html, "Imported 2 of 3 rows as generic.")
	assert.Contains(t, html, "Row 4")
	assert.NotContains(t, html, "<b>")
}

func TestImport_HTMXError(t *testing.T) {
	s, limiter := newTestServer(t, testConfig())
	for limiter.TryAcquire() {
	}
	defer func() {
		for limiter.ActiveCount() > 0 {
			limiter.Release()
		}
	}()

	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(genericCSV))
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="alert alert-error"`)
	assert.Contains(t, rec.Body.String(), core.CodeSystemBusy)
}
