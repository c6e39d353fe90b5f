package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/JonMunkholm/posimport/internal/core"
	"github.com/JonMunkholm/posimport/internal/logging"
	"github.com/JonMunkholm/posimport/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is the allowance for form boundaries and the override
// field on top of the file size limit.
const multipartOverhead = 1 << 20

// BrokerInfo describes one registered schema in the catalog.
type BrokerInfo struct {
	Key        string              `json:"key"`
	Name       string              `json:"name"`
	Fields     []core.Field        `json:"fields"`
	FieldMap   map[string][]string `json:"fieldMap"`
	Transforms map[string]string   `json:"transforms,omitempty"`
	Validators map[string]string   `json:"validators,omitempty"`
}

// DetectRequest is the body of POST /api/detect.
type DetectRequest struct {
	Headers []string `json:"headers"`
}

// DetectResponse reports the chosen schema and every schema's score.
type DetectResponse struct {
	Broker string         `json:"broker"`
	Scores map[string]int `json:"scores"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"brokers": core.SchemaCount(),
		"imports": s.limiter.Status(),
	})
}

// handleListBrokers returns the schema catalog in registration order.
func (s *Server) handleListBrokers(w http.ResponseWriter, r *http.Request) {
	schemas := core.All()
	out := make([]BrokerInfo, 0, len(schemas))
	for _, sc := range schemas {
		info := BrokerInfo{
			Key:      sc.Key,
			Name:     sc.Name,
			Fields:   sc.MappedFields(),
			FieldMap: make(map[string][]string, len(sc.FieldMap)),
		}
		for f, cols := range sc.FieldMap {
			info.FieldMap[string(f)] = cols
		}
		if len(sc.Transforms) > 0 {
			info.Transforms = make(map[string]string, len(sc.Transforms))
			for f, name := range sc.Transforms {
				info.Transforms[string(f)] = name
			}
		}
		if len(sc.Validators) > 0 {
			info.Validators = make(map[string]string, len(sc.Validators))
			for f, name := range sc.Validators {
				info.Validators[string(f)] = name
			}
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSample downloads a sample export for one broker.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	schema, ok := core.Get(key)
	if !ok {
		respondError(w, r, fmt.Errorf("%w %q", core.ErrUnknownBroker, key), http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("%s_sample.csv", schema.Key)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	io.WriteString(w, core.GenerateSampleCSV(schema, time.Now()))
}

// handleDetect scores a header row against every registered schema.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, multipartOverhead)).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("invalid detect request: %w", err), http.StatusBadRequest)
		return
	}

	resp := DetectResponse{
		Broker: core.Detect(req.Headers),
		Scores: make(map[string]int),
	}
	for _, sc := range core.DetectScores(req.Headers) {
		resp.Scores[sc.Key] = sc.Score
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleImport runs one import over a multipart "file" field or the raw
// request body. The broker comes from the "broker" query or form value; a
// multipart "override" field may carry a partial schema as JSON.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize

	if err := s.limiter.Acquire(r.Context()); err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, core.ErrTooManyImports) {
			w.Header().Set("Retry-After", "5")
			status = http.StatusTooManyRequests
		}
		respondError(w, r, err, status)
		return
	}
	defer s.limiter.Release()

	text, source, override, err := readImportRequest(w, r, maxSize)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, core.ErrInputTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		respondError(w, r, err, status)
		return
	}

	broker := r.URL.Query().Get("broker")
	if broker == "" {
		broker = r.FormValue("broker")
	}

	logger := logging.WithFields(r.Context(), "broker", broker, "bytes", len(text))
	logger.Debug("import requested")

	ctx := withImportMetadata(r.Context(), r, source)
	result := s.importer.Import(ctx, text, core.ImportOptions{Broker: broker, Override: override})

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.ImportResult(result).Render(r.Context(), w); err != nil {
			logger.Error("render import result", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// readImportRequest extracts the export text, a source label for logging and
// the optional schema override.
func readImportRequest(w http.ResponseWriter, r *http.Request, maxSize int64) (string, string, *core.BrokerSchema, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		text, err := core.ReadInput(r.Body, maxSize)
		return text, "body", nil, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", "", nil, core.ErrInputTooLarge
		}
		return "", "", nil, fmt.Errorf("no file provided: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, fmt.Errorf("no file provided: %w", err)
	}
	defer file.Close()

	var override *core.BrokerSchema
	if raw := r.FormValue("override"); raw != "" {
		override = &core.BrokerSchema{}
		if err := json.Unmarshal([]byte(raw), override); err != nil {
			return "", "", nil, fmt.Errorf("invalid schema override: %w", err)
		}
	}

	text, err := core.ReadInput(file, maxSize)
	return text, header.Filename, override, err
}
