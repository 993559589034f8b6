package httpadapter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vporoshin/docflow/internal/config"
	"github.com/vporoshin/docflow/internal/core/domain"
	"github.com/vporoshin/docflow/internal/core/usecase"
	"github.com/vporoshin/docflow/internal/observability/metrics"
)

const serviceName = "api"

const backpressureWait = 100 * time.Millisecond

type Router struct {
	cfg      config.Config
	ingestUC *usecase.IngestDocumentUseCase
	readUC   *usecase.ReadDocumentUseCase
	routeUC  *usecase.RouteActionUseCase
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingestUC *usecase.IngestDocumentUseCase,
	readUC *usecase.ReadDocumentUseCase,
	routeUC *usecase.RouteActionUseCase,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:      cfg,
		ingestUC: ingestUC,
		readUC:   readUC,
		routeUC:  routeUC,
		metrics:  serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.documents)
	mux.HandleFunc("/v1/documents/", rt.documentByID)
	mux.HandleFunc("/v1/metrics/export.json", rt.exportJSON)
	mux.HandleFunc("/v1/metrics/export.csv", rt.exportCSV)
	mux.Handle("/metrics", rt.metrics.Handler())

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = rt.metrics.Middleware(serviceName, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) documents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocument(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	intent := strings.TrimSpace(r.FormValue("intent"))

	meta, err := rt.ingestUC.Upload(r.Context(), fileHeader.Filename, contentType, intent, file)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	rt.metrics.RecordUpload(serviceName, contentType)
	writeJSON(w, http.StatusAccepted, meta)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ListFilter{
		Format: domain.Format(query.Get("format")),
		Status: domain.DocumentStatus(query.Get("status")),
		Limit:  intQueryParam(query.Get("limit"), 50),
		Offset: intQueryParam(query.Get("offset"), 0),
	}

	states, err := rt.readUC.ListAll(r.Context(), filter)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": states,
		"count":     len(states),
	})
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")

	if id, ok := strings.CutSuffix(rest, "/actions"); ok {
		rt.routeAction(w, r, id)
		return
	}

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	state, err := rt.readUC.Get(r.Context(), rest)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (rt *Router) routeAction(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	// The action body is optional; absent or empty means rule-based routing.
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	record, err := rt.routeUC.RouteAction(r.Context(), id, strings.TrimSpace(req.Action))
	rt.metrics.RecordAction(serviceName, string(record.Action), err)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type documentSummary struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Format     string `json:"format"`
	Intent     string `json:"intent"`
	UploadTime string `json:"upload_time"`
}

type metricsExport struct {
	TotalCount         int               `json:"total_count"`
	FormatDistribution map[string]int    `json:"format_distribution"`
	StatusDistribution map[string]int    `json:"status_distribution"`
	DailyProcessing    map[string]int    `json:"daily_processing"`
	Documents          []documentSummary `json:"documents"`
}

func (rt *Router) exportJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	states, err := rt.readUC.ListAll(r.Context(), domain.ListFilter{})
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	export := metricsExport{
		TotalCount:         len(states),
		FormatDistribution: map[string]int{},
		StatusDistribution: map[string]int{},
		DailyProcessing:    map[string]int{},
		Documents:          make([]documentSummary, 0, len(states)),
	}
	for _, state := range states {
		summary := summarize(state)
		if summary.Format != "" {
			export.FormatDistribution[summary.Format]++
		}
		if summary.Status != "" {
			export.StatusDistribution[summary.Status]++
		}
		if state.Metadata != nil && !state.Metadata.UploadedAt.IsZero() {
			date := state.Metadata.UploadedAt.UTC().Format("2006-01-02")
			export.DailyProcessing[date]++
		}
		export.Documents = append(export.Documents, summary)
	}

	writeJSON(w, http.StatusOK, export)
}

func (rt *Router) exportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	states, err := rt.readUC.ListAll(r.Context(), domain.ListFilter{})
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=metrics_export.csv")
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"Document ID", "Status", "Format", "Intent", "Upload Time", "Filename"})
	for _, state := range states {
		summary := summarize(state)
		filename := ""
		if state.Metadata != nil {
			filename = state.Metadata.Filename
		}
		_ = writer.Write([]string{
			summary.DocumentID,
			summary.Status,
			summary.Format,
			summary.Intent,
			summary.UploadTime,
			filename,
		})
	}
	writer.Flush()
}

func summarize(state domain.DocumentState) documentSummary {
	summary := documentSummary{
		DocumentID: state.DocumentID,
		Status:     string(state.Status),
	}
	if state.Classification != nil {
		summary.Format = string(state.Classification.Format)
		summary.Intent = state.Classification.Intent
	}
	if state.Metadata != nil && !state.Metadata.UploadedAt.IsZero() {
		summary.UploadTime = state.Metadata.UploadedAt.UTC().Format(time.RFC3339)
	}
	return summary
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
