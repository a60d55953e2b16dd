package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"docshield/internal/core/ports"
	"docshield/internal/observability/metrics"
)

// Router exposes the verification and issuance services over plain HTTP.
type Router struct {
	verifier ports.DocumentVerifier
	issuer   ports.DocumentIssuer
	registry ports.DocumentRegistry
	storage  ports.ObjectStorage
	httpMet  *metrics.HTTPServerMetrics

	rateLimitRPS     float64
	rateLimitBurst   int
	maxInFlight      int
	backpressureWait time.Duration
}

type Option func(*Router)

func WithHTTPMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) { rt.httpMet = m }
}

func WithTrafficControl(rps float64, burst, maxInFlight int, wait time.Duration) Option {
	return func(rt *Router) {
		rt.rateLimitRPS = rps
		rt.rateLimitBurst = burst
		rt.maxInFlight = maxInFlight
		rt.backpressureWait = wait
	}
}

func NewRouter(
	verifier ports.DocumentVerifier,
	issuer ports.DocumentIssuer,
	registry ports.DocumentRegistry,
	storage ports.ObjectStorage,
	opts ...Option,
) *Router {
	rt := &Router{
		verifier: verifier,
		issuer:   issuer,
		registry: registry,
		storage:  storage,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/verify", rt.verifyByID)
	mux.HandleFunc("/v1/verify/image", rt.verifyByImage)
	mux.HandleFunc("/v1/documents", rt.issueDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocument)
	if rt.httpMet != nil {
		mux.Handle("/metrics", rt.httpMet.Handler())
	}

	var handler http.Handler = mux
	if rt.httpMet != nil {
		handler = rt.httpMet.Middleware("docshield-api", handler)
	}
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, rt.backpressureWait)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) verifyByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		DocID string `json:"doc_id"`
		Hash  string `json:"hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.DocID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "doc_id is required"})
		return
	}

	result, err := rt.verifier.VerifyByID(r.Context(), req.DocID, req.Hash)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) verifyByImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read upload"})
		return
	}

	result, err := rt.verifier.VerifyByImage(r.Context(), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) issueDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read upload"})
		return
	}

	issued, err := rt.issuer.Issue(r.Context(), issueRequestFromForm(r, fileHeader.Filename, data))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issued)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if strings.HasSuffix(id, "/qr") {
		rt.getDocumentQR(w, r, strings.TrimSuffix(id, "/qr"))
		return
	}

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	rec, err := rt.registry.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (rt *Router) getDocumentQR(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	reader, err := rt.storage.Open(r.Context(), "qr/"+id+".png")
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "qr code not found"})
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
