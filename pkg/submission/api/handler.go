package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/submission-intake/pkg/submission"
	"github.com/tendant/submission-intake/pkg/submission/identity"
)

// SubmissionHandler exposes the intake and read endpoints over HTTP
type SubmissionHandler struct {
	service  submission.Service
	identity *identity.Provider
	logger   *slog.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(service submission.Service, provider *identity.Provider, logger *slog.Logger) *SubmissionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionHandler{
		service:  service,
		identity: provider,
		logger:   logger,
	}
}

// Routes returns the router for submission endpoints
func (h *SubmissionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(CORS)
	r.Use(Recover(h.logger))

	r.Post("/", h.SubmitFile)
	r.Get("/{id}", h.GetSubmission)
	r.Get("/{id}/status", h.GetSubmissionStatus)

	return r
}

// UploadResponse is the success payload for POST /submissions
type UploadResponse struct {
	Message string `json:"message"`
	*submission.SubmitFileResponse
}

// SubmitFile handles a multipart upload
func (h *SubmissionHandler) SubmitFile(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "multipart/form-data") {
		writeError(w, http.StatusBadRequest, submission.ErrNotMultipart.Error())
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read request body", "error", err)
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, submission.ErrEmptyBody.Error())
		return
	}

	resp, err := h.service.SubmitFile(r.Context(), submission.SubmitFileRequest{
		ContentType: contentType,
		Body:        body,
		Claims:      h.identity.FromRequest(r),
		SourceIP:    clientIP(r),
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		h.renderError(w, err)
		return
	}

	render.JSON(w, r, UploadResponse{
		Message:            "File uploaded successfully",
		SubmitFileResponse: resp,
	})
}

// GetSubmission serves the role-gated sanitized record
func (h *SubmissionHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing submission id in request path")
		return
	}

	view, err := h.service.GetSubmission(r.Context(), submission.GetSubmissionRequest{
		SubmissionID: id,
		Claims:       h.identity.FromRequest(r),
		SourceIP:     clientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		h.renderError(w, err)
		return
	}

	render.JSON(w, r, view)
}

// GetSubmissionStatus serves the thin status projection
func (h *SubmissionHandler) GetSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing submission id in request path")
		return
	}

	view, err := h.service.GetSubmissionStatus(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	render.JSON(w, r, view)
}

// renderError maps service errors onto the HTTP error taxonomy. Storage
// and repository failures surface as generic 500s without internal detail.
func (h *SubmissionHandler) renderError(w http.ResponseWriter, err error) {
	var storageErr *submission.StorageError
	var repoErr *submission.RepositoryError

	switch {
	case errors.Is(err, submission.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, submission.ErrMissingBoundary),
		errors.Is(err, submission.ErrMissingFile),
		errors.Is(err, submission.ErrMissingField),
		errors.Is(err, submission.ErrEmptyIdentifier),
		errors.Is(err, submission.ErrDisallowedExtension):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, submission.ErrUnidentifiedCaller),
		errors.Is(err, submission.ErrAccessDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, submission.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, "Submission not found")
	case errors.As(err, &storageErr):
		h.logger.Error("blob store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to upload file to storage")
	case errors.As(err, &repoErr):
		h.logger.Error("metadata store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to record submission metadata")
	default:
		h.logger.Error("unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// clientIP prefers the proxy-provided address, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		return host[:idx]
	}
	return host
}
