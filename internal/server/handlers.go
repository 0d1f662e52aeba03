package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bookclusters/pkg/buildinfo"
	"github.com/matzehuels/bookclusters/pkg/cluster"
	errs "github.com/matzehuels/bookclusters/pkg/errors"
	"github.com/matzehuels/bookclusters/pkg/pipeline"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// ClusterRequest is the body of POST /v1/clusters.
type ClusterRequest struct {
	Keys      []cluster.Assignment[int64] `json:"keys"`
	Edges     []cluster.Edge[int64]       `json:"edges"`
	MaxSweeps *int                        `json:"max_sweeps,omitempty"`
	Symmetric *bool                       `json:"symmetric,omitempty"`
	Refresh   bool                        `json:"refresh,omitempty"`
}

// ValidateRequest is the body of POST /v1/isbn/validate.
type ValidateRequest struct {
	ISBNs []string `json:"isbns"`
}

// ValidateResponse pairs each input with its checksum result.
type ValidateResponse struct {
	Valid []bool `json:"valid"`
}

// MembersResponse lists the stored members of a cluster.
type MembersResponse struct {
	Cluster int64   `json:"cluster"`
	Members []int64 `json:"members"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

// handleCluster handles POST /v1/clusters.
//
// Response:
//
//	200 OK: pipeline.Result
//	400 Bad Request: malformed body or duplicate keys
//	422 Unprocessable Entity: edge endpoint missing from keys, or no fixpoint within max_sweeps
func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	var req ClusterRequest
	if !s.decode(w, r, &req) {
		return
	}

	opts := pipeline.Options{
		Keys:      req.Keys,
		Edges:     req.Edges,
		MaxSweeps: s.opts.MaxSweeps,
		Symmetric: s.opts.Symmetric,
		Refresh:   req.Refresh,
		Logger:    s.opts.Logger.With("request", requestIDFrom(r.Context())),
	}
	if req.MaxSweeps != nil {
		opts.MaxSweeps = *req.MaxSweeps
	}
	if req.Symmetric != nil {
		opts.Symmetric = *req.Symmetric
	}

	res, err := s.opts.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleValidate handles POST /v1/isbn/validate.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !s.decode(w, r, &req) {
		return
	}
	valid, err := s.opts.Runner.ValidateISBNs(r.Context(), req.ISBNs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: valid})
}

// handleLookup handles GET /v1/isbn/{id}/cluster.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "isbn id"))
		return
	}
	a, ok, err := s.opts.Store.Lookup(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, errs.New(errs.ErrCodeNotFound, "isbn %d has no cluster", id))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleMembers handles GET /v1/clusters/{label}/members.
func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	label, err := strconv.ParseInt(chi.URLParam(r, "label"), 10, 64)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "cluster label"))
		return
	}
	members, err := s.opts.Store.Members(r.Context(), label)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(members) == 0 {
		s.writeError(w, r, errs.New(errs.ErrCodeNotFound, "cluster %d has no members", label))
		return
	}
	writeJSON(w, http.StatusOK, MembersResponse{Cluster: label, Members: members})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.opts.Store == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeUnsupported, "no cluster store configured"))
		return false
	}
	return true
}

// decode reads a JSON body into v, writing a 400 response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode request body"))
		return false
	}
	if _, err := dec.Token(); err != io.EOF {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidFormat, "request body must hold a single JSON value"))
		return false
	}
	return true
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidColumn, errs.ErrCodeDuplicateKey:
		return http.StatusBadRequest
	case errs.ErrCodeUnknownKey, errs.ErrCodeNotConverged:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errs.ErrCodeNetwork, errs.ErrCodeTimeout:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errs.GetCode(err))
	if code == "" {
		code = string(errs.ErrCodeInternal)
	}
	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.opts.Logger.Error("request failed", "id", requestIDFrom(r.Context()), "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code, RequestID: requestIDFrom(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
