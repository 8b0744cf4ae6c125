package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/abhisek/whomadeit/internal/analysis"
	"github.com/abhisek/whomadeit/internal/store"
)

// maxBodyBytes caps the analyze request body.
const maxBodyBytes = 64 << 10

type analyzeRequest struct {
	InputText *string `json:"input_text"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Inventor Gender Checker API"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.InputText == nil {
		writeError(w, http.StatusBadRequest, "missing input_text")
		return
	}

	q, err := s.svc.Analyze(r.Context(), *req.InputText)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, q)
	case errors.Is(err, analysis.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("analyze failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Stats(r.Context())
	if err != nil {
		s.internalError(w, "get stats", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleQueries(w http.ResponseWriter, r *http.Request) {
	limit := analysis.DefaultQueryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	queries, err := s.svc.RecentQueries(r.Context(), limit)
	if err != nil {
		s.internalError(w, "list queries", err)
		return
	}
	if queries == nil {
		queries = []store.Query{}
	}
	writeJSON(w, http.StatusOK, queries)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories(r.Context())
	if err != nil {
		s.internalError(w, "aggregate categories", err)
		return
	}
	if cats == nil {
		cats = []store.CategoryCount{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	ms, err := s.svc.Milestones(r.Context())
	if err != nil {
		s.internalError(w, "list milestones", err)
		return
	}
	if ms == nil {
		ms = []store.Milestone{}
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}
