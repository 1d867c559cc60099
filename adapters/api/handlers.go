package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"gocondprob/app"
	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
	"gocondprob/internal/errors"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] Request failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}

func decodeBody(r *http.Request, w http.ResponseWriter, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, err)
	}
	return nil
}

func (s *Server) decodeSession(raw json.RawMessage) (*behavior.Session, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.InvalidInput("session is required")
	}
	sess, err := s.sessions.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return sess, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"storage": s.service.HasRepository(),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeBody(r, w, &req); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.decodeSession(req.Session)
	if err != nil {
		writeError(w, err)
		return
	}
	window := core.Millis(req.WindowMs)
	if window == 0 {
		window = s.defaultWindow
	}

	analysis, err := s.service.Analyze(r.Context(), app.AnalysisRequest{
		Session:  sess,
		Source:   req.Source,
		Target:   req.Target,
		Window:   window,
		Baseline: req.Baseline,
		Persist:  req.Persist,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAnalysisID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}
	analysis, err := s.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleAnalysisReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAnalysisID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}
	analysis, err := s.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(s.renderer.Markdown(analysis)))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.renderer.HTML(analysis))
}

func (s *Server) handleListSessionAnalyses(w http.ResponseWriter, r *http.Request) {
	sessionID, err := core.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			writeError(w, errors.InvalidInput("limit must be a positive integer"))
			return
		}
	}
	list, err := s.service.ListBySession(r.Context(), sessionID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AnalysisListResponse{Count: len(list), Analyses: list})
}

func (s *Server) handleBackground(w http.ResponseWriter, r *http.Request) {
	var req BackgroundRequest
	if err := decodeBody(r, w, &req); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.decodeSession(req.Session)
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := s.service.Background(r.Context(), app.BackgroundRequest{
		Session:     sess,
		Target:      req.Target,
		Consequence: req.Consequence,
		Events:      req.Events,
		Complete:    req.Complete,
		Step:        core.Millis(req.StepMs),
		Seed:        req.Seed,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BackgroundResponse{Count: len(events), Events: events})
}
