package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gocondprob/app"
	"gocondprob/domain/core"
	"gocondprob/domain/stats"
	"gocondprob/internal/errors"
	"gocondprob/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, withRepo bool) (*Server, *testkit.InMemoryAnalysisRepository) {
	t.Helper()
	kit := testkit.NewTestKit()
	var svc *app.AnalysisService
	if withRepo {
		svc = app.NewAnalysisService(kit.Repository(), kit.RNGAdapter(), app.DefaultAnalysisConfig())
	} else {
		svc = app.NewAnalysisService(nil, kit.RNGAdapter(), app.DefaultAnalysisConfig())
	}
	return NewServer(svc, core.Window5s), kit.Repository()
}

func sessionJSON(t *testing.T) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(testkit.StPeterSession())
	require.NoError(t, err)
	return raw
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := do(t, s, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","storage":false}`, rec.Body.String())
}

func TestAnalyze(t *testing.T) {
	s, repo := newTestServer(t, true)

	rec := do(t, s, http.MethodPost, "/api/analyses", AnalyzeRequest{
		Session: sessionJSON(t),
		Target:  "s",
		Persist: true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var analysis stats.Analysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&analysis))
	assert.Equal(t, core.Window5s, analysis.Window)
	require.Len(t, analysis.Candidates, 3)
	assert.Equal(t, testkit.Attention.ID, analysis.Candidates[0].Behavior.ID)
	assert.Equal(t, 1, repo.Count())

	// stored analysis is retrievable as JSON and as a report
	rec = do(t, s, http.MethodGet, "/api/analyses/"+analysis.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/analyses/"+analysis.ID.String()+"/report", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Attention (a)")

	rec = do(t, s, http.MethodGet, "/api/analyses/"+analysis.ID.String()+"/report?format=markdown", nil)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "## SIB (s)"))

	rec = do(t, s, http.MethodGet, "/api/sessions/"+testkit.StPeterSession().ID.String()+"/analyses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list AnalysisListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, 1, list.Count)
}

func TestAnalyze_Errors(t *testing.T) {
	s, _ := newTestServer(t, false)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"missing session", AnalyzeRequest{Target: "s"}, http.StatusBadRequest, errors.CodeInvalidInput},
		{"unknown target", AnalyzeRequest{Session: sessionJSON(t), Target: "zzz"}, http.StatusBadRequest, errors.CodeInvalidInput},
		{"negative window", AnalyzeRequest{Session: sessionJSON(t), Target: "s", WindowMs: -5}, http.StatusBadRequest, errors.CodeInvalidInput},
		{"bad session", AnalyzeRequest{Session: json.RawMessage(`{"schema":{"behaviors":[]},"discreteEvents":[{"behaviorUuid":"x","time":1}]}`), Target: "s"}, http.StatusBadRequest, errors.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/analyses", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAnalysis_WithoutStorage(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := do(t, s, http.MethodGet, "/api/analyses/abc", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, errors.CodeUnavailable, decodeError(t, rec).Code)
}

func TestGetAnalysis_NotFound(t *testing.T) {
	s, _ := newTestServer(t, true)

	rec := do(t, s, http.MethodGet, "/api/analyses/abc", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errors.CodeNotFound, decodeError(t, rec).Code)
}

func TestBackground(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/background", BackgroundRequest{
		Session: sessionJSON(t), Target: "s", Consequence: "g", Events: 4, Seed: 3,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp BackgroundResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 4, resp.Count)

	rec = do(t, s, http.MethodPost, "/api/background", BackgroundRequest{
		Session: sessionJSON(t), Target: "s", Consequence: "g", Complete: true,
	})
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 85, resp.Count)

	rec = do(t, s, http.MethodPost, "/api/background", BackgroundRequest{
		Session: sessionJSON(t), Target: "s", Consequence: "g", Events: 1000,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, errors.CodeInfeasible, decodeError(t, rec).Code)
}
