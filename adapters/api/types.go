package api

import (
	"encoding/json"

	"gocondprob/domain/behavior"
	"gocondprob/domain/stats"
)

// AnalyzeRequest is the body of POST /api/analyses
type AnalyzeRequest struct {
	Session  json.RawMessage `json:"session"`
	Source   string          `json:"source,omitempty"`
	Target   string          `json:"target"`
	WindowMs int64           `json:"window_ms,omitempty"` // defaults to the server window
	Baseline bool            `json:"baseline,omitempty"`
	Persist  bool            `json:"persist,omitempty"`
}

// BackgroundRequest is the body of POST /api/background
type BackgroundRequest struct {
	Session     json.RawMessage `json:"session"`
	Target      string          `json:"target"`
	Consequence string          `json:"consequence"`
	Events      int             `json:"events,omitempty"`
	Complete    bool            `json:"complete,omitempty"`
	StepMs      int64           `json:"step_ms,omitempty"`
	Seed        int64           `json:"seed,omitempty"`
}

// BackgroundResponse lists generated background events
type BackgroundResponse struct {
	Count  int              `json:"count"`
	Events []behavior.Event `json:"events"`
}

// AnalysisListResponse lists stored analyses of a session
type AnalysisListResponse struct {
	Count    int               `json:"count"`
	Analyses []*stats.Analysis `json:"analyses"`
}

// ErrorResponse is written for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
