package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_tm_similarity/internal/core/domain"
	"github.com/baditaflorin/go_tm_similarity/internal/ports"
	"github.com/baditaflorin/go_tm_similarity/pkg/levenshtein"
	"github.com/baditaflorin/go_tm_similarity/pkg/ranking"
	"github.com/baditaflorin/go_tm_similarity/pkg/terminology"
)

const requestIDHeader = "X-Request-ID"

// SimilarityRequest asks for the similarity of a TM candidate to a query.
// Text fields are pointers so a missing field can be told from an empty one.
type SimilarityRequest struct {
	Query          *string  `json:"query"`
	Candidate      *string  `json:"candidate"`
	StopPercentage *float64 `json:"stop_percentage,omitempty"`
}

// TerminologyRequest asks whether a glossary term occurs in a text
type TerminologyRequest struct {
	Text           *string  `json:"text"`
	Term           *string  `json:"term"`
	StopPercentage *float64 `json:"stop_percentage,omitempty"`
}

// RankRequest asks for a ranked list of candidates
type RankRequest struct {
	Query          *string  `json:"query"`
	Candidates     []string `json:"candidates"`
	Mode           string   `json:"mode,omitempty"`
	StopPercentage *float64 `json:"stop_percentage,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}

// Response represents a similarity computation response
type Response struct {
	Score          float64 `json:"score"`
	Passed         bool    `json:"passed"`
	StopPercentage float64 `json:"stop_percentage"`
	ProcessingTime string  `json:"processing_time,omitempty"`
}

// RankResponse lists ranked candidates
type RankResponse struct {
	Matches        []MatchResponse `json:"matches"`
	StopPercentage float64         `json:"stop_percentage"`
	ProcessingTime string          `json:"processing_time,omitempty"`
}

// MatchResponse is one ranked candidate
type MatchResponse struct {
	Candidate string  `json:"candidate"`
	Index     int     `json:"index"`
	Score     float64 `json:"score"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// app holds the comparers shared by all requests. They are safe for
// concurrent use.
type app struct {
	logger      ports.Logger
	levenshtein *levenshtein.Comparer
	terminology *terminology.Comparer
	tmRanker    *ranking.Ranker
	termRanker  *ranking.Ranker
	timeout     time.Duration
}

// requestHandler is the main fasthttp request handler
func (a *app) requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	requestID := string(ctx.Request.Header.Peek(requestIDHeader))
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "TMSimilarityServer")
	ctx.Response.Header.Set(requestIDHeader, requestID)

	switch string(ctx.Path()) {
	case "/health":
		a.handleHealthCheck(ctx)
	case "/similarity":
		a.handleSimilarity(ctx)
	case "/terminology":
		a.handleTerminology(ctx)
	case "/rank":
		a.handleRank(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		a.writeJSONError(ctx, "Not found")
	}

	a.logger.Info("Request processed",
		"request_id", requestID,
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

// handleHealthCheck responds to health check requests
func (a *app) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	a.writeJSONResponse(ctx, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleSimilarity scores one TM candidate
func (a *app) handleSimilarity(ctx *fasthttp.RequestCtx) {
	var req SimilarityRequest
	if !a.decodePost(ctx, &req) {
		return
	}
	if req.Query == nil || req.Candidate == nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		a.writeJSONError(ctx, "Both query and candidate are required")
		return
	}

	startTime := time.Now()
	stop := stopOrDefault(req.StopPercentage, a.levenshtein.StopPercentage())
	score, err := a.levenshtein.Similarity(*req.Query, *req.Candidate, stop)
	if err != nil {
		a.writeComputeError(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	a.writeJSONResponse(ctx, Response{
		Score:          score,
		Passed:         score >= stop,
		StopPercentage: stop,
		ProcessingTime: time.Since(startTime).String(),
	})
}

// handleTerminology scores one glossary term
func (a *app) handleTerminology(ctx *fasthttp.RequestCtx) {
	var req TerminologyRequest
	if !a.decodePost(ctx, &req) {
		return
	}
	if req.Text == nil || req.Term == nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		a.writeJSONError(ctx, "Both text and term are required")
		return
	}

	startTime := time.Now()
	stop := stopOrDefault(req.StopPercentage, a.terminology.StopPercentage())
	score, err := a.terminology.Similarity(*req.Text, *req.Term, stop)
	if err != nil {
		a.writeComputeError(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	a.writeJSONResponse(ctx, Response{
		Score:          score,
		Passed:         score > 0 && score >= stop,
		StopPercentage: stop,
		ProcessingTime: time.Since(startTime).String(),
	})
}

// handleRank ranks TM candidates or glossary terms
func (a *app) handleRank(ctx *fasthttp.RequestCtx) {
	var req RankRequest
	if !a.decodePost(ctx, &req) {
		return
	}
	if req.Query == nil || req.Candidates == nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		a.writeJSONError(ctx, "Query and candidates are required")
		return
	}

	var (
		r    *ranking.Ranker
		stop float64
	)
	switch req.Mode {
	case "", "levenshtein":
		r, stop = a.tmRanker, stopOrDefault(req.StopPercentage, a.levenshtein.StopPercentage())
	case "terminology":
		r, stop = a.termRanker, stopOrDefault(req.StopPercentage, a.terminology.StopPercentage())
	default:
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		a.writeJSONError(ctx, "Mode must be 'levenshtein' or 'terminology'")
		return
	}

	c, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	startTime := time.Now()
	matches, err := r.Rank(c, *req.Query, req.Candidates, stop)
	if err != nil {
		a.writeComputeError(ctx, err)
		return
	}
	if req.Limit > 0 && len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}

	response := RankResponse{
		Matches:        make([]MatchResponse, 0, len(matches)),
		StopPercentage: stop,
		ProcessingTime: time.Since(startTime).String(),
	}
	for _, m := range matches {
		response.Matches = append(response.Matches, MatchResponse{
			Candidate: m.Candidate,
			Index:     m.Index,
			Score:     m.Score,
		})
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	a.writeJSONResponse(ctx, response)
}

// Helper functions

// decodePost rejects non-POST requests and decodes the JSON body into v
func (a *app) decodePost(ctx *fasthttp.RequestCtx, v interface{}) bool {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		a.writeJSONError(ctx, "Method not allowed")
		return false
	}
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		a.writeJSONError(ctx, "Invalid request: "+err.Error())
		return false
	}
	return true
}

func (a *app) writeComputeError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		ctx.SetStatusCode(fasthttp.StatusGatewayTimeout)
	default:
		a.logger.Error("Computation failed", "error", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
	a.writeJSONError(ctx, err.Error())
}

func stopOrDefault(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// writeJSONResponse writes a JSON response to the context
func (a *app) writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		a.logger.Error("Error marshaling JSON response", "error", err)
		a.writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func (a *app) writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		a.logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}
