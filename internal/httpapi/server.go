// Package httpapi exposes the dispatcher over HTTP: POST a DIMACS
// formula, get back every trial's result plus the run's best. Routing
// and the JSON envelope are adapted from the teacher's
// root/backend/main.go (APIResponse, corsMiddleware, handleSolve),
// rebuilt on gorilla/mux instead of the teacher's bare http.ServeMux
// since the teacher's own go.mod already commits to mux.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"walksat/internal/config"
	"walksat/internal/dimacs"
	"walksat/internal/dispatch"
	"walksat/internal/report"
	"walksat/internal/search"
	"walksat/internal/task"
	"walksat/internal/transport"
)

// envelope is the standardized JSON response shape, the Go rendering
// of the teacher's APIResponse.
type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// solveRequest is the POST /api/v1/solve request body.
type solveRequest struct {
	DIMACS          string    `json:"dimacs"`
	Weights         []float64 `json:"weights,omitempty"`
	Workers         int       `json:"workers,omitempty"`
	TrialsPerWorker int       `json:"trials_per_worker,omitempty"`
	Seed            int64     `json:"seed,omitempty"`
	MaxFlips        int       `json:"max_flips,omitempty"`
	// RandVarProb is a pointer so an explicit 0 (pure greedy) is
	// distinguishable from "omitted, use the configured default"; 1
	// (pure random-walk) needs no such treatment since it is already
	// non-zero.
	RandVarProb *float64 `json:"rand_var_prob,omitempty"`
}

// trialResponse is one trial's entry in the solve response.
type trialResponse struct {
	Seed            int64   `json:"seed"`
	BestUnsatWeight float64 `json:"best_unsat_weight"`
	Assignment      []bool  `json:"assignment"`
	Flips           int     `json:"flips"`
}

// solveResponse is the full POST /api/v1/solve response body.
type solveResponse struct {
	RunID  string          `json:"run_id"`
	Trials []trialResponse `json:"trials"`
	Best   *trialResponse  `json:"best"`
}

// Server bundles the HTTP surface's dependencies.
type Server struct {
	cfg     *config.Config
	metrics *report.Metrics
	router  *mux.Router
}

// NewServer builds the router: GET /healthz, GET /metrics, POST
// /api/v1/solve. /healthz and /api/v1/solve are wrapped in the
// teacher's CORS middleware; /metrics is served without it.
func NewServer(cfg *config.Config, metrics *report.Metrics) *Server {
	s := &Server{cfg: cfg, metrics: metrics, router: mux.NewRouter()}

	s.router.HandleFunc("/healthz", cors(s.handleHealth)).Methods(http.MethodGet, http.MethodOptions)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/solve", cors(s.handleSolve)).Methods(http.MethodPost, http.MethodOptions)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// cors adds permissive CORS headers, trimmed from the teacher's
// corsMiddleware to the single-origin-less case this CLI tool needs
// (no environment-gated allowed origin; this is not a hosted service).
func cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("httpapi: failed to encode response")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Status: "ok", Message: "server is running"})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Status: "error", Message: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.DIMACS) == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Status: "error", Message: "dimacs field is required"})
		return
	}

	parsed, err := dimacs.Parse(strings.NewReader(req.DIMACS))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Status: "error", Message: err.Error()})
		return
	}
	weights := req.Weights
	if weights == nil {
		weights = parsed.Weights
	}

	workers := req.Workers
	if workers <= 0 {
		workers = s.cfg.Dispatch.Workers
	}
	trialsPerWorker := req.TrialsPerWorker
	if trialsPerWorker <= 0 {
		trialsPerWorker = s.cfg.Dispatch.TrialsPerWorker
	}

	searchCfg := search.Config{
		Seed:     req.Seed,
		MaxFlips: req.MaxFlips,
	}
	if req.RandVarProb != nil {
		searchCfg.RandVarProb = *req.RandVarProb
	} else {
		searchCfg.RandVarProb = s.cfg.Search.RandVarProb
	}
	if searchCfg.MaxFlips == 0 {
		searchCfg.MaxFlips = s.cfg.Search.MaxFlips
	}
	if searchCfg.MaxFlips == 0 {
		searchCfg.MaxTime = s.cfg.Search.MaxTime
	}

	t := &task.WalkSATTask{
		Clauses:         parsed.Clauses,
		Weight:          weights,
		NumVariables:    parsed.NumVars,
		TrialsPerWorker: trialsPerWorker,
		SearchConfig:    searchCfg,
	}

	if err := runDispatch(t, workers); err != nil {
		writeJSON(w, http.StatusInternalServerError, envelope{Status: "error", Message: err.Error()})
		return
	}

	resp := solveResponse{RunID: t.RunID}
	for _, r := range t.Results {
		resp.Trials = append(resp.Trials, trialResponse{
			Seed:            r.Seed,
			BestUnsatWeight: r.BestUnsatWeight,
			Assignment:      r.Assignment,
			Flips:           r.Flips,
		})
		s.metrics.Observe(r.BestUnsatWeight, r.Flips)
	}
	if t.Best != nil {
		resp.Best = &trialResponse{
			Seed:            t.Best.Seed,
			BestUnsatWeight: t.Best.BestUnsatWeight,
			Assignment:      t.Best.Assignment,
			Flips:           t.Best.Flips,
		}
	}

	writeJSON(w, http.StatusOK, envelope{Status: "ok", Data: resp})
}

// runDispatch runs t over an in-process transport.NewLocalGroup of
// size workers+1, exactly as cmd/walksat's solve subcommand does. Each
// worker goroutine gets its own WorkerClone so SetupWorker's
// rank-derived seed sequence is private to that rank instead of racing
// on the master's WalkSATTask.
func runDispatch(t *task.WalkSATTask, workers int) error {
	if workers < 1 {
		workers = 1
	}
	comms := transport.NewLocalGroup(workers+1, workers)

	for r := 1; r <= workers; r++ {
		go dispatch.RunWorker(t.WorkerClone(), comms[r])
	}
	return dispatch.Run(t, comms[0])
}
