package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/matzehuels/diceplan/pkg/buildinfo"
	perrors "github.com/matzehuels/diceplan/pkg/errors"
	"github.com/matzehuels/diceplan/pkg/pipeline"
)

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

// solveRequest is the body of POST /v1/solve.
type solveRequest struct {
	Source        int    `json:"source"`
	Target        int    `json:"target"`
	Heuristic     string `json:"heuristic"`
	MaxIterations int    `json:"max_iterations"`
	AcceptTies    bool   `json:"accept_ties"`
}

type solveResponse struct {
	*pipeline.Result
	PlanText string `json:"plan_text"`
}

type naiveResponse struct {
	*pipeline.NaiveResult
	PlanText string `json:"plan_text"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    perrors.Code `json:"code"`
	Message string       `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: errorDetail{Code: perrors.ErrCodeInvalidInput, Message: "payload exceeds limit"}})
			return
		}
		writeError(w, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid JSON body"))
		return
	}

	iterations := req.MaxIterations
	if limit := s.cfg.MaxIterations; limit > 0 && (iterations == 0 || iterations > limit) {
		iterations = limit
	}

	ctx := r.Context()
	if s.cfg.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout.Duration)
		defer cancel()
	}

	res, err := s.runner.Execute(ctx, pipeline.Options{
		Source:        req.Source,
		Target:        req.Target,
		Heuristic:     req.Heuristic,
		MaxIterations: iterations,
		AcceptTies:    req.AcceptTies,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, solveResponse{Result: res, PlanText: res.Plan.String()})
}

func (s *Server) handleNaive(w http.ResponseWriter, r *http.Request) {
	source, err := intParam(r, "source", pipeline.DefaultSource)
	if err != nil {
		writeError(w, err)
		return
	}
	target, err := intParam(r, "target", pipeline.DefaultTarget)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runner.Naive(source, target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, naiveResponse{NaiveResult: res, PlanText: res.Plan.String()})
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, perrors.New(perrors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func writeError(w http.ResponseWriter, err error) {
	code := perrors.CodeOf(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	writeJSON(w, code.HTTPStatus(), errorBody{Error: errorDetail{Code: code, Message: perrors.Message(err)}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
