package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gocorda/adapters/cobrajson"
	"gocorda/adapters/report"
	"gocorda/app"
	"gocorda/domain/confidence"
	"gocorda/domain/run"
	"gocorda/internal/config"
	"gocorda/internal/corda"
	"gocorda/internal/errors"
)

// ReconstructionBody is the payload of POST /api/reconstructions
type ReconstructionBody struct {
	// Model is a COBRA JSON model
	Model json.RawMessage `json:"model"`
	// Confidence maps reaction ids to levels -1..3
	Confidence map[string]int `json:"confidence,omitempty"`
	// GeneConfidence maps gene ids to levels, used when Confidence is empty
	GeneConfidence map[string]int `json:"gene_confidence,omitempty"`
	// Params uses the same keys as the YAML parameter file
	Params json.RawMessage `json:"params,omitempty"`
	Name   string          `json:"name,omitempty"`
	Reuse  bool            `json:"reuse,omitempty"`
}

// ReconstructionResponse is the reply to a reconstruction
type ReconstructionResponse struct {
	Run     *run.Record     `json:"run"`
	Summary *corda.Summary  `json:"summary,omitempty"`
	Model   json.RawMessage `json:"model,omitempty"`
	Cached  bool            `json:"cached"`
}

// AssociationBody is the payload of POST /api/associations
type AssociationBody struct {
	Model      json.RawMessage `json:"model"`
	Confidence map[string]int  `json:"confidence"`
	Params     json.RawMessage `json:"params,omitempty"`
	Reactions  []string        `json:"reactions"`
	// PenalizeMedium and DetectRedundancy default to true when omitted
	PenalizeMedium   *bool `json:"penalize_medium,omitempty"`
	DetectRedundancy *bool `json:"detect_redundancy,omitempty"`
}

// search resolves omitted flags to the search defaults
func (b AssociationBody) search() corda.SearchOptions {
	opts := corda.DefaultSearchOptions()
	if b.PenalizeMedium != nil {
		opts.PenalizeMedium = *b.PenalizeMedium
	}
	if b.DetectRedundancy != nil {
		opts.DetectRedundancy = *b.DetectRedundancy
	}
	return opts
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReconstruct(w http.ResponseWriter, r *http.Request) {
	var body ReconstructionBody
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	net, err := cobrajson.Read(body.Model)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts, err := s.options(body.Params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	req := app.ReconstructionRequest{Network: net, Options: opts, Name: body.Name, Reuse: body.Reuse}
	switch {
	case len(body.Confidence) > 0:
		req.Confidence, err = confidence.FromInts(body.Confidence)
	case len(body.GeneConfidence) > 0:
		var genes confidence.Map
		genes, err = confidence.FromInts(body.GeneConfidence)
		req.GeneConfidence = genes
	}
	if err != nil {
		s.writeError(w, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}

	if err := s.capacity.Acquire(r.Context(), 1); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.service.Reconstruct(r.Context(), req)
	s.capacity.Release(1)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := ReconstructionResponse{Run: res.Run, Summary: res.Summary, Cached: res.Cached}
	if res.Model != nil {
		var buf bytes.Buffer
		if err := cobrajson.Write(&buf, res.Model); err != nil {
			s.writeError(w, err)
			return
		}
		resp.Model = buf.Bytes()
	}
	status := http.StatusCreated
	if res.Cached {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleAssociated(w http.ResponseWriter, r *http.Request) {
	var body AssociationBody
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if len(body.Reactions) == 0 {
		s.writeError(w, errors.InvalidInput("reactions cannot be empty"))
		return
	}

	net, err := cobrajson.Read(body.Model)
	if err != nil {
		s.writeError(w, err)
		return
	}
	conf, err := confidence.FromInts(body.Confidence)
	if err != nil {
		s.writeError(w, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}
	opts, err := s.options(body.Params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.capacity.Acquire(r.Context(), 1); err != nil {
		s.writeError(w, err)
		return
	}
	out, err := s.service.Associated(r.Context(), app.AssociationRequest{
		Network:    net,
		Confidence: conf,
		Options:    opts,
		Search:     body.search(),
		Variables:  body.Reactions,
	})
	s.capacity.Release(1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.InvalidInput(fmt.Sprintf("invalid limit %q", v)))
			return
		}
		limit = n
	}
	runs, err := s.service.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*run.Record{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(report.Markdown(rec))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML(rec))
}

// options layers request params over the engine defaults
func (s *Server) options(raw json.RawMessage) (corda.Options, error) {
	opts := s.engine.Options()
	opts.Logger = s.logger
	if len(raw) == 0 {
		return opts, nil
	}
	params, err := config.ParseParams(raw)
	if err != nil {
		return opts, err
	}
	if err := params.Apply(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeConfigInvalid:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeAlreadyBuilt:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
