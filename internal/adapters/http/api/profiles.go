package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/flowfit/internal/adapters/interchange"
	service "github.com/okian/flowfit/internal/app"
	"github.com/okian/flowfit/internal/domain/model"
)

// decodeProfile reads one JSON profile from the body.
func (s *Server) decodeProfile(w http.ResponseWriter, r *http.Request) (model.Profile, error) {
	var p model.Profile
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err := dec.Decode(&p); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.Profile{}, err
		}
		return model.Profile{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return p, nil
}

// handleEvaluate handles POST /evaluate.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate"
	p, err := s.decodeProfile(w, r)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	ev, err := s.deps.Evaluate(r.Context(), p)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	if wantsText(r) {
		writeText(w, http.StatusOK, ev.Report)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

type submitResponse struct {
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// handleSubmit handles POST /submissions. An Idempotency-Key header lets a
// form resend safely; without it every post is a new respondent.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	p, err := s.decodeProfile(w, r)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	sub, err := s.deps.Submit(r.Context(), p, r.Header.Get("Idempotency-Key"))
	switch {
	case errors.Is(err, service.ErrDuplicateSubmission):
		w.Header().Set("Location", "/submissions/"+sub.ID)
		writeJSON(w, http.StatusConflict, submitResponse{ID: sub.ID, Duplicate: true})
	case err != nil:
		s.fail(w, r, op, err)
	default:
		w.Header().Set("Location", "/submissions/"+sub.ID)
		writeJSON(w, http.StatusCreated, submitResponse{ID: sub.ID})
	}
}

// handleGetSubmission handles GET /submissions/{id}.
func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_submission"
	sub, err := s.deps.Submission(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// handleExport handles GET /submissions/export?format=csv|json.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(interchange.FormatCSV)
	}
	f, err := interchange.ParseFormat(name)
	if err != nil || f == interchange.FormatYAML {
		writeError(w, http.StatusBadRequest, "invalid_input", fmt.Errorf("%w: format must be csv or json", ErrBadRequest))
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="submissions.%s"`, f))
	if err := s.deps.Export(r.Context(), f, w); err != nil {
		s.fail(w, r, op, err)
	}
}
