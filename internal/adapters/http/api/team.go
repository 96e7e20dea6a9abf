package api

import (
	"net/http"

	"github.com/okian/flowfit/internal/adapters/interchange"
)

// handleTeam handles GET /team over every stored submission.
func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.team"
	out, err := s.deps.TeamReport(r.Context())
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	if wantsText(r) {
		writeText(w, http.StatusOK, out.Report)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleTeamUpload handles POST /team/evaluate. The body is a JSON, YAML or
// wide CSV file, chosen by Content-Type.
func (s *Server) handleTeamUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_upload"
	f, err := interchange.FormatFromContentType(r.Header.Get("Content-Type"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	profiles, err := interchange.Decode(f, http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	out, err := s.deps.TeamReportFrom(r.Context(), profiles)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	if wantsText(r) {
		writeText(w, http.StatusOK, out.Report)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
