package adapthttp

import (
	"net/http"

	"fitcore/internal/domain"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	p, err := s.goals.GetProfile(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	var p domain.Profile
	if err := parseJSON(r, &p); err != nil {
		s.fail(w, r, err)
		return
	}
	saved, err := s.goals.SaveProfile(r.Context(), user.ID, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	report, err := s.goals.Goals(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
