package adapthttp

import (
	"errors"
	"io"
	"net/http"

	"fitcore/internal/domain"
)

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	programs, err := s.progress.ListPrograms(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if programs == nil {
		programs = []domain.Program{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": programs})
}

func (s *Server) handleSaveProgram(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	var p domain.Program
	if err := parseJSON(r, &p); err != nil {
		s.fail(w, r, err)
		return
	}
	saved, err := s.progress.SaveProgram(r.Context(), user.ID, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	p, err := s.progress.GetProgram(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProgramSummary(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	sum, err := s.progress.Summary(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// completion reads {"done": bool}. An empty body marks the item done.
func completion(r *http.Request) (bool, error) {
	if r.ContentLength == 0 {
		return true, nil
	}
	var req struct {
		Done *bool `json:"done"`
	}
	err := parseJSON(r, &req)
	if errors.Is(err, io.EOF) {
		// chunked requests report an unknown length even when empty
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if req.Done == nil {
		return true, nil
	}
	return *req.Done, nil
}

func (s *Server) handleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	done, err := completion(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := s.progress.CompleteWorkout(r.Context(), user.ID, r.PathValue("id"), r.PathValue("workoutID"), done)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if done {
		s.metrics.CounterWorkoutsCompleted.Inc()
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleCompleteExercise(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	done, err := completion(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := s.progress.CompleteExercise(r.Context(), user.ID, r.PathValue("id"), r.PathValue("exerciseID"), done)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleLockWeek(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	number, err := pathInt(r, "number")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req struct {
		Locked bool `json:"locked"`
	}
	if err := parseJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := s.progress.SetWeekLocked(r.Context(), user.ID, r.PathValue("id"), number, req.Locked)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
