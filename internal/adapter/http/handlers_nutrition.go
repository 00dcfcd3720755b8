package adapthttp

import (
	"net/http"

	"fitcore/internal/app"
	"fitcore/internal/domain"
)

// GET /nutrition/day?date=2006-01-02 (defaults to today)
func (s *Server) handleNutritionDay(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	day := r.URL.Query().Get("date")
	if day == "" {
		day = s.ledger.Today()
	}

	log, summary, err := s.ledger.DayView(r.Context(), user.ID, day)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"log":     log,
		"summary": summary,
	})
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	var e domain.FoodEntry
	if err := parseJSON(r, &e); err != nil {
		s.fail(w, r, err)
		return
	}
	log, err := s.ledger.AddEntry(r.Context(), user.ID, e)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.CounterFoodEntries.WithLabelValues(string(e.Meal)).Inc()
	writeJSON(w, http.StatusCreated, log)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	if err := s.ledger.RemoveEntry(r.Context(), user.ID, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": true})
}

// GET /nutrition/range?from=&to= (inclusive; to defaults to from)
func (s *Server) handleNutritionRange(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if to == "" {
		to = from
	}

	days, err := s.ledger.Range(r.Context(), user.ID, from, to)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if days == nil {
		days = []app.DayTotal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"from": from, "to": to, "days": days})
}
