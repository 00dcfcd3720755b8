package domain

import "math"

// Progress is a completed/total count with its whole-number percentage.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Computable reports whether the progress has anything to count. A zero
// Percentage with Computable() == false means "nothing to do", not "0% done".
func (p Progress) Computable() bool {
	return p.Total > 0
}

// WorkoutCompletionRatio returns the fraction of completed workouts in [0,1].
// An empty list yields 0.
func WorkoutCompletionRatio(workouts []Workout) float64 {
	if len(workouts) == 0 {
		return 0
	}
	return float64(countCompleted(workouts)) / float64(len(workouts))
}

// ComputeWeekProgress counts the completed workouts of a week.
func ComputeWeekProgress(week Week) Progress {
	return newProgress(countCompleted(week.Workouts), len(week.Workouts))
}

// ComputeProgramProgress counts completed workouts across every week of the
// program. The percentage comes from the flattened counts, never from the
// per-week percentages.
func ComputeProgramProgress(program Program) Progress {
	var completed, total int
	for _, wk := range program.Weeks {
		completed += countCompleted(wk.Workouts)
		total += len(wk.Workouts)
	}
	return newProgress(completed, total)
}

// ResolveActiveWeek returns the first week, in week-number order, that is
// neither locked nor complete. When every week is locked or complete the last
// week is returned. ok is false only for a program without weeks.
func ResolveActiveWeek(program Program) (week Week, ok bool) {
	if len(program.Weeks) == 0 {
		return Week{}, false
	}
	for _, wk := range program.Weeks {
		if !wk.Locked && !wk.IsCompleted() {
			return wk, true
		}
	}
	return program.Weeks[len(program.Weeks)-1], true
}

// IsWorkoutAccessible reports whether the user may open workout. A locked
// week hides all of its workouts whatever their own flags say.
func IsWorkoutAccessible(week Week, workout Workout) bool {
	if week.Locked {
		return false
	}
	return !workout.Locked
}

func countCompleted(workouts []Workout) int {
	n := 0
	for _, w := range workouts {
		if w.IsCompleted() {
			n++
		}
	}
	return n
}

func newProgress(completed, total int) Progress {
	return Progress{Completed: completed, Total: total, Percentage: roundPercent(completed, total)}
}

// roundPercent rounds half away from zero, so 2.5 becomes 3.
func roundPercent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
