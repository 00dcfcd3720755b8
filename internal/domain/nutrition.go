package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"time"
)

// Optional is a gram amount that may be unknown. The zero value is absent,
// which is different from a present 0.
type Optional struct {
	Value   float64
	Present bool
}

// Some returns a present Optional holding v.
func Some(v float64) Optional {
	return Optional{Value: v, Present: true}
}

// Plus adds two optionals. The result is present if either side is.
func (o Optional) Plus(other Optional) Optional {
	if !other.Present {
		return o
	}
	if !o.Present {
		return other
	}
	return Some(o.Value + other.Value)
}

// Ptr returns nil for an absent value, for adapters that store NULLs.
func (o Optional) Ptr() *float64 {
	if !o.Present {
		return nil
	}
	v := o.Value
	return &v
}

// OptionalFromPtr is the inverse of Ptr.
func OptionalFromPtr(p *float64) Optional {
	if p == nil {
		return Optional{}
	}
	return Some(*p)
}

// MarshalJSON encodes an absent value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes null as absent.
func (o *Optional) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*o = Optional{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// NutritionInfo holds energy in kcal and macros in grams.
type NutritionInfo struct {
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Fiber    Optional `json:"fiber"`
	Sugar    Optional `json:"sugar"`
}

// Plus returns the field-wise sum of n and o.
func (n NutritionInfo) Plus(o NutritionInfo) NutritionInfo {
	return NutritionInfo{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
		Fiber:    n.Fiber.Plus(o.Fiber),
		Sugar:    n.Sugar.Plus(o.Sugar),
	}
}

// Validate rejects negative amounts.
func (n NutritionInfo) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"calories", n.Calories},
		{"protein", n.Protein},
		{"carbs", n.Carbs},
		{"fat", n.Fat},
		{"fiber", n.Fiber.Value},
		{"sugar", n.Sugar.Value},
	}
	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("%s must be >= 0", f.name)
		}
	}
	return nil
}

// NutritionGoals is the target intake the user is working towards.
type NutritionGoals struct {
	NutritionInfo
}

// MealType tags the meal a food entry was eaten at.
type MealType string

const (
	MealBreakfast   MealType = "breakfast"
	MealBrunch      MealType = "brunch"
	MealLunch       MealType = "lunch"
	MealPreWorkout  MealType = "pre-workout"
	MealPostWorkout MealType = "post-workout"
	MealDinner      MealType = "dinner"
	MealSnack       MealType = "snack"
)

// MealTypes lists every meal type in display order.
var MealTypes = []MealType{
	MealBreakfast, MealBrunch, MealLunch, MealPreWorkout, MealPostWorkout, MealDinner, MealSnack,
}

// ParseMealType returns the MealType named by s.
func ParseMealType(s string) (MealType, error) {
	m := MealType(s)
	if !m.Valid() {
		return "", fmt.Errorf("meal type %q: %w", s, ErrInvalidArgument)
	}
	return m, nil
}

// Valid reports whether m is a known meal type.
func (m MealType) Valid() bool {
	return slices.Contains(MealTypes, m)
}

// FoodEntry is one logged consumption. Nutrition is already scaled to Amount.
type FoodEntry struct {
	ID         string        `json:"id"`
	UserID     int64         `json:"userId"`
	FoodID     string        `json:"foodId"`
	FoodName   string        `json:"foodName"`
	Amount     float64       `json:"amount"`
	Unit       string        `json:"unit"`
	Meal       MealType      `json:"meal"`
	ConsumedAt time.Time     `json:"consumedAt"`
	Nutrition  NutritionInfo `json:"nutrition"`
}

// AggregateDaily sums the nutrition of entries. Fiber and sugar are summed
// only over entries that carry them and stay absent when none does.
func AggregateDaily(entries []FoodEntry) NutritionInfo {
	var total NutritionInfo
	for _, e := range entries {
		total = total.Plus(e.Nutrition)
	}
	return total
}

// FieldComparison is the consumed/target/remaining triple of one field.
// Remaining goes negative when the user is over budget.
type FieldComparison struct {
	Consumed  float64 `json:"consumed"`
	Target    float64 `json:"target"`
	Remaining float64 `json:"remaining"`
}

// OptionalComparison is FieldComparison for fields that may be unknown.
type OptionalComparison struct {
	Consumed  Optional `json:"consumed"`
	Target    float64  `json:"target"`
	Remaining Optional `json:"remaining"`
}

// GoalComparison compares a day's total against the goals. Fiber and Sugar
// are nil when the goals set no target for them.
type GoalComparison struct {
	Calories FieldComparison     `json:"calories"`
	Protein  FieldComparison     `json:"protein"`
	Carbs    FieldComparison     `json:"carbs"`
	Fat      FieldComparison     `json:"fat"`
	Fiber    *OptionalComparison `json:"fiber,omitempty"`
	Sugar    *OptionalComparison `json:"sugar,omitempty"`
}

// CompareToGoal computes remaining = target - consumed for every field the
// goals define.
func CompareToGoal(total NutritionInfo, goals NutritionGoals) GoalComparison {
	return GoalComparison{
		Calories: compareField(total.Calories, goals.Calories),
		Protein:  compareField(total.Protein, goals.Protein),
		Carbs:    compareField(total.Carbs, goals.Carbs),
		Fat:      compareField(total.Fat, goals.Fat),
		Fiber:    compareOptional(total.Fiber, goals.Fiber),
		Sugar:    compareOptional(total.Sugar, goals.Sugar),
	}
}

func compareField(consumed, target float64) FieldComparison {
	return FieldComparison{Consumed: consumed, Target: target, Remaining: target - consumed}
}

func compareOptional(consumed, target Optional) *OptionalComparison {
	if !target.Present {
		return nil
	}
	c := &OptionalComparison{Consumed: consumed, Target: target.Value}
	if consumed.Present {
		c.Remaining = Some(target.Value - consumed.Value)
	}
	return c
}

// FilterByMealType yields the entries eaten at meal, in their original order.
// The sequence reads entries lazily and can be ranged over more than once.
func FilterByMealType(entries []FoodEntry, meal MealType) iter.Seq[FoodEntry] {
	return filter(entries, func(e FoodEntry) bool { return e.Meal == meal })
}

// FilterByDateRange yields the entries consumed in [start, end).
func FilterByDateRange(entries []FoodEntry, start, end time.Time) iter.Seq[FoodEntry] {
	return filter(entries, func(e FoodEntry) bool {
		return !e.ConsumedAt.Before(start) && e.ConsumedAt.Before(end)
	})
}

func filter(entries []FoodEntry, keep func(FoodEntry) bool) iter.Seq[FoodEntry] {
	return func(yield func(FoodEntry) bool) {
		for _, e := range entries {
			if keep(e) && !yield(e) {
				return
			}
		}
	}
}

// MealTotal is the aggregated nutrition of one meal type.
type MealTotal struct {
	Meal    MealType      `json:"meal"`
	Entries int           `json:"entries"`
	Total   NutritionInfo `json:"total"`
}

// MealBreakdown aggregates entries per meal type, in MealTypes order. Meals
// with no entries are skipped.
func MealBreakdown(entries []FoodEntry) []MealTotal {
	out := make([]MealTotal, 0, len(MealTypes))
	for _, meal := range MealTypes {
		matched := slices.Collect(FilterByMealType(entries, meal))
		if len(matched) == 0 {
			continue
		}
		out = append(out, MealTotal{Meal: meal, Entries: len(matched), Total: AggregateDaily(matched)})
	}
	return out
}

// DailyLog is one calendar day of food entries. The total is derived from
// the entries; every mutation returns a new DailyLog with both replaced.
type DailyLog struct {
	day         string
	calorieGoal int
	entries     []FoodEntry
	total       NutritionInfo
}

// NewDailyLog builds the log for day ("2006-01-02"). entries is copied and
// ordered by ConsumedAt.
func NewDailyLog(day string, calorieGoal int, entries []FoodEntry) DailyLog {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b FoodEntry) int {
		return a.ConsumedAt.Compare(b.ConsumedAt)
	})
	return DailyLog{
		day:         day,
		calorieGoal: calorieGoal,
		entries:     sorted,
		total:       AggregateDaily(sorted),
	}
}

// Day returns the calendar date of the log.
func (l DailyLog) Day() string { return l.day }

// CalorieGoal returns the calorie target in force for the day.
func (l DailyLog) CalorieGoal() int { return l.calorieGoal }

// Total returns the sum of the entries.
func (l DailyLog) Total() NutritionInfo { return l.total }

// Entries returns a copy of the entries ordered by timestamp.
func (l DailyLog) Entries() []FoodEntry { return slices.Clone(l.entries) }

// IsEmpty reports whether nothing has been logged for the day.
func (l DailyLog) IsEmpty() bool { return len(l.entries) == 0 }

// Add returns a log with e included.
func (l DailyLog) Add(e FoodEntry) DailyLog {
	return NewDailyLog(l.day, l.calorieGoal, append(slices.Clone(l.entries), e))
}

// Remove returns a log without the entry id. ok is false when id is absent,
// in which case l is returned unchanged.
func (l DailyLog) Remove(id string) (DailyLog, bool) {
	idx := slices.IndexFunc(l.entries, func(e FoodEntry) bool { return e.ID == id })
	if idx < 0 {
		return l, false
	}
	return NewDailyLog(l.day, l.calorieGoal, slices.Delete(slices.Clone(l.entries), idx, idx+1)), true
}

// MarshalJSON exposes the derived fields alongside the entries.
func (l DailyLog) MarshalJSON() ([]byte, error) {
	entries := l.entries
	if entries == nil {
		entries = []FoodEntry{}
	}
	return json.Marshal(struct {
		Day         string        `json:"day"`
		CalorieGoal int           `json:"calorieGoal"`
		Entries     []FoodEntry   `json:"entries"`
		Total       NutritionInfo `json:"total"`
	}{l.day, l.calorieGoal, entries, l.total})
}

// FoodLogRepository is the port for food entry persistence.
type FoodLogRepository interface {
	AddFoodEntry(ctx context.Context, userID int64, e FoodEntry) error
	DeleteFoodEntry(ctx context.Context, userID int64, id string) (bool, error)
	// ListFoodEntries returns entries consumed in [from, to), oldest first.
	ListFoodEntries(ctx context.Context, userID int64, from, to time.Time) ([]FoodEntry, error)
}
