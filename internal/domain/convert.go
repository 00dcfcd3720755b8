package domain

import "fmt"

const (
	kgToLb = 2.2046226218
	inToCm = 2.54
)

// WeightUnit is the unit a body weight was entered in.
type WeightUnit string

const (
	Kilograms WeightUnit = "kg"
	Pounds    WeightUnit = "lb"
)

// HeightUnit is the unit a body height was entered in.
type HeightUnit string

const (
	Centimeters HeightUnit = "cm"
	Inches      HeightUnit = "in"
)

// ConvertWeight converts a weight value between kilograms and pounds.
func ConvertWeight(v float64, from, to WeightUnit) (float64, error) {
	switch {
	case from == to && (from == Kilograms || from == Pounds):
		return v, nil
	case from == Kilograms && to == Pounds:
		return v * kgToLb, nil
	case from == Pounds && to == Kilograms:
		return v / kgToLb, nil
	}
	return 0, fmt.Errorf("weight unit %q -> %q: %w", from, to, ErrInvalidArgument)
}

// ConvertHeight converts a height value between centimeters and inches.
func ConvertHeight(v float64, from, to HeightUnit) (float64, error) {
	switch {
	case from == to && (from == Centimeters || from == Inches):
		return v, nil
	case from == Inches && to == Centimeters:
		return v * inToCm, nil
	case from == Centimeters && to == Inches:
		return v / inToCm, nil
	}
	return 0, fmt.Errorf("height unit %q -> %q: %w", from, to, ErrInvalidArgument)
}
