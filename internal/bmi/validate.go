package bmi

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalPattern accepts plain decimal notation only: no locale separators,
// hex floats, underscores, NaN or Inf.
var decimalPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// Validate turns the two raw text inputs into an InputPair.
//
// Checks run across both fields in order: emptiness, then numeric syntax,
// then positivity. The returned error is always a *ValidationError.
func Validate(weightText, heightText string) (InputPair, error) {
	w := strings.TrimSpace(weightText)
	h := strings.TrimSpace(heightText)

	if w == "" {
		return InputPair{}, &ValidationError{Kind: EmptyInput, Field: FieldWeight}
	}
	if h == "" {
		return InputPair{}, &ValidationError{Kind: EmptyInput, Field: FieldHeight}
	}

	weight, ok := parseDecimal(w)
	if !ok {
		return InputPair{}, &ValidationError{Kind: NotNumeric, Field: FieldWeight, Value: w}
	}
	height, ok := parseDecimal(h)
	if !ok {
		return InputPair{}, &ValidationError{Kind: NotNumeric, Field: FieldHeight, Value: h}
	}

	if weight <= 0 {
		return InputPair{}, &ValidationError{Kind: NonPositive, Field: FieldWeight, Value: w}
	}
	if height <= 0 {
		return InputPair{}, &ValidationError{Kind: NonPositive, Field: FieldHeight, Value: h}
	}

	return InputPair{Weight: weight, Height: height}, nil
}

func parseDecimal(s string) (float64, bool) {
	if !decimalPattern.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
