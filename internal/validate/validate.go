package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Collect drops nil results; it returns nil when every check passed.
func Collect(checks ...*ErrField) Errs {
	var out Errs
	for _, c := range checks {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MinInt(field string, v, min int64) *ErrField {
	if v < min {
		return &ErrField{Field: field, Msg: "must be >= " + strconv.FormatInt(min, 10)}
	}
	return nil
}

func IntRange(field string, v, min, max int64) *ErrField {
	if v < min || v > max {
		return &ErrField{Field: field, Msg: "must be between " + strconv.FormatInt(min, 10) + " and " + strconv.FormatInt(max, 10)}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// MinFloat also rejects NaN and infinities.
func MinFloat(field string, v, min float64) *ErrField {
	if !finite(v) {
		return &ErrField{Field: field, Msg: "must be a finite number"}
	}
	if v < min {
		return &ErrField{Field: field, Msg: "must be >= " + strconv.FormatFloat(min, 'f', -1, 64)}
	}
	return nil
}

// Float parses a decimal form value. NaN and infinities are refused.
func Float(field, s string) (float64, *ErrField) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &ErrField{Field: field, Msg: "must be a number"}
	}
	if !finite(v) {
		return 0, &ErrField{Field: field, Msg: "must be a finite number"}
	}
	return v, nil
}

// Length counts runes, not bytes.
func Length(field, value string, min, max int) *ErrField {
	n := utf8.RuneCountInString(value)
	switch {
	case n < min:
		return &ErrField{Field: field, Msg: "must be at least " + strconv.Itoa(min) + " characters"}
	case max > 0 && n > max:
		return &ErrField{Field: field, Msg: "cannot exceed " + strconv.Itoa(max) + " characters"}
	}
	return nil
}

func OneOf(field, value string, allowed []string) *ErrField {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ErrField{Field: field, Msg: "must be one of: " + strings.Join(allowed, ", ")}
}

var emailRe = regexp.MustCompile(`^\w+([.+-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

func Email(field, value string) *ErrField {
	if !emailRe.MatchString(value) {
		return &ErrField{Field: field, Msg: "must be a valid email address"}
	}
	return nil
}
