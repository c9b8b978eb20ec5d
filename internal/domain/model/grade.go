package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownGrade is returned when a value does not name a supported grade.
var ErrUnknownGrade = errors.New("unknown grade")

// Grade is the participant's school grade.
type Grade string

// Supported grades.
const (
	GradeFourth Grade = "الرابع"
	GradeSixth  Grade = "السادس"
)

// Grades lists the supported grades in display order.
func Grades() []Grade {
	return []Grade{GradeFourth, GradeSixth}
}

// ParseGrade accepts the Arabic grade name or its number.
func ParseGrade(s string) (Grade, error) {
	switch strings.TrimSpace(s) {
	case string(GradeFourth), "4":
		return GradeFourth, nil
	case string(GradeSixth), "6":
		return GradeSixth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGrade, s)
}

// Valid reports whether g is a supported grade.
func (g Grade) Valid() bool {
	return g == GradeFourth || g == GradeSixth
}
