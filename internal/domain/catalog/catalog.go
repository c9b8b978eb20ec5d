// Package catalog defines the closed set of point-earning activities and
// the points and display label each one is worth.
package catalog

import (
	"fmt"
	"strings"
)

// Kind identifies a point-earning activity.
type Kind uint8

// Activity kinds in display order. The zero value is not a valid kind.
const (
	Project Kind = iota + 1
	Worksheet
	LessonExplanation
	Strategy
	Research
)

// Entry is the catalog record of a kind.
type Entry struct {
	Kind   Kind   `json:"kind"`
	Points int    `json:"points"`
	Label  string `json:"label"`
}

type definition struct {
	name   string
	points int
	label  string
}

var table = [...]definition{
	Project:           {name: "PROJECT", points: 2, label: "مشروع (نقطتان)"},
	Worksheet:         {name: "WORKSHEET", points: 1, label: "ورقة عمل (نقطة)"},
	LessonExplanation: {name: "LESSON_EXPLANATION", points: 1, label: "شرح درس (نقطة)"},
	Strategy:          {name: "STRATEGY", points: 1, label: "استراتيجية درس (نقطة)"},
	Research:          {name: "RESEARCH", points: 1, label: "بحث (نقطة)"},
}

// Lookup returns the catalog entry for kind. ok is false for values outside the enumeration.
func Lookup(kind Kind) (Entry, bool) {
	if !kind.Valid() {
		return Entry{}, false
	}
	d := table[kind]
	return Entry{Kind: kind, Points: d.points, Label: d.label}, true
}

// Kinds lists every kind in display order.
func Kinds() []Kind {
	return []Kind{Project, Worksheet, LessonExplanation, Strategy, Research}
}

// Entries lists the full catalog in display order.
func Entries() []Entry {
	kinds := Kinds()
	out := make([]Entry, 0, len(kinds))
	for _, k := range kinds {
		e, _ := Lookup(k)
		out = append(out, e)
	}
	return out
}

// Parse maps a wire name such as "LESSON_EXPLANATION" to its kind.
// Matching ignores case and surrounding whitespace.
func Parse(s string) (Kind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if table[k].name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Valid reports whether k belongs to the enumeration.
func (k Kind) Valid() bool {
	return k >= Project && k <= Research
}

// String returns the wire name of k.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return table[k].name
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(table[k].name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
