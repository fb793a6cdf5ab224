// Package threshold provides ordered rule cascades that map a value to the
// label of the first rule it satisfies.
package threshold

import "math"

// Rule pairs a predicate with the label it produces.
type Rule[T any] struct {
	Label string
	Match func(T) bool
}

// Cascade evaluates rules in declaration order and falls back to a default
// label when none match.
type Cascade[T any] struct {
	rules    []Rule[T]
	fallback string
}

// NewCascade builds a cascade. Rules are evaluated in the given order.
func NewCascade[T any](fallback string, rules ...Rule[T]) Cascade[T] {
	cp := make([]Rule[T], len(rules))
	copy(cp, rules)
	return Cascade[T]{rules: cp, fallback: fallback}
}

// Evaluate returns the label of the first matching rule or the fallback.
func (c Cascade[T]) Evaluate(v T) string {
	for _, r := range c.rules {
		if r.Match != nil && r.Match(v) {
			return r.Label
		}
	}
	return c.fallback
}

// Labels lists every label the cascade can emit, fallback last.
func (c Cascade[T]) Labels() []string {
	out := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		out = append(out, r.Label)
	}
	return append(out, c.fallback)
}

// Fallback returns the default label.
func (c Cascade[T]) Fallback() string { return c.fallback }

// Above matches values strictly greater than limit.
func Above(limit float64) func(float64) bool {
	return func(v float64) bool { return v > limit }
}

// Below matches values strictly less than limit.
func Below(limit float64) func(float64) bool {
	return func(v float64) bool { return v < limit }
}

// IsNaN matches missing values.
func IsNaN(v float64) bool { return math.IsNaN(v) }

//Personal.AI order the ending
