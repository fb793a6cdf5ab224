package threshold

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCascade_Evaluate(t *testing.T) {
	t.Parallel()

	c := NewCascade("similar",
		Rule[float64]{Label: "unknown", Match: IsNaN},
		Rule[float64]{Label: "up", Match: Above(2)},
		Rule[float64]{Label: "down", Match: Below(-2)},
	)

	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"nan", math.NaN(), "unknown"},
		{"above", 2.5, "up"},
		{"boundary high is strict", 2, "similar"},
		{"below", -3, "down"},
		{"boundary low is strict", -2, "similar"},
		{"zero", 0, "similar"},
		{"positive infinity", math.Inf(1), "up"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, c.Evaluate(tt.in))
		})
	}
}

func TestCascade_FirstMatchWins(t *testing.T) {
	t.Parallel()
	c := NewCascade("none",
		Rule[int]{Label: "first", Match: func(v int) bool { return v > 0 }},
		Rule[int]{Label: "second", Match: func(v int) bool { return v > 5 }},
	)
	assert.Equal(t, "first", c.Evaluate(10))
	assert.Equal(t, "none", c.Evaluate(0))
}

func TestCascade_Labels(t *testing.T) {
	t.Parallel()
	c := NewCascade("c", Rule[int]{Label: "a"}, Rule[int]{Label: "b"})
	assert.Equal(t, []string{"a", "b", "c"}, c.Labels())
	assert.Equal(t, "c", c.Fallback())
	// nil predicate never matches
	assert.Equal(t, "c", c.Evaluate(1))
}

//Personal.AI order the ending
