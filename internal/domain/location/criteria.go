// Package location filters a composite analysis table down to a named set of
// coordinates and models the identified-location sets derived from it.
package location

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// Numeric lower-bound keys.
const (
	KeyMinAffinity   = "min_affinity"
	KeyMinPopularity = "min_popularity"
)

// Criterion is one filter step: a numeric lower bound (for the min_* keys) or
// a categorical membership test on Column.
type Criterion struct {
	Column string
	Min    *float64
	Values []string
}

// IsNumeric reports whether the criterion is a lower bound.
func (c Criterion) IsNumeric() bool { return c.Min != nil }

// MinAffinity builds a min_affinity criterion.
func MinAffinity(v float64) Criterion { return Criterion{Column: KeyMinAffinity, Min: &v} }

// MinPopularity builds a min_popularity criterion.
func MinPopularity(v float64) Criterion { return Criterion{Column: KeyMinPopularity, Min: &v} }

// In builds a categorical criterion.
func In(column string, values ...string) Criterion {
	return Criterion{Column: column, Values: values}
}

// Criteria is an ordered list of filter steps. Its JSON form is an object
// whose key order is preserved.
type Criteria []Criterion

// UnmarshalJSON walks the object token by token so that key order survives.
func (c *Criteria) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New(errors.ErrCodeInvalidCriteria, "filter criteria must be a JSON object")
	}
	var out Criteria
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		crit, err := parseCriterion(key, raw)
		if err != nil {
			return err
		}
		out = append(out, crit)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// MarshalJSON writes the criteria back as an ordered object.
func (c Criteria) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, crit := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(crit.Column)
		buf.Write(k)
		buf.WriteByte(':')
		var v []byte
		var err error
		switch {
		case crit.IsNumeric():
			v, err = json.Marshal(*crit.Min)
		case len(crit.Values) == 1:
			v, err = json.Marshal(crit.Values[0])
		default:
			v, err = json.Marshal(crit.Values)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func parseCriterion(key string, raw json.RawMessage) (Criterion, error) {
	if key == KeyMinAffinity || key == KeyMinPopularity {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			var s string
			if json.Unmarshal(raw, &s) != nil {
				return Criterion{}, errors.Newf(errors.ErrCodeInvalidCriteria, "%s must be a number", key)
			}
			n = json.Number(s)
		}
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return Criterion{}, errors.Newf(errors.ErrCodeInvalidCriteria, "%s must be a number", key)
		}
		return Criterion{Column: key, Min: &f}, nil
	}

	var single interface{}
	if err := json.Unmarshal(raw, &single); err != nil {
		return Criterion{}, errors.Wrap(err, errors.ErrCodeInvalidCriteria, "invalid value for "+key)
	}
	switch v := single.(type) {
	case string:
		return In(key, v), nil
	case float64, bool:
		return In(key, fmt.Sprint(v)), nil
	case []interface{}:
		vals := make([]string, 0, len(v))
		for _, item := range v {
			vals = append(vals, fmt.Sprint(item))
		}
		return In(key, vals...), nil
	default:
		return Criterion{}, errors.Newf(errors.ErrCodeInvalidCriteria, "%s must be a string or a list of strings", key)
	}
}

//Personal.AI order the ending
