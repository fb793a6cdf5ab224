package signal

import (
	"fmt"
	"strings"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// Age buckets accepted by the provider.
const (
	Age24AndYounger = "24_and_younger"
	Age25To29       = "25_to_29"
	Age30To34       = "30_to_34"
	Age35AndYounger = "35_and_younger"
	Age36To55       = "36_to_55"
	Age35To44       = "35_to_44"
	Age45To54       = "45_to_54"
	Age55AndOlder   = "55_and_older"
)

// Genders accepted by the provider.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// AllAges and AllGenders label an unfiltered demographic in summaries.
const (
	AllAges    = "all_ages"
	AllGenders = "all_genders"
)

// AgeBuckets lists every accepted age value.
var AgeBuckets = []string{
	Age24AndYounger, Age25To29, Age30To34, Age35AndYounger,
	Age36To55, Age35To44, Age45To54, Age55AndOlder,
}

// Genders lists every accepted gender value.
var Genders = []string{GenderMale, GenderFemale}

// Demographics is the optional age/gender filter forwarded to the provider.
type Demographics struct {
	Age    string `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// IsZero reports whether no demographic filter is set.
func (d Demographics) IsZero() bool { return d.Age == "" && d.Gender == "" }

// Validate rejects values outside the accepted enums.
func (d Demographics) Validate() error {
	if d.Age != "" && !contains(AgeBuckets, d.Age) {
		return errors.New(errors.ErrCodeInvalidDemographic,
			fmt.Sprintf("invalid age %q", d.Age)).
			WithDetail("accepted: " + strings.Join(AgeBuckets, ", "))
	}
	if d.Gender != "" && !contains(Genders, d.Gender) {
		return errors.New(errors.ErrCodeInvalidDemographic,
			fmt.Sprintf("invalid gender %q", d.Gender)).
			WithDetail("accepted: " + strings.Join(Genders, ", "))
	}
	return nil
}

// AgeLabel returns the age or AllAges.
func (d Demographics) AgeLabel() string {
	if d.Age == "" {
		return AllAges
	}
	return d.Age
}

// GenderLabel returns the gender or AllGenders.
func (d Demographics) GenderLabel() string {
	if d.Gender == "" {
		return AllGenders
	}
	return d.Gender
}

// ConvertAgeForInsights collapses fine-grained buckets into the three
// coarse ones. Grid requests forward the age unchanged. Unknown values map
// to "".
func ConvertAgeForInsights(age string) string {
	switch age {
	case Age24AndYounger, Age25To29, Age30To34, Age35AndYounger:
		return Age35AndYounger
	case Age35To44, Age45To54, Age36To55:
		return Age36To55
	case Age55AndOlder:
		return Age55AndOlder
	default:
		return ""
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
