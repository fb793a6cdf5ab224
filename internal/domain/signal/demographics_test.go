package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

func TestDemographics_Validate(t *testing.T) {
	t.Parallel()

	for _, age := range AgeBuckets {
		assert.NoError(t, Demographics{Age: age}.Validate(), age)
	}
	assert.NoError(t, Demographics{Gender: GenderFemale}.Validate())
	assert.NoError(t, Demographics{}.Validate())

	err := Demographics{Age: "18_to_21"}.Validate()
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDemographic))

	err = Demographics{Gender: "other"}.Validate()
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDemographic))
	assert.True(t, errors.IsValidation(err))
}

func TestDemographics_Labels(t *testing.T) {
	t.Parallel()
	d := Demographics{}
	assert.True(t, d.IsZero())
	assert.Equal(t, AllAges, d.AgeLabel())
	assert.Equal(t, AllGenders, d.GenderLabel())

	d = Demographics{Age: Age25To29, Gender: GenderMale}
	assert.False(t, d.IsZero())
	assert.Equal(t, Age25To29, d.AgeLabel())
	assert.Equal(t, GenderMale, d.GenderLabel())
}

func TestConvertAgeForInsights(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		Age24AndYounger: Age35AndYounger,
		Age25To29:       Age35AndYounger,
		Age30To34:       Age35AndYounger,
		Age35AndYounger: Age35AndYounger,
		Age35To44:       Age36To55,
		Age45To54:       Age36To55,
		Age36To55:       Age36To55,
		Age55AndOlder:   Age55AndOlder,
		"teen":          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ConvertAgeForInsights(in), in)
	}
}

func TestResolution_Accumulates(t *testing.T) {
	t.Parallel()
	var r Resolution
	r.AddEntity(Resolved{Key: "A", SearchTerm: "A", ID: "e1", Success: true})
	r.AddEntity(Failed(KindEntity, "B", "Entity not found"))
	r.AddTags([]Resolved{
		{Key: "economy", SearchTerm: "economy", ID: "t1", Success: true, MatchRank: 1},
		{Key: "economy_1", SearchTerm: "economy", ID: "t2", Success: true, MatchRank: 2},
	})
	r.AddTags([]Resolved{Failed(KindTag, "zzz", "Tag not found")})

	assert.Equal(t, []string{"e1"}, r.EntityIDs)
	assert.Equal(t, []string{"t1", "t2"}, r.TagIDs)
	assert.True(t, r.HasEntities())
	assert.Len(t, r.Errors, 2)
	assert.Len(t, r.TagsFor("economy"), 2)

	b, ok := r.Entity("B")
	assert.True(t, ok)
	assert.False(t, b.Success)
	_, ok = r.Entity("C")
	assert.False(t, ok)
}

func TestStrategy_Description(t *testing.T) {
	t.Parallel()
	for _, s := range Strategies {
		assert.True(t, s.Valid())
		assert.NotEmpty(t, s.Description())
	}
	assert.False(t, StrategyNone.Valid())
	assert.Equal(t, StrategyHiddenGoldmine, StrategyFor(SegmentHALP))
}

//Personal.AI order the ending
