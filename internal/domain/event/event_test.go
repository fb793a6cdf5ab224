package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnalysisCompleted(t *testing.T) {
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	e := NewAnalysisCompleted("candidate_analysis_jane_ohio.json", now)

	assert.NotEmpty(t, e.EventID())
	assert.Equal(t, TopicAnalysisCompleted, e.Topic())
	assert.Equal(t, "candidate_analysis_jane_ohio.json", e.AggregateID())
	assert.Equal(t, time.UTC, e.OccurredAt().Location())
}

func TestLocationsIdentified_JSON(t *testing.T) {
	e := NewLocationsIdentified("swing", time.Unix(0, 0))
	e.TotalLocations = 3
	b, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, TopicLocationsIdentified, m["event_type"])
	assert.Equal(t, "swing", m["aggregate_id"])
	assert.EqualValues(t, 3, m["total_locations"])
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewLocationsIdentified("x", time.Now())))
}

//Personal.AI order the ending
