package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicAnalysisCompleted   = "analysis.completed"
	TopicLocationsIdentified = "locations.identified"
)

// Base provides common fields for domain events.
type Base struct {
	ID        string    `json:"event_id"`
	Type      string    `json:"event_type"`
	Timestamp time.Time `json:"occurred_at"`
	AggID     string    `json:"aggregate_id"`
}

func newBase(topic, aggID string, now time.Time) Base {
	return Base{
		ID:        uuid.New().String(),
		Type:      topic,
		Timestamp: now.UTC(),
		AggID:     aggID,
	}
}

func (e Base) EventID() string       { return e.ID }
func (e Base) Topic() string         { return e.Type }
func (e Base) OccurredAt() time.Time { return e.Timestamp }
func (e Base) AggregateID() string   { return e.AggID }

// Event is implemented by every published event. AggregateID is used as the
// message key.
type Event interface {
	EventID() string
	Topic() string
	OccurredAt() time.Time
	AggregateID() string
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// AnalysisCompleted is emitted after a composite table is persisted.
type AnalysisCompleted struct {
	Base
	AnalysisID string         `json:"analysis_id"`
	Version    string         `json:"version,omitempty"`
	Candidate  string         `json:"candidate"`
	Opponent   string         `json:"opponent"`
	Location   string         `json:"location"`
	Rows       int            `json:"rows"`
	Quadrants  map[string]int `json:"quadrants"`
}

// NewAnalysisCompleted keys the event by artifact key.
func NewAnalysisCompleted(key string, now time.Time) *AnalysisCompleted {
	return &AnalysisCompleted{Base: newBase(TopicAnalysisCompleted, key, now)}
}

// LocationsIdentified is emitted after a filter result is saved under a tag.
type LocationsIdentified struct {
	Base
	AnalysisKey    string   `json:"analysis_key"`
	TotalLocations int      `json:"total_locations"`
	Filters        []string `json:"filters_applied"`
}

// NewLocationsIdentified keys the event by tag.
func NewLocationsIdentified(tag string, now time.Time) *LocationsIdentified {
	return &LocationsIdentified{Base: newBase(TopicLocationsIdentified, tag, now)}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

//Personal.AI order the ending
