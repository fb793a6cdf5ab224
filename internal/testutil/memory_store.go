package testutil

import (
	"context"
	"strconv"
	"sync"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/event"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/location"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// MemoryArtifacts is an in-memory versioned blob store. Versions count from 1
// per key.
type MemoryArtifacts struct {
	mu       sync.Mutex
	versions map[string][][]byte
	SaveErr  error
}

// NewMemoryArtifacts returns an empty store.
func NewMemoryArtifacts() *MemoryArtifacts {
	return &MemoryArtifacts{versions: make(map[string][][]byte)}
}

func (m *MemoryArtifacts) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	m.versions[key] = append(m.versions[key], append([]byte(nil), data...))
	return strconv.Itoa(len(m.versions[key])), nil
}

func (m *MemoryArtifacts) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.versions[key]
	if len(v) == 0 {
		return nil, errors.Newf(errors.ErrCodeNotFound, "artifact %q not found", key)
	}
	return v[len(v)-1], nil
}

// Versions returns the number of stored versions of key.
func (m *MemoryArtifacts) Versions(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.versions[key])
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []event.Event
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, e event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, e)
	return p.Err
}

// Topics lists the topics of recorded events in order.
func (p *RecordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Events))
	for i, e := range p.Events {
		out[i] = e.Topic()
	}
	return out
}

// MemoryLocations is an in-memory location store with a bounded history.
type MemoryLocations struct {
	mu      sync.Mutex
	sets    map[string]*location.Identified
	current string
	history []location.HistoryEntry
	SaveErr error
}

// NewMemoryLocations returns an empty store.
func NewMemoryLocations() *MemoryLocations {
	return &MemoryLocations{sets: make(map[string]*location.Identified)}
}

func (m *MemoryLocations) Save(_ context.Context, set *location.Identified) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.sets[set.Tag] = set
	m.current = set.Tag
	m.history = location.AppendHistory(m.history, set.Entry(), location.DefaultHistorySize)
	return nil
}

func (m *MemoryLocations) Get(_ context.Context, tag string) (*location.Identified, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tag == "" {
		tag = m.current
	}
	set, ok := m.sets[tag]
	if !ok {
		return nil, errors.New(errors.ErrCodeLocationsNotFound,
			"No identified locations found. Please run a location filter first.")
	}
	return set, nil
}

func (m *MemoryLocations) History(context.Context) ([]location.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]location.HistoryEntry(nil), m.history...), nil
}

//Personal.AI order the ending
