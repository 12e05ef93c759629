// Package storage persists the append-only history of a sampling run:
// the step sequence, plus named tags for setup artifacts such as
// initial conditions. One writer at a time; readers see a finished
// file.
package storage

import (
	"fmt"

	"github.com/mkoven/pathmc/internal/paths"
)

// Store is the driver's persistence collaborator: append-only steps,
// indexed retrieval, and named tag blobs.
type Store interface {
	AppendStep(*paths.Step) error
	Steps() ([]*paths.Step, error)
	StepAt(i int) (*paths.Step, error)
	Len() int

	SetTag(name string, data []byte) error
	Tag(name string) ([]byte, error)
	TagNames() []string

	Close() error
}

// Tag names used by the CLI surface.
const (
	TagInitialConditions = "initial_conditions"
	TagSetup             = "setup"
)

// MemStore keeps everything in process. Used by tests and as scratch
// during equilibration.
type MemStore struct {
	steps []*paths.Step
	tags  map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{tags: make(map[string][]byte)}
}

func (m *MemStore) AppendStep(s *paths.Step) error {
	m.steps = append(m.steps, s)
	return nil
}

func (m *MemStore) Steps() ([]*paths.Step, error) {
	out := make([]*paths.Step, len(m.steps))
	copy(out, m.steps)
	return out, nil
}

func (m *MemStore) StepAt(i int) (*paths.Step, error) {
	if i < 0 || i >= len(m.steps) {
		return nil, fmt.Errorf("step index %d out of range [0,%d)", i, len(m.steps))
	}
	return m.steps[i], nil
}

func (m *MemStore) Len() int { return len(m.steps) }

func (m *MemStore) SetTag(name string, data []byte) error {
	m.tags[name] = append([]byte(nil), data...)
	return nil
}

func (m *MemStore) Tag(name string) ([]byte, error) {
	data, ok := m.tags[name]
	if !ok {
		return nil, fmt.Errorf("no tag %q", name)
	}
	return data, nil
}

func (m *MemStore) TagNames() []string {
	names := make([]string, 0, len(m.tags))
	for name := range m.tags {
		names = append(names, name)
	}
	return names
}

func (m *MemStore) Close() error { return nil }
