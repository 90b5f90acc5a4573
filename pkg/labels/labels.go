// Package labels holds the bidirectional mapping between class names and the
// integer ids a classifier head is trained against.
package labels

import (
	"fmt"
	"sort"
)

// Problem types understood by sequence-classification model configs.
const (
	ProblemTypeSingleLabel = "single_label_classification"
	ProblemTypeMultiLabel  = "multi_label_classification"
)

// Mapping is an immutable name<->id mapping. The id->name direction is derived
// at construction and is the exact inverse of name->id.
type Mapping struct {
	toID   map[string]int
	toName map[int]string
}

// New builds a Mapping from a name->id map. Ids must be unique; they are not
// required to be dense.
func New(labelToID map[string]int) (*Mapping, error) {
	if len(labelToID) == 0 {
		return nil, fmt.Errorf("label mapping is empty")
	}

	toID := make(map[string]int, len(labelToID))
	toName := make(map[int]string, len(labelToID))
	for name, id := range labelToID {
		if other, ok := toName[id]; ok {
			return nil, fmt.Errorf("labels %q and %q share id %d", other, name, id)
		}
		toID[name] = id
		toName[id] = name
	}

	return &Mapping{toID: toID, toName: toName}, nil
}

// FromNames builds a Mapping assigning ids 0..len(names)-1 in order.
func FromNames(names []string) (*Mapping, error) {
	toID := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := toID[name]; ok {
			return nil, fmt.Errorf("duplicate label %q", name)
		}
		toID[name] = i
	}
	return New(toID)
}

// Size returns the number of labels, i.e. the output dimensionality of the
// classifier head.
func (m *Mapping) Size() int { return len(m.toID) }

// ID returns the id for a label name.
func (m *Mapping) ID(name string) (int, bool) {
	id, ok := m.toID[name]
	return id, ok
}

// Name returns the label name for an id.
func (m *Mapping) Name(id int) (string, bool) {
	name, ok := m.toName[id]
	return name, ok
}

// Names returns all label names sorted by id.
func (m *Mapping) Names() []string {
	ids := make([]int, 0, len(m.toName))
	for id := range m.toName {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, m.toName[id])
	}
	return names
}

// LabelToID returns a copy of the name->id map, for embedding into a model
// configuration.
func (m *Mapping) LabelToID() map[string]int {
	out := make(map[string]int, len(m.toID))
	for k, v := range m.toID {
		out[k] = v
	}
	return out
}

// IDToLabel returns a copy of the derived id->name map.
func (m *Mapping) IDToLabel() map[int]string {
	out := make(map[int]string, len(m.toName))
	for k, v := range m.toName {
		out[k] = v
	}
	return out
}

// ProblemType returns the sequence-classification problem type for this
// mapping given the multi-label mode.
func (m *Mapping) ProblemType(multiLabel bool) string {
	if multiLabel {
		return ProblemTypeMultiLabel
	}
	return ProblemTypeSingleLabel
}
