// Package dataset models a labeled text dataset as named splits, the way
// classification corpora ship: one ordered sequence of examples per split.
package dataset

import (
	"fmt"
	"sort"
)

// Canonical split names. Splits are free-form, these are just the defaults.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
	SplitTest       = "test"
)

// Example is one labeled text record. Single-label corpora set Label;
// multi-label corpora set Labels to a multi-hot vector sized to the label
// mapping.
type Example struct {
	Text   string `json:"text"`
	Label  int    `json:"label"`
	Labels []int  `json:"labels,omitempty"`
}

// Split is an ordered sequence of labeled examples.
type Split []Example

// Texts returns the raw texts of the split, in order.
func (s Split) Texts() []string {
	out := make([]string, len(s))
	for i, ex := range s {
		out[i] = ex.Text
	}
	return out
}

// ClassIDs returns the scalar label ids of the split, in order.
func (s Split) ClassIDs() []int {
	out := make([]int, len(s))
	for i, ex := range s {
		out[i] = ex.Label
	}
	return out
}

// LabelVectors returns the multi-hot label vectors of the split, in order.
func (s Split) LabelVectors() [][]int {
	out := make([][]int, len(s))
	for i, ex := range s {
		out[i] = ex.Labels
	}
	return out
}

// Dataset is a split-keyed labeled corpus plus its hub identity.
type Dataset struct {
	Name   string
	Type   string
	Splits map[string]Split
}

// Split returns the named split or an error naming the ones that exist.
func (d *Dataset) Split(name string) (Split, error) {
	s, ok := d.Splits[name]
	if !ok {
		return nil, fmt.Errorf("dataset has no split %q (have %v)", name, d.SplitNames())
	}
	return s, nil
}

// SplitNames returns the split names in sorted order.
func (d *Dataset) SplitNames() []string {
	names := make([]string, 0, len(d.Splits))
	for name := range d.Splits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TokenizedExample is one example after the batched tokenizer transform:
// token ids truncated/padded to the configured maximum length, plus the
// untouched label.
type TokenizedExample struct {
	InputIDs      []int `json:"input_ids"`
	AttentionMask []int `json:"attention_mask"`
	Label         int   `json:"label"`
	Labels        []int `json:"labels,omitempty"`
}

// TokenizedSplit is an ordered sequence of tokenized examples.
type TokenizedSplit []TokenizedExample

// ClassIDs returns the scalar label ids of the tokenized split, in order.
func (s TokenizedSplit) ClassIDs() []int {
	out := make([]int, len(s))
	for i, ex := range s {
		out[i] = ex.Label
	}
	return out
}

// LabelVectors returns the multi-hot label vectors of the tokenized split.
func (s TokenizedSplit) LabelVectors() [][]int {
	out := make([][]int, len(s))
	for i, ex := range s {
		out[i] = ex.Labels
	}
	return out
}

// Tokenized holds every split of a dataset after tokenization.
type Tokenized map[string]TokenizedSplit

// Split returns the named tokenized split.
func (t Tokenized) Split(name string) (TokenizedSplit, error) {
	s, ok := t[name]
	if !ok {
		return nil, fmt.Errorf("no tokenized split %q", name)
	}
	return s, nil
}
