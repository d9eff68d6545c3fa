package ml

import (
	"fmt"
	"sort"
)

// LabelEncoder maps string labels to dense integer codes and back.
// Codes follow the sorted order of the distinct labels seen by Fit.
type LabelEncoder struct {
	Classes []string `msgpack:"classes"`

	index map[string]int
}

// NewLabelEncoder returns an encoder fitted on labels.
func NewLabelEncoder(labels []string) (*LabelEncoder, error) {
	e := &LabelEncoder{}
	if err := e.Fit(labels); err != nil {
		return nil, err
	}
	return e, nil
}

// Fit replaces the encoder's classes with the distinct labels, sorted.
func (e *LabelEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("label encoder: %w", ErrEmpty)
	}
	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	sort.Strings(classes)
	e.Classes = classes
	e.index = nil
	return nil
}

// Len returns the number of classes.
func (e *LabelEncoder) Len() int {
	return len(e.Classes)
}

func (e *LabelEncoder) lookup() map[string]int {
	if e.index == nil {
		e.index = make(map[string]int, len(e.Classes))
		for i, c := range e.Classes {
			e.index[c] = i
		}
	}
	return e.index
}

// Encode returns the code of label.
func (e *LabelEncoder) Encode(label string) (int, error) {
	code, ok := e.lookup()[label]
	if !ok {
		return 0, fmt.Errorf("label encoder: unknown label %q", label)
	}
	return code, nil
}

// EncodeAll encodes every label.
func (e *LabelEncoder) EncodeAll(labels []string) ([]int, error) {
	codes := make([]int, len(labels))
	for i, l := range labels {
		c, err := e.Encode(l)
		if err != nil {
			return nil, err
		}
		codes[i] = c
	}
	return codes, nil
}

// Decode returns the label for code.
func (e *LabelEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.Classes) {
		return "", fmt.Errorf("label encoder: code %d out of range [0,%d)", code, len(e.Classes))
	}
	return e.Classes[code], nil
}
