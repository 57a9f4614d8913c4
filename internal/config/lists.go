package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/sirsweep/internal/epidemic"
)

// Sweep options accept either a single value or a list in YAML:
//
//	beta: 0.45
//	rho: [0, 0.1, 0.2]
//
// A scalar decodes as a one-element list.

// FloatList is a scalar-or-list of floats.
type FloatList []float64

// IntList is a scalar-or-list of ints.
type IntList []int

// BoolList is a scalar-or-list of bools.
type BoolList []bool

// StrategyList is a scalar-or-list of vaccination strategy names.
type StrategyList []epidemic.Strategy

func decodeList[T any](value *yaml.Node) ([]T, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		var v T
		if err := value.Decode(&v); err != nil {
			return nil, err
		}
		return []T{v}, nil
	case yaml.SequenceNode:
		var vs []T
		if err := value.Decode(&vs); err != nil {
			return nil, err
		}
		return vs, nil
	default:
		return nil, fmt.Errorf("line %d: expected a value or a list", value.Line)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *FloatList) UnmarshalYAML(value *yaml.Node) error {
	vs, err := decodeList[float64](value)
	if err != nil {
		return err
	}
	*l = vs
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *IntList) UnmarshalYAML(value *yaml.Node) error {
	vs, err := decodeList[int](value)
	if err != nil {
		return err
	}
	*l = vs
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *BoolList) UnmarshalYAML(value *yaml.Node) error {
	vs, err := decodeList[bool](value)
	if err != nil {
		return err
	}
	*l = vs
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Names are checked against the
// known strategies.
func (l *StrategyList) UnmarshalYAML(value *yaml.Node) error {
	names, err := decodeList[string](value)
	if err != nil {
		return err
	}
	out := make([]epidemic.Strategy, len(names))
	for i, name := range names {
		s, err := epidemic.ParseStrategy(name)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		out[i] = s
	}
	*l = out
	return nil
}
