package pathfilter

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type specMode int

const (
	modeNone specMode = iota
	modeSingle
	modeList
)

// IgnoreSpec excludes paths from reload notifications. The zero value
// excludes nothing.
type IgnoreSpec struct {
	mode   specMode
	single Pattern
	list   []Pattern
}

// None returns an empty ignore specification.
func None() IgnoreSpec {
	return IgnoreSpec{}
}

// Single returns a specification that excludes paths matching p.
func Single(p Pattern) IgnoreSpec {
	return IgnoreSpec{mode: modeSingle, single: p}
}

// List returns a specification that excludes paths matching any of ps.
func List(ps ...Pattern) IgnoreSpec {
	list := make([]Pattern, len(ps))
	copy(list, ps)
	return IgnoreSpec{mode: modeList, list: list}
}

// ParseIgnore builds a specification from textual patterns: none gives an
// empty specification, one gives a single pattern (regexp by default), more
// give a list (globs by default).
func ParseIgnore(values []string) (IgnoreSpec, error) {
	switch len(values) {
	case 0:
		return None(), nil
	case 1:
		p, err := Parse(values[0], KindRegexp)
		if err != nil {
			return IgnoreSpec{}, err
		}
		return Single(p), nil
	default:
		ps := make([]Pattern, 0, len(values))
		for _, v := range values {
			p, err := Parse(v, KindGlob)
			if err != nil {
				return IgnoreSpec{}, err
			}
			ps = append(ps, p)
		}
		return List(ps...), nil
	}
}

// IsZero reports whether the specification is absent.
func (s IgnoreSpec) IsZero() bool {
	return s.mode == modeNone
}

// Patterns returns the patterns of the specification in order.
func (s IgnoreSpec) Patterns() []Pattern {
	switch s.mode {
	case modeSingle:
		return []Pattern{s.single}
	case modeList:
		out := make([]Pattern, len(s.list))
		copy(out, s.list)
		return out
	default:
		return nil
	}
}

// Excludes reports whether path is ignored by the specification.
func (s IgnoreSpec) Excludes(path string) bool {
	switch s.mode {
	case modeSingle:
		return s.single.Match(path)
	case modeList:
		return anyMatch(s.list, path)
	default:
		return false
	}
}

func anyMatch(patterns []Pattern, path string) bool {
	for _, p := range patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// IsRelevant reports whether a build file should be part of a reload
// notification. A file that was not emitted is never relevant.
func IsRelevant(path string, emitted bool, spec IgnoreSpec) bool {
	if !emitted {
		return false
	}
	return !spec.Excludes(path)
}

// UnmarshalYAML accepts a scalar pattern or a sequence of patterns.
func (s *IgnoreSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || value.Value == "" {
			*s = None()
			return nil
		}
		p, err := Parse(value.Value, KindRegexp)
		if err != nil {
			return err
		}
		*s = Single(p)
		return nil

	case yaml.SequenceNode:
		var raw []string
		if err := value.Decode(&raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidIgnore, err)
		}
		ps := make([]Pattern, 0, len(raw))
		for _, r := range raw {
			p, err := Parse(r, KindGlob)
			if err != nil {
				return err
			}
			ps = append(ps, p)
		}
		*s = List(ps...)
		return nil

	default:
		return ErrInvalidIgnore
	}
}

// MarshalYAML writes the specification back in prefixed form.
func (s IgnoreSpec) MarshalYAML() (interface{}, error) {
	switch s.mode {
	case modeSingle:
		return s.single.String(), nil
	case modeList:
		out := make([]string, len(s.list))
		for i, p := range s.list {
			out[i] = p.String()
		}
		return out, nil
	default:
		return nil, nil
	}
}

// MarshalJSON mirrors MarshalYAML.
func (s IgnoreSpec) MarshalJSON() ([]byte, error) {
	v, err := s.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// UnmarshalJSON accepts null, a string or an array of strings, with the
// same default kinds as UnmarshalYAML.
func (s *IgnoreSpec) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIgnore, err)
	}

	switch t := v.(type) {
	case nil:
		*s = None()
		return nil
	case string:
		if t == "" {
			*s = None()
			return nil
		}
		p, err := Parse(t, KindRegexp)
		if err != nil {
			return err
		}
		*s = Single(p)
		return nil
	case []interface{}:
		ps := make([]Pattern, 0, len(t))
		for _, item := range t {
			str, ok := item.(string)
			if !ok {
				return ErrInvalidIgnore
			}
			p, err := Parse(str, KindGlob)
			if err != nil {
				return err
			}
			ps = append(ps, p)
		}
		*s = List(ps...)
		return nil
	default:
		return ErrInvalidIgnore
	}
}
