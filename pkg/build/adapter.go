package build

import (
	"fmt"
	"slices"
	"sort"
)

// Asset is a build output file as reported by a host.
type Asset struct {
	// Name is the output-relative file name.
	Name string

	// Emitted reports whether the host wrote the file in this build. Only
	// ListStats reads it; MapStats derives emission from EmittedAssets.
	Emitted bool

	// Source returns the asset content, if the host can provide it.
	Source ContentFunc
}

// ChildStats is the per-target result of a multi-target build.
type ChildStats struct {
	Hash string
}

// ListStats is the shape of hosts that report assets as a list where every
// asset carries its own emitted flag.
type ListStats struct {
	Hash     string
	Children []ChildStats
	Assets   []Asset
}

// MapStats is the shape of hosts that report assets keyed by name and list
// the emitted names separately.
type MapStats struct {
	Hash          string
	Children      []ChildStats
	Assets        map[string]Asset
	EmittedAssets map[string]struct{}
}

// Normalize converts a host build result into an Outcome. Supported inputs
// are Outcome, ListStats and MapStats, by value or by pointer.
func Normalize(stats any) (*Outcome, error) {
	switch s := stats.(type) {
	case nil:
		return nil, ErrNilStats
	case *Outcome:
		if s == nil {
			return nil, ErrNilStats
		}
		return fromOutcome(*s)
	case Outcome:
		return fromOutcome(s)
	case *ListStats:
		if s == nil {
			return nil, ErrNilStats
		}
		return fromList(*s)
	case ListStats:
		return fromList(s)
	case *MapStats:
		if s == nil {
			return nil, ErrNilStats
		}
		return fromMap(*s)
	case MapStats:
		return fromMap(s)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedStats, stats)
	}
}

func fromOutcome(o Outcome) (*Outcome, error) {
	if err := checkUnique(o.Files); err != nil {
		return nil, err
	}
	return &Outcome{
		Identity: o.Identity,
		Children: slices.Clone(o.Children),
		Files:    slices.Clone(o.Files),
	}, nil
}

func fromList(s ListStats) (*Outcome, error) {
	files := make([]FileRecord, 0, len(s.Assets))
	for _, a := range s.Assets {
		files = append(files, FileRecord{
			Path:    a.Name,
			Emitted: a.Emitted,
			Content: a.Source,
		})
	}
	if err := checkUnique(files); err != nil {
		return nil, err
	}

	return &Outcome{
		Identity: s.Hash,
		Children: childHashes(s.Children),
		Files:    files,
	}, nil
}

func fromMap(s MapStats) (*Outcome, error) {
	names := make([]string, 0, len(s.Assets))
	for name := range s.Assets {
		names = append(names, name)
	}
	sort.Strings(names)

	files := make([]FileRecord, 0, len(names))
	for _, name := range names {
		_, emitted := s.EmittedAssets[name]
		files = append(files, FileRecord{
			Path:    name,
			Emitted: emitted,
			Content: s.Assets[name].Source,
		})
	}

	return &Outcome{
		Identity: s.Hash,
		Children: childHashes(s.Children),
		Files:    files,
	}, nil
}

func childHashes(children []ChildStats) []string {
	hashes := make([]string, len(children))
	for i, c := range children {
		hashes[i] = c.Hash
	}
	return hashes
}

func checkUnique(files []FileRecord) error {
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, dup := seen[f.Path]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePath, f.Path)
		}
		seen[f.Path] = struct{}{}
	}
	return nil
}
