// Package snapshot turns a build output directory into a build.Outcome.
//
// Hosts that cannot report build results directly, such as an external
// compiler writing into a directory, are observed through their output: the
// identity of a build is the combined fingerprint of every output file, and
// each configured target subdirectory contributes one child identity.
//
// Example usage:
//
//	s, err := snapshot.New(snapshot.Config{Dir: "dist", Targets: []string{"css", "js"}}, log)
//	if err != nil {
//	    return err
//	}
//	outcome, err := s.Scan([]string{"css/site.css"})
package snapshot

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/0xmhha/livereload/pkg/build"
	"github.com/0xmhha/livereload/pkg/fingerprint"
)

// Logger defines the logging interface used by the snapshot package.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Config contains scanner settings.
type Config struct {
	// Dir is the build output directory.
	Dir string

	// Targets are subdirectories of Dir built as separate targets. Each one
	// yields a child identity, in this order.
	Targets []string

	// Exclude lists doublestar patterns, relative to Dir, of files that are
	// not build output.
	Exclude []string
}

// Scanner captures the state of an output directory.
type Scanner interface {
	// Scan walks the output directory.
	//
	// Parameters:
	//   - changed: Slash-separated paths relative to Dir written since the
	//     last scan; nil marks every file as emitted
	//
	// Returns:
	//   - Outcome with one record per file, sorted by path
	//   - Error if the directory cannot be read
	Scan(changed []string) (*build.Outcome, error)

	// Dir returns the absolute output directory.
	Dir() string
}

// scanner implements the Scanner interface.
type scanner struct {
	dir     string
	targets []string
	exclude []string
	logger  Logger
}

// New creates a Scanner.
//
// Parameters:
//   - cfg: Scanner configuration
//   - logger: Logger instance for diagnostic messages
//
// Returns:
//   - Configured Scanner
//   - Error if the directory is missing or a pattern is invalid
func New(cfg Config, logger Logger) (Scanner, error) {
	dir, err := filepath.Abs(expandHome(cfg.Dir))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", cfg.Dir, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	for _, p := range cfg.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}

	targets := make([]string, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		targets = append(targets, strings.Trim(filepath.ToSlash(filepath.Clean(t)), "/"))
	}

	return &scanner{
		dir:     dir,
		targets: targets,
		exclude: cfg.Exclude,
		logger:  logger,
	}, nil
}

// Dir implements Scanner.Dir.
func (s *scanner) Dir() string {
	return s.dir
}

// Scan implements Scanner.Scan.
func (s *scanner) Scan(changed []string) (*build.Outcome, error) {
	var emitted map[string]struct{}
	if changed != nil {
		emitted = make(map[string]struct{}, len(changed))
		for _, c := range changed {
			emitted[filepath.ToSlash(c)] = struct{}{}
		}
	}

	digests := make(map[string]fingerprint.Digest)
	var files []build.FileRecord

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if s.excluded(rel) {
			return nil
		}

		digest, err := fingerprint.SumFile(path)
		if err != nil {
			// Files may vanish while a build is still writing.
			s.logger.Warn("failed to fingerprint output file", "path", rel, "error", err)
			return nil
		}
		digests[rel] = digest

		isEmitted := true
		if emitted != nil {
			_, isEmitted = emitted[rel]
		}

		files = append(files, build.FileRecord{
			Path:    rel,
			Emitted: isEmitted,
			Content: readFile(path),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.dir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	o := &build.Outcome{
		Identity: identity(digests, ""),
		Children: make([]string, 0, len(s.targets)),
		Files:    files,
	}
	for _, t := range s.targets {
		o.Children = append(o.Children, identity(digests, t+"/"))
	}

	s.logger.Debug("scanned output directory",
		"path", s.dir,
		"files", len(files),
		"identity", o.Identity)

	return o, nil
}

// excluded reports whether rel matches an exclude pattern.
func (s *scanner) excluded(rel string) bool {
	for _, p := range s.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// identity combines the digests of every file under prefix. It is empty
// when no file matches.
func identity(digests map[string]fingerprint.Digest, prefix string) string {
	paths := make([]string, 0, len(digests))
	for p := range digests {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return ""
	}
	sort.Strings(paths)

	parts := make([]string, 0, 2*len(paths))
	for _, p := range paths {
		parts = append(parts, p, digests[p].String())
	}
	return fingerprint.Combine(parts...).String()
}

// readFile returns a lazy accessor for the content of path.
func readFile(path string) build.ContentFunc {
	return func() ([]byte, error) {
		return os.ReadFile(path) // nolint:gosec
	}
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
