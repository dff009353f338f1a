// Package build defines the canonical shape of a completed build and the
// identity tracking used to tell whether a build differs from the last one
// that produced a notification.
//
// Host integrations describe their build results in many shapes; Normalize
// maps them into an Outcome at the boundary so the rest of the module only
// ever sees one representation.
package build

// ContentFunc lazily returns the content of an emitted file.
type ContentFunc func() ([]byte, error)

// FileRecord describes one output file of a build.
type FileRecord struct {
	// Path is the output-relative file name, unique within an Outcome.
	Path string

	// Emitted reports whether the file was written during this build.
	Emitted bool

	// Content returns the file content. It is nil when the host cannot
	// provide content.
	Content ContentFunc
}

// Outcome is the result of one build.
type Outcome struct {
	// Identity is the top-level build identity. Empty means absent.
	Identity string

	// Children are the identities of sub-builds, in host order.
	Children []string

	// Files are the output files of the build.
	Files []FileRecord
}

// Paths returns the paths of all file records in order.
func (o *Outcome) Paths() []string {
	paths := make([]string, len(o.Files))
	for i, f := range o.Files {
		paths[i] = f.Path
	}
	return paths
}
