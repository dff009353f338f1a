// Package devloop hosts a plugin on top of a watched build output
// directory.
//
// Every batch of writes reported by the watcher counts as one build. The
// directory is scanned into a build.Outcome and handed to the plugin, or,
// when the build left its failure marker behind, the plugin is told the
// build failed.
package devloop

import "time"

// Config contains dev loop settings.
type Config struct {
	// FailureMarker is a path relative to the output directory. While it
	// exists, builds count as failed. Empty disables failure detection.
	FailureMarker string

	// SkipInitialBuild disables the scan on start that reports the
	// existing output as the first build.
	SkipInitialBuild bool
}

// Stats counts the builds seen by a Loop.
type Stats struct {
	// Builds is the number of successful builds reported.
	Builds int

	// Failures is the number of failed builds reported.
	Failures int

	// LastBuild is when the last build of either kind was reported.
	LastBuild time.Time
}
