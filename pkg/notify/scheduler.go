// Package notify dispatches resolved change sets to a notification sink
// after a fixed delay.
//
// A scheduled notification cannot be cancelled. If a later build fails and
// resets state, a notification that is already pending still fires with the
// file set it was scheduled with.
package notify

import (
	"slices"
	"time"

	"github.com/0xmhha/livereload/pkg/logger"
)

// Notifier receives the list of changed files.
type Notifier interface {
	NotifyClients(paths []string)
}

// Scheduler delays notifications by a fixed interval.
type Scheduler struct {
	delay     time.Duration
	logger    logger.Logger
	afterFunc func(d time.Duration, f func())
}

// NewScheduler creates a Scheduler. Negative delays are treated as zero.
func NewScheduler(delay time.Duration, log logger.Logger) *Scheduler {
	if delay < 0 {
		delay = 0
	}
	return &Scheduler{
		delay:  delay,
		logger: log,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Delay returns the configured delay.
func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

// Schedule arranges for n to be notified with paths once the delay has
// elapsed and returns immediately. It does nothing and returns false when
// paths is empty or n is nil.
func (s *Scheduler) Schedule(n Notifier, paths []string) bool {
	if len(paths) == 0 || n == nil {
		return false
	}

	files := slices.Clone(paths)
	s.logger.Debug("reload scheduled",
		"files", len(files),
		"delay", s.delay)

	s.afterFunc(s.delay, func() {
		n.NotifyClients(files)
	})
	return true
}
