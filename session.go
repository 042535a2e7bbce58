package shotman

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/root4loot/goutils/log"
)

// State is the session lifecycle state. Terminal states are final; a new
// run starts from a fresh Session.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateRunning
	StateCompleted
	StateCancelled
	StateFailedNoURLs
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailedNoURLs:
		return "failed: no urls"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Notifier receives progress and terminal events from a session. It is the
// sole output contract toward any front end; implementations decide how to
// render (terminal bar, GUI widget, log line).
type Notifier interface {
	OnProgress(completed, total, succeeded int)
	OnComplete(total, succeeded int)
	OnCancelled()
	OnNoURLs()
}

type noopNotifier struct{}

func (noopNotifier) OnProgress(completed, total, succeeded int) {}
func (noopNotifier) OnComplete(total, succeeded int)            {}
func (noopNotifier) OnCancelled()                               {}
func (noopNotifier) OnNoURLs()                                  {}

// Session orchestrates one scan run: extraction, pool submission, progress
// emission, persistence and the completion signal.
type Session struct {
	runner   *Runner
	store    *Store
	notifier Notifier

	mutex     sync.Mutex
	state     State
	cancelled atomic.Bool
}

// NewSession creates a session around a runner and a store. A nil notifier
// is allowed; events are then dropped.
func NewSession(runner *Runner, store *Store, notifier Notifier) *Session {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Session{
		runner:   runner,
		store:    store,
		notifier: notifier,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mutex.Lock()
	s.state = state
	s.mutex.Unlock()
}

// Cancel requests cooperative cancellation. No new tasks are submitted and
// outcomes arriving after the request are discarded without being
// recorded. Already-recorded outcomes are kept.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
	s.runner.Cancel()
}

// Run executes one scan end to end: extracts origin URLs from text,
// submits them to the pool, records outcomes as they arrive and persists
// the mapping and history. inputRef names the input source in the history
// entry.
func (s *Session) Run(inputRef, text string) error {
	if s.State() != StateIdle {
		return fmt.Errorf("session already ran (state %q)", s.State())
	}

	s.setState(StateExtracting)

	urls := s.inScopeURLs(ExtractURLs(text))
	total := len(urls)

	if total == 0 {
		s.setState(StateFailedNoURLs)
		s.notifier.OnNoURLs()
		return nil
	}

	log.Infof("Found %d URLs to process", total)

	if err := os.MkdirAll(s.runner.Options.OutputDir, os.ModePerm); err != nil {
		s.setState(StateFailed)
		return fmt.Errorf("could not open output location: %w", err)
	}

	s.setState(StateRunning)

	results := make(chan Outcome)
	go s.runner.Stream(urls, results)

	var completed, succeeded int
	for outcome := range results {
		if s.cancelled.Load() {
			// Abandon the outcome; the browser behind it is already
			// released by the worker.
			continue
		}

		completed++
		if outcome.Success() {
			succeeded++
			s.store.Record(outcome)
		} else {
			log.Debugf("Capture failed for %s: %v", outcome.URL, outcome.Err)
		}

		s.notifier.OnProgress(completed, total, succeeded)
	}

	s.persist(inputRef, total, succeeded)

	if s.cancelled.Load() {
		s.setState(StateCancelled)
		s.notifier.OnCancelled()
		return nil
	}

	s.setState(StateCompleted)
	s.notifier.OnComplete(total, succeeded)
	return nil
}

// inScopeURLs registers the extracted origins with the scope and drops the
// excluded ones before submission.
func (s *Session) inScopeURLs(urls []string) []string {
	scope := s.runner.Options.Scope
	if scope == nil {
		return urls
	}

	kept := urls[:0]
	for _, u := range urls {
		scope.AddTargetToScope(u)
		if scope.IsTargetExcluded(u) {
			log.Debugf("Skipping %s: excluded by scope", u)
			continue
		}
		kept = append(kept, u)
	}
	return kept
}

// persist flushes the mapping and appends the history entry. Persistence
// errors do not roll back completed captures; the session still counts as
// finished from the user's perspective.
func (s *Session) persist(inputRef string, total, succeeded int) {
	if err := s.store.Persist(); err != nil {
		log.Warnf("Mapping save error: %v", err)
	}

	entry := HistoryEntry{
		Date:       time.Now().Format("2006-01-02 15:04:05"),
		InputFile:  inputRef,
		OutputDir:  s.runner.Options.OutputDir,
		TotalURLs:  total,
		Successful: succeeded,
	}
	if err := s.store.AppendHistory(entry); err != nil {
		log.Warnf("History save error: %v", err)
	}
}
