// Package session holds the per-owner confirmation workflow: extracted
// candidates wait here, paginated, until the owner confirms, retries or
// skips them.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kitakits/stock-ledger/internal/extract"
)

const (
	// PageSize is the fixed number of candidates shown per page.
	PageSize = 10
	// MaxOptions caps the rendered action set; lowest-priority options
	// are dropped first when the cap is exceeded.
	MaxOptions = 13
)

// State is the workflow position of a session.
type State int

const (
	StateAwaitingUpload State = iota
	StateConfirming
	StateApplied
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateAwaitingUpload:
		return "awaiting_upload"
	case StateConfirming:
		return "confirming"
	case StateApplied:
		return "applied"
	case StateSkipped:
		return "skipped"
	}
	return "unknown"
}

var (
	ErrNotAwaitingUpload = errors.New("session is not awaiting an upload")
	ErrNotConfirming     = errors.New("session is not confirming")
	ErrPageOutOfRange    = errors.New("page index out of range")
)

// Session tracks one owner's in-progress review-and-apply workflow.
type Session struct {
	OwnerID    string
	Kind       extract.Kind
	State      State
	Candidates []extract.Candidate
	PageIndex  int
	Confidence float64
	CreatedAt  time.Time
}

// New starts a session awaiting an upload of the given kind.
func New(ownerID string, kind extract.Kind, now time.Time) *Session {
	return &Session{
		OwnerID:   ownerID,
		Kind:      kind,
		State:     StateAwaitingUpload,
		CreatedAt: now,
	}
}

// EnterConfirming stores the full candidate list and moves to the
// confirming state at page zero.
func (s *Session) EnterConfirming(candidates []extract.Candidate, confidence float64) error {
	if s.State != StateAwaitingUpload {
		return ErrNotAwaitingUpload
	}
	if len(candidates) == 0 {
		return errors.New("no candidates to confirm")
	}
	s.State = StateConfirming
	s.Candidates = candidates
	s.PageIndex = 0
	s.Confidence = confidence
	return nil
}

// ConfirmAll moves to the applied state and returns every candidate,
// not just the visible page.
func (s *Session) ConfirmAll() ([]extract.Candidate, error) {
	if s.State != StateConfirming {
		return nil, ErrNotConfirming
	}
	s.State = StateApplied
	return s.Candidates, nil
}

// Retry discards all candidates and returns to awaiting an upload of
// the same kind.
func (s *Session) Retry() error {
	if s.State != StateConfirming {
		return ErrNotConfirming
	}
	s.State = StateAwaitingUpload
	s.Candidates = nil
	s.PageIndex = 0
	s.Confidence = 0
	return nil
}

// Skip discards all candidates without applying them.
func (s *Session) Skip() error {
	if s.State != StateConfirming {
		return ErrNotConfirming
	}
	s.State = StateSkipped
	return nil
}

// GoToPage moves the visible page; candidates are untouched.
func (s *Session) GoToPage(n int) error {
	if s.State != StateConfirming {
		return ErrNotConfirming
	}
	if n < 0 || n >= s.PageCount() {
		return ErrPageOutOfRange
	}
	s.PageIndex = n
	return nil
}

// PageCount is ceil(len(candidates)/PageSize).
func (s *Session) PageCount() int {
	return (len(s.Candidates) + PageSize - 1) / PageSize
}

// Page returns the candidates visible on the current page.
func (s *Session) Page() []extract.Candidate {
	start := s.PageIndex * PageSize
	if start >= len(s.Candidates) {
		return nil
	}
	end := start + PageSize
	if end > len(s.Candidates) {
		end = len(s.Candidates)
	}
	return s.Candidates[start:end]
}

// Render produces the review text for the current page.
func (s *Session) Render() string {
	var b strings.Builder
	noun := "items"
	if s.Kind == extract.KindSales {
		noun = "sales"
	}
	fmt.Fprintf(&b, "Found %d %s (confidence %.0f%%).\n", len(s.Candidates), noun, s.Confidence*100)
	if s.PageCount() > 1 {
		fmt.Fprintf(&b, "Page %d of %d.\n", s.PageIndex+1, s.PageCount())
	}
	start := s.PageIndex * PageSize
	for i, cand := range s.Page() {
		fmt.Fprintf(&b, "%d. %s\n", start+i+1, cand.Describe())
	}
	b.WriteString("Save everything?")
	return b.String()
}

// Option is one selectable action presented alongside the page.
type Option struct {
	ID    string
	Label string
}

// Option identifiers understood by the workflow.
const (
	OptionConfirmAll = "confirm"
	OptionReview     = "review"
	OptionPrevPage   = "prev"
	OptionNextPage   = "next"
	OptionRetry      = "retry"
	OptionSkip       = "skip"
)

// Options returns the action set for the current page in priority
// order, capped at MaxOptions. Page controls only appear when there is
// more than one page.
func (s *Session) Options() []Option {
	opts := []Option{
		{ID: OptionConfirmAll, Label: "✅ Save all"},
		{ID: OptionReview, Label: "📝 Review items"},
	}
	if s.PageCount() > 1 {
		if s.PageIndex > 0 {
			opts = append(opts, Option{ID: OptionPrevPage, Label: "⬅️ Previous"})
		}
		if s.PageIndex < s.PageCount()-1 {
			opts = append(opts, Option{ID: OptionNextPage, Label: "➡️ Next"})
		}
	}
	opts = append(opts,
		Option{ID: OptionRetry, Label: "📷 Retry photo"},
		Option{ID: OptionSkip, Label: "❌ Skip"},
	)
	return capOptions(opts)
}

// capOptions truncates an option list to MaxOptions, dropping from the
// tail (lowest priority) first.
func capOptions(opts []Option) []Option {
	if len(opts) <= MaxOptions {
		return opts
	}
	return opts[:MaxOptions]
}
