package progress

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/labtrack/labtrack/internal/roster"
)

// EmptyEditorPlaceholder is what a cleared rich-text editor submits in place
// of genuinely empty content. Saves carrying it are rejected like empty ones.
const EmptyEditorPlaceholder = "<br>"

// Store is the in-memory authoritative record store: the roster members with
// their per-month records and file lists, plus the ordered reporting months.
// All mutation goes through its methods; reads return deep copies so callers
// cannot bypass the save/submit rules or the dual file-index invariant.
type Store struct {
	mu      sync.RWMutex
	members []*roster.Member
	byID    map[string]*roster.Member
	months  []roster.Month
	monthOK map[string]bool
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore builds a store over an already-initialized (or merged) roster.
func NewStore(members []*roster.Member, months []roster.Month, opts ...Option) *Store {
	s := &Store{
		members: members,
		byID:    make(map[string]*roster.Member, len(members)),
		months:  months,
		monthOK: make(map[string]bool, len(months)),
		now:     time.Now,
	}
	for _, m := range members {
		s.byID[m.ID] = m
	}
	for _, m := range months {
		s.monthOK[m.ID] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Months returns the ordered reporting months.
func (s *Store) Months() []roster.Month {
	out := make([]roster.Month, len(s.months))
	copy(out, s.months)
	return out
}

// TotalMonths returns the length of the reporting cycle.
func (s *Store) TotalMonths() int {
	return len(s.months)
}

// Members returns deep copies of all roster members in roster order.
func (s *Store) Members() []*roster.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*roster.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m.Clone())
	}
	return out
}

// Member returns a deep copy of one member.
func (s *Store) Member(memberID string) (*roster.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[memberID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	return m.Clone(), nil
}

// Record returns a deep copy of the record for one (member, month) pair.
func (s *Store) Record(memberID, monthID string) (*roster.MonthlyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[memberID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	rec, ok := m.MonthlyData[monthID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec.Clone(), nil
}

// UpsertContent saves progress content for a (member, month) pair, creating
// the record on first save. Editing invalidates any prior submission: the
// submitted flag and timestamp are cleared on every content change. The
// member's derived progress percentage and last-update time are refreshed.
func (s *Store) UpsertContent(memberID, monthID, content string) (*roster.MonthlyRecord, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || trimmed == EmptyEditorPlaceholder {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[memberID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	if !s.monthOK[monthID] {
		return nil, ErrMonthNotFound
	}

	rec, ok := m.MonthlyData[monthID]
	if !ok {
		rec = &roster.MonthlyRecord{Files: []roster.FileAttachment{}}
		m.MonthlyData[monthID] = rec
	}

	now := s.now()
	rec.Content = content
	rec.LastModified = now
	rec.Submitted = false
	rec.SubmittedAt = nil

	m.Progress = derivedProgress(m, len(s.months))
	m.LastUpdate = &now

	return rec.Clone(), nil
}

// MarkSubmitted flags a saved record as submitted to the supervisor. It
// requires previously saved content and leaves the record untouched when the
// precondition fails. Submission clears any warning or danger flag on the
// member.
func (s *Store) MarkSubmitted(memberID, monthID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[memberID]
	if !ok {
		return ErrMemberNotFound
	}
	rec, ok := m.MonthlyData[monthID]
	if !ok || strings.TrimSpace(rec.Content) == "" {
		return ErrNotSaved
	}

	now := s.now()
	rec.Submitted = true
	rec.SubmittedAt = &now
	m.Status = roster.StatusActive
	return nil
}

// AttachFile inserts an attachment into both of its indexes: the member's
// flat file list and the target month's record file list. The two inserts
// happen under one lock so the pairing cannot diverge. A month with no saved
// content gets a record shell; shells hold files but no progress.
func (s *Store) AttachFile(memberID, monthID string, file roster.FileAttachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[memberID]
	if !ok {
		return ErrMemberNotFound
	}
	if !s.monthOK[monthID] {
		return ErrMonthNotFound
	}

	rec, ok := m.MonthlyData[monthID]
	if !ok {
		rec = &roster.MonthlyRecord{Files: []roster.FileAttachment{}}
		m.MonthlyData[monthID] = rec
	}

	m.Files = append(m.Files, file)
	rec.Files = append(rec.Files, file)
	return nil
}

// DetachFile removes an attachment from the member's flat list and from
// every month record that references it. An unknown file id is a no-op.
func (s *Store) DetachFile(memberID, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[memberID]
	if !ok {
		return ErrMemberNotFound
	}

	m.Files = withoutFile(m.Files, fileID)
	for _, rec := range m.MonthlyData {
		rec.Files = withoutFile(rec.Files, fileID)
	}
	return nil
}

func withoutFile(files []roster.FileAttachment, fileID string) []roster.FileAttachment {
	out := files[:0]
	for _, f := range files {
		if f.ID != fileID {
			out = append(out, f)
		}
	}
	return out
}

// derivedProgress is the completed-months share of the reporting cycle.
// Only months with real saved content count; attachment-only shells do not.
func derivedProgress(m *roster.Member, totalMonths int) int {
	if totalMonths == 0 {
		return 0
	}
	completed := 0
	for _, rec := range m.MonthlyData {
		if strings.TrimSpace(rec.Content) != "" {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(totalMonths)))
}
