// Package report derives read-only views from the record store: roster-wide
// statistics, the recent-activity timeline, per-member overviews and the
// downloadable export document. Nothing in here mutates the store.
package report

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/labtrack/labtrack/internal/progress"
)

// DefaultTimelineLimit bounds the activity feed when no limit is given.
const DefaultTimelineLimit = 10

const excerptRunes = 100

// Timeline entry kinds.
const (
	KindDraft     = "draft"
	KindSubmitted = "submitted"
)

// Stats are the roster-wide counters shown on the dashboard.
type Stats struct {
	TotalMembers            int `json:"totalMembers"`
	AverageProgress         int `json:"averageProgress"`
	TotalFiles              int `json:"totalFiles"`
	CurrentMonthSubmissions int `json:"currentMonthSubmissions"`
}

// TimelineEntry is one item of the recent-activity feed.
type TimelineEntry struct {
	MemberID   string    `json:"memberId"`
	MemberName string    `json:"memberName"`
	MonthID    string    `json:"monthId"`
	Excerpt    string    `json:"excerpt"`
	Timestamp  time.Time `json:"timestamp"`
	Kind       string    `json:"kind"`
}

// MemberOverview summarizes one member's reporting history.
type MemberOverview struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	ResearchArea    string     `json:"research"`
	Status          string     `json:"status"`
	Progress        int        `json:"progress"`
	CompletedMonths int        `json:"completedMonths"`
	SubmittedMonths int        `json:"submittedMonths"`
	FileCount       int        `json:"fileCount"`
	LastUpdate      *time.Time `json:"lastUpdate"`
}

// Service computes derived views over the record store.
type Service struct {
	store *progress.Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a report service over the record store.
func NewService(store *progress.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeStats returns the roster-wide counters. AverageProgress is the
// rounded unweighted mean of member progress percentages;
// CurrentMonthSubmissions counts members whose record for currentMonthID is
// submitted.
func (s *Service) ComputeStats(currentMonthID string) Stats {
	members := s.store.Members()
	stats := Stats{TotalMembers: len(members)}

	progressSum := 0
	for _, m := range members {
		progressSum += m.Progress
		stats.TotalFiles += len(m.Files)
		if rec, ok := m.MonthlyData[currentMonthID]; ok && rec.Submitted {
			stats.CurrentMonthSubmissions++
		}
	}
	if len(members) > 0 {
		stats.AverageProgress = int(math.Round(float64(progressSum) / float64(len(members))))
	}
	return stats
}

// BuildTimeline flattens every saved record into a feed sorted newest first
// and truncated to limit (DefaultTimelineLimit when limit is not positive).
// Attachment-only shells carry no modification time and are skipped. Entries
// with equal timestamps keep no particular order.
func (s *Service) BuildTimeline(limit int) []TimelineEntry {
	if limit <= 0 {
		limit = DefaultTimelineLimit
	}

	entries := []TimelineEntry{}
	for _, m := range s.store.Members() {
		for monthID, rec := range m.MonthlyData {
			if rec.LastModified.IsZero() {
				continue
			}
			kind := KindDraft
			if rec.Submitted {
				kind = KindSubmitted
			}
			entries = append(entries, TimelineEntry{
				MemberID:   m.ID,
				MemberName: m.Name,
				MonthID:    monthID,
				Excerpt:    excerpt(rec.Content),
				Timestamp:  rec.LastModified,
				Kind:       kind,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// MemberOverview summarizes one member's reporting history.
func (s *Service) MemberOverview(memberID string) (*MemberOverview, error) {
	m, err := s.store.Member(memberID)
	if err != nil {
		return nil, err
	}

	overview := &MemberOverview{
		ID:           m.ID,
		Name:         m.Name,
		ResearchArea: m.ResearchArea,
		Status:       string(m.Status),
		Progress:     m.Progress,
		FileCount:    len(m.Files),
		LastUpdate:   m.LastUpdate,
	}
	for _, rec := range m.MonthlyData {
		if strings.TrimSpace(rec.Content) != "" {
			overview.CompletedMonths++
		}
		if rec.Submitted {
			overview.SubmittedMonths++
		}
	}
	return overview, nil
}

func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptRunes {
		return content
	}
	return string(runes[:excerptRunes]) + "..."
}
