package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/labtrack/labtrack/internal/progress"
	"github.com/labtrack/labtrack/internal/report"
	"github.com/labtrack/labtrack/internal/roster"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFixture(t *testing.T) (*progress.Store, *report.Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)}
	store := progress.NewStore(
		roster.BuildMembers(roster.DefaultSeeds()),
		roster.BuildMonths(2025),
		progress.WithClock(clock.Now),
	)
	svc := report.NewService(store, report.WithClock(clock.Now))
	return store, svc, clock
}

func TestComputeStatsSingleContributor(t *testing.T) {
	store, svc, _ := newFixture(t)

	_, err := store.UpsertContent("RES001", "2025-01", "Did experiment X")
	require.NoError(t, err)

	stats := svc.ComputeStats("2025-01")
	require.Equal(t, 8, stats.TotalMembers)
	// Only RES001 has progress (8%); the mean over 8 members rounds to 1.
	require.Equal(t, 1, stats.AverageProgress)
	require.Zero(t, stats.TotalFiles)
	require.Zero(t, stats.CurrentMonthSubmissions)

	require.NoError(t, store.MarkSubmitted("RES001", "2025-01"))
	stats = svc.ComputeStats("2025-01")
	require.Equal(t, 1, stats.CurrentMonthSubmissions)

	// Submissions for another month do not count toward the current one.
	stats = svc.ComputeStats("2025-02")
	require.Zero(t, stats.CurrentMonthSubmissions)
}

func TestComputeStatsCountsFiles(t *testing.T) {
	store, svc, _ := newFixture(t)

	require.NoError(t, store.AttachFile("RES001", "2025-01", roster.FileAttachment{ID: "file_1", Month: "2025-01"}))
	require.NoError(t, store.AttachFile("RES002", "2025-02", roster.FileAttachment{ID: "file_2", Month: "2025-02"}))

	stats := svc.ComputeStats("2025-01")
	require.Equal(t, 2, stats.TotalFiles)
}

func TestBuildTimelineOrderAndLimit(t *testing.T) {
	store, svc, clock := newFixture(t)

	_, err := store.UpsertContent("RES001", "2025-01", "first")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = store.UpsertContent("RES002", "2025-01", "second")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = store.UpsertContent("RES003", "2025-02", "third")
	require.NoError(t, err)

	entries := svc.BuildTimeline(2)
	require.Len(t, entries, 2)
	require.Equal(t, "RES003", entries[0].MemberID)
	require.Equal(t, "RES002", entries[1].MemberID)
	require.Equal(t, report.KindDraft, entries[0].Kind)

	require.NoError(t, store.MarkSubmitted("RES003", "2025-02"))
	entries = svc.BuildTimeline(1)
	require.Equal(t, report.KindSubmitted, entries[0].Kind)
}

func TestBuildTimelineSkipsShells(t *testing.T) {
	store, svc, _ := newFixture(t)

	// A file upload on a month without saved content creates a shell that
	// must not show up in the feed.
	require.NoError(t, store.AttachFile("RES001", "2025-01", roster.FileAttachment{ID: "file_1", Month: "2025-01"}))
	require.Empty(t, svc.BuildTimeline(0))
}

func TestBuildTimelineExcerpt(t *testing.T) {
	store, svc, _ := newFixture(t)

	long := strings.Repeat("a", 150)
	_, err := store.UpsertContent("RES001", "2025-01", long)
	require.NoError(t, err)

	entries := svc.BuildTimeline(0)
	require.Len(t, entries, 1)
	require.Equal(t, strings.Repeat("a", 100)+"...", entries[0].Excerpt)
}

func TestMemberOverview(t *testing.T) {
	store, svc, _ := newFixture(t)

	_, err := store.UpsertContent("RES001", "2025-01", "Did experiment X")
	require.NoError(t, err)
	_, err = store.UpsertContent("RES001", "2025-02", "Analyzed results")
	require.NoError(t, err)
	require.NoError(t, store.MarkSubmitted("RES001", "2025-01"))
	require.NoError(t, store.AttachFile("RES001", "2025-01", roster.FileAttachment{ID: "file_1", Month: "2025-01"}))

	overview, err := svc.MemberOverview("RES001")
	require.NoError(t, err)
	require.Equal(t, "Alice Zhang", overview.Name)
	require.Equal(t, 2, overview.CompletedMonths)
	require.Equal(t, 1, overview.SubmittedMonths)
	require.Equal(t, 1, overview.FileCount)
	require.Equal(t, 17, overview.Progress)
	require.NotNil(t, overview.LastUpdate)

	_, err = svc.MemberOverview("RES999")
	require.ErrorIs(t, err, progress.ErrMemberNotFound)
}

func TestBuildExportStripsPayloads(t *testing.T) {
	store, svc, clock := newFixture(t)

	_, err := store.UpsertContent("RES001", "2025-01", "Did experiment X")
	require.NoError(t, err)
	require.NoError(t, store.AttachFile("RES001", "2025-01", roster.FileAttachment{
		ID: "file_1", Name: "plot.png", Size: "1.5 KB", Month: "2025-01", Data: "aGVsbG8=",
	}))

	doc := svc.BuildExport()
	require.Equal(t, clock.Now(), doc.ExportDate)
	require.Equal(t, "labtrack", doc.System)
	require.Equal(t, 8, doc.TotalMembers)
	require.Len(t, doc.Members, 8)

	first := doc.Members[0]
	require.Equal(t, "RES001", first.ID)
	require.Len(t, first.Files, 1)
	require.Equal(t, "plot.png", first.Files[0].Name)
	require.Empty(t, first.MonthlyData["2025-01"].Files[0].Data)
}
