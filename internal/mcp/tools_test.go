package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/internal/attachment"
	"github.com/labtrack/labtrack/internal/notify"
	"github.com/labtrack/labtrack/internal/progress"
	"github.com/labtrack/labtrack/internal/report"
	"github.com/labtrack/labtrack/internal/roster"
)

func newTestHandler(t *testing.T, save SaveFunc) *handler {
	t.Helper()

	store := progress.NewStore(roster.BuildMembers(roster.DefaultSeeds()), roster.BuildMonths(2025))
	svc := Services{
		Progress:    store,
		Attachments: attachment.NewManager(store, notify.Discard{}),
		Reports:     report.NewService(store),
		Save:        save,
	}
	return &handler{svc: svc, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestListMembersAndMonths(t *testing.T) {
	h := newTestHandler(t, nil)

	_, members, err := h.listMembers(context.Background(), nil, emptyParams{})
	require.NoError(t, err)
	require.Len(t, members.Members, 8)
	require.Equal(t, "RES001", members.Members[0].ID)

	_, months, err := h.listMonths(context.Background(), nil, emptyParams{})
	require.NoError(t, err)
	require.Len(t, months.Months, 12)
	require.Equal(t, "2025-01", months.Months[0].ID)
}

func TestSaveAndSubmitProgress(t *testing.T) {
	saves := 0
	h := newTestHandler(t, func(context.Context) error {
		saves++
		return nil
	})

	_, saved, err := h.saveProgress(context.Background(), nil, saveProgressParams{
		MemberID: "RES001",
		MonthID:  "2025-01",
		Content:  "Trained the baseline model",
	})
	require.NoError(t, err)
	require.False(t, saved.Record.Submitted)

	_, submitted, err := h.submitProgress(context.Background(), nil, recordParams{
		MemberID: "RES001",
		MonthID:  "2025-01",
	})
	require.NoError(t, err)
	require.True(t, submitted.Record.Submitted)
	require.NotNil(t, submitted.Record.SubmittedAt)
	require.Equal(t, 2, saves)
}

func TestSaveProgressEmptyContent(t *testing.T) {
	h := newTestHandler(t, nil)

	_, _, err := h.saveProgress(context.Background(), nil, saveProgressParams{
		MemberID: "RES001",
		MonthID:  "2025-01",
		Content:  "   ",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")
}

func TestSubmitWithoutSave(t *testing.T) {
	h := newTestHandler(t, nil)

	_, _, err := h.submitProgress(context.Background(), nil, recordParams{
		MemberID: "RES001",
		MonthID:  "2025-01",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "before submitting")
}

func TestSaveFailureDoesNotFailTheOperation(t *testing.T) {
	h := newTestHandler(t, func(context.Context) error {
		return errors.New("disk full")
	})

	_, out, err := h.saveProgress(context.Background(), nil, saveProgressParams{
		MemberID: "RES001",
		MonthID:  "2025-01",
		Content:  "Survived a persistence outage",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Record)
}

func TestAttachFilesMixedBatch(t *testing.T) {
	h := newTestHandler(t, nil)

	_, out, err := h.attachFiles(context.Background(), nil, attachFilesParams{
		MemberID: "RES001",
		MonthID:  "2025-01",
		Files: []fileUpload{
			{Name: "results.pdf", Data: base64.StdEncoding.EncodeToString([]byte("content"))},
			{Name: "dataset.zip", SizeBytes: attachment.MaxFileBytes + 1},
			{Name: "broken.bin", Data: "!!! not base64 !!!"},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Attached, 1)
	require.Equal(t, "results.pdf", out.Attached[0].Name)
	require.Empty(t, out.Attached[0].Data)
	require.Len(t, out.Rejected, 2)

	member, err := h.svc.Progress.Member("RES001")
	require.NoError(t, err)
	require.Len(t, member.Files, 1)
}

func TestAttachFilesUnknownMember(t *testing.T) {
	h := newTestHandler(t, nil)

	_, _, err := h.attachFiles(context.Background(), nil, attachFilesParams{
		MemberID: "RES999",
		MonthID:  "2025-01",
		Files:    []fileUpload{{Name: "a.txt", SizeBytes: 10}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "list_members")
}

func TestDeleteFile(t *testing.T) {
	h := newTestHandler(t, nil)

	_, out, err := h.attachFiles(context.Background(), nil, attachFilesParams{
		MemberID: "RES001",
		MonthID:  "2025-01",
		Files:    []fileUpload{{Name: "notes.txt", SizeBytes: 42}},
	})
	require.NoError(t, err)
	require.Len(t, out.Attached, 1)

	_, status, err := h.deleteFile(context.Background(), nil, deleteFileParams{
		MemberID: "RES001",
		FileID:   out.Attached[0].ID,
	})
	require.NoError(t, err)
	require.Equal(t, "deleted", status.Status)

	member, err := h.svc.Progress.Member("RES001")
	require.NoError(t, err)
	require.Empty(t, member.Files)
}

func TestGetStatsDefaultsToFirstMonth(t *testing.T) {
	h := newTestHandler(t, nil)

	_, _, err := h.saveProgress(context.Background(), nil, saveProgressParams{
		MemberID: "RES002",
		MonthID:  "2025-01",
		Content:  "January summary",
	})
	require.NoError(t, err)
	_, _, err = h.submitProgress(context.Background(), nil, recordParams{MemberID: "RES002", MonthID: "2025-01"})
	require.NoError(t, err)

	_, out, err := h.getStats(context.Background(), nil, getStatsParams{})
	require.NoError(t, err)
	require.Equal(t, "2025-01", out.MonthID)
	require.Equal(t, 8, out.Stats.TotalMembers)
	require.Equal(t, 1, out.Stats.CurrentMonthSubmissions)
}

func TestGetTimelineAndExport(t *testing.T) {
	h := newTestHandler(t, nil)

	_, _, err := h.saveProgress(context.Background(), nil, saveProgressParams{
		MemberID: "RES003",
		MonthID:  "2025-02",
		Content:  "February summary",
	})
	require.NoError(t, err)

	_, timeline, err := h.getTimeline(context.Background(), nil, getTimelineParams{})
	require.NoError(t, err)
	require.Len(t, timeline.Entries, 1)
	require.Equal(t, "RES003", timeline.Entries[0].MemberID)

	_, export, err := h.exportReport(context.Background(), nil, emptyParams{})
	require.NoError(t, err)
	require.Equal(t, 8, export.TotalMembers)
}

func TestSaveSnapshotReportsFailure(t *testing.T) {
	h := newTestHandler(t, func(context.Context) error {
		return errors.New("store offline")
	})

	_, _, err := h.saveSnapshot(context.Background(), nil, emptyParams{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "store offline")
}

func TestGetMemberStripsPayloads(t *testing.T) {
	h := newTestHandler(t, nil)

	_, _, err := h.attachFiles(context.Background(), nil, attachFilesParams{
		MemberID: "RES004",
		MonthID:  "2025-03",
		Files:    []fileUpload{{Name: "plot.png", Data: base64.StdEncoding.EncodeToString([]byte("pixels"))}},
	})
	require.NoError(t, err)

	_, out, err := h.getMember(context.Background(), nil, getMemberParams{MemberID: "RES004"})
	require.NoError(t, err)
	require.Equal(t, "RES004", out.Overview.ID)
	rec, ok := out.MonthlyData["2025-03"]
	require.True(t, ok)
	require.Len(t, rec.Files, 1)
	require.Empty(t, rec.Files[0].Data)
}
