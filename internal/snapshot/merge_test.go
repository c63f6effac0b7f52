package snapshot_test

import (
	"testing"
	"time"

	"github.com/labtrack/labtrack/internal/roster"
	"github.com/labtrack/labtrack/internal/snapshot"
	"github.com/stretchr/testify/require"
)

func savedMember(id string) *roster.Member {
	at := time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC)
	return &roster.Member{
		ID:           id,
		Name:         "Stale Name",
		ResearchArea: "Stale Area",
		Status:       roster.StatusDanger,
		Progress:     25,
		LastUpdate:   &at,
		MonthlyData: map[string]*roster.MonthlyRecord{
			"2025-01": {Content: "saved work", LastModified: at, Submitted: true, SubmittedAt: &at, Files: []roster.FileAttachment{}},
		},
		Files: []roster.FileAttachment{{ID: "file_1", Name: "old.pdf", Month: "2025-01"}},
	}
}

func TestMergeTakesStateFromSnapshotIdentityFromRoster(t *testing.T) {
	fresh := roster.BuildMembers(roster.DefaultSeeds())
	merged := snapshot.Merge(fresh, []*roster.Member{savedMember("RES001")})

	require.Len(t, merged, len(fresh))
	first := merged[0]

	// Identity always comes from the roster definition.
	require.Equal(t, "Alice Zhang", first.Name)
	require.Equal(t, "Machine Learning Algorithms", first.ResearchArea)

	// Session state comes from the snapshot.
	require.Equal(t, 25, first.Progress)
	require.Equal(t, roster.StatusDanger, first.Status)
	require.NotNil(t, first.LastUpdate)
	require.Equal(t, "saved work", first.MonthlyData["2025-01"].Content)
	require.Len(t, first.Files, 1)

	// Members without a snapshot entry keep their fresh state.
	require.Zero(t, merged[1].Progress)
	require.Empty(t, merged[1].MonthlyData)
}

func TestMergeDropsUnknownSavedMembers(t *testing.T) {
	fresh := roster.BuildMembers(roster.DefaultSeeds()[:2])
	merged := snapshot.Merge(fresh, []*roster.Member{savedMember("RES009")})

	require.Len(t, merged, 2)
	for _, m := range merged {
		require.NotEqual(t, "RES009", m.ID)
		require.Empty(t, m.MonthlyData)
	}
}

func TestMergeIgnoresInvalidStatus(t *testing.T) {
	fresh := roster.BuildMembers(roster.DefaultSeeds()[:1])
	saved := savedMember("RES001")
	saved.Status = "retired"

	merged := snapshot.Merge(fresh, []*roster.Member{saved})
	require.Equal(t, roster.StatusActive, merged[0].Status)
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	fresh := roster.BuildMembers(roster.DefaultSeeds()[:1])
	saved := savedMember("RES001")

	merged := snapshot.Merge(fresh, []*roster.Member{saved})
	merged[0].MonthlyData["2025-01"].Content = "tampered"
	merged[0].Files[0].Name = "tampered.pdf"

	require.Equal(t, "saved work", saved.MonthlyData["2025-01"].Content)
	require.Equal(t, "old.pdf", saved.Files[0].Name)
	require.Empty(t, fresh[0].MonthlyData)
}
