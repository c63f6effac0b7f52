package snapshot

import "github.com/labtrack/labtrack/internal/roster"

// Merge reconciles a freshly-initialized roster with previously persisted
// members. The roster definition is authoritative for membership and
// identity: ids, names, avatars and research areas always come from fresh,
// and saved members with no roster counterpart are dropped. Only the session
// state {monthlyData, files, progress, status, lastUpdate} is taken from the
// snapshot. The inputs are not mutated.
func Merge(fresh, saved []*roster.Member) []*roster.Member {
	savedByID := make(map[string]*roster.Member, len(saved))
	for _, m := range saved {
		savedByID[m.ID] = m
	}

	merged := make([]*roster.Member, 0, len(fresh))
	for _, m := range fresh {
		member := m.Clone()
		if prior, ok := savedByID[m.ID]; ok {
			prior = prior.Clone()
			member.MonthlyData = prior.MonthlyData
			member.Files = prior.Files
			member.Progress = prior.Progress
			member.LastUpdate = prior.LastUpdate
			if validStatus(prior.Status) {
				member.Status = prior.Status
			}
		}
		if member.MonthlyData == nil {
			member.MonthlyData = make(map[string]*roster.MonthlyRecord)
		}
		if member.Files == nil {
			member.Files = []roster.FileAttachment{}
		}
		merged = append(merged, member)
	}
	return merged
}

func validStatus(s roster.Status) bool {
	switch s {
	case roster.StatusActive, roster.StatusWarning, roster.StatusDanger:
		return true
	}
	return false
}
