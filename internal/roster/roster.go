package roster

import (
	"fmt"
	"net/url"
	"time"
)

// MonthsPerYear is the length of one reporting cycle.
const MonthsPerYear = 12

// Seed describes one roster entry before ids are assigned.
type Seed struct {
	Name   string `yaml:"name"`
	Area   string `yaml:"area"`
	Status Status `yaml:"status"`
}

// BuildMonths returns the twelve consecutive reporting months starting at
// January of startYear. Month ids take the form "2025-01".
func BuildMonths(startYear int) []Month {
	months := make([]Month, 0, MonthsPerYear)
	for i := 0; i < MonthsPerYear; i++ {
		year := startYear + i/12
		month := i%12 + 1
		months = append(months, Month{
			ID:    fmt.Sprintf("%04d-%02d", year, month),
			Name:  fmt.Sprintf("%s %d", time.Month(month), year),
			Year:  year,
			Month: month,
		})
	}
	return months
}

// BuildMembers constructs the fixed roster from seeds. Ids are deterministic,
// 1-based, zero-padded to width 3 ("RES001"). Members start with empty
// monthly data and files; a missing seed status defaults to active.
func BuildMembers(seeds []Seed) []*Member {
	members := make([]*Member, 0, len(seeds))
	for i, seed := range seeds {
		status := seed.Status
		if status == "" {
			status = StatusActive
		}
		members = append(members, &Member{
			ID:           fmt.Sprintf("RES%03d", i+1),
			Name:         seed.Name,
			Avatar:       avatarURL(seed.Name),
			ResearchArea: seed.Area,
			Status:       status,
			MonthlyData:  make(map[string]*MonthlyRecord),
			Files:        []FileAttachment{},
		})
	}
	return members
}

// DefaultSeeds is the stock eight-member research roster.
func DefaultSeeds() []Seed {
	return []Seed{
		{Name: "Alice Zhang", Area: "Machine Learning Algorithms"},
		{Name: "Brian Lee", Area: "Natural Language Processing"},
		{Name: "Carmen Ortiz", Area: "Computer Vision"},
		{Name: "Deepak Rao", Area: "Data Mining"},
		{Name: "Elena Petrova", Area: "Artificial Intelligence Theory", Status: StatusWarning},
		{Name: "Felix Wagner", Area: "Intelligent Systems"},
		{Name: "Grace Chen", Area: "Knowledge Graphs", Status: StatusDanger},
		{Name: "Hassan Ali", Area: "Human-Computer Interaction"},
	}
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=2c3e50&color=fff"
}
