package report

import (
	"time"

	"github.com/labtrack/labtrack/internal/roster"
)

const (
	exportSystem  = "labtrack"
	exportVersion = "0.1.0"
)

// Export is the one-way download document: everything a supervisor needs to
// review the year, with file payloads stripped.
type Export struct {
	ExportDate   time.Time      `json:"exportDate"`
	System       string         `json:"system"`
	Version      string         `json:"version"`
	TotalMembers int            `json:"totalMembers"`
	Members      []ExportMember `json:"members"`
}

// ExportMember is one member's slice of the export document.
type ExportMember struct {
	ID           string                           `json:"id"`
	Name         string                           `json:"name"`
	ResearchArea string                           `json:"research"`
	Progress     int                              `json:"progress"`
	LastUpdate   *time.Time                       `json:"lastUpdate"`
	MonthlyData  map[string]*roster.MonthlyRecord `json:"monthlyData"`
	Files        []ExportFile                     `json:"files"`
}

// ExportFile keeps only the reviewable attachment metadata.
type ExportFile struct {
	Name       string    `json:"name"`
	Size       string    `json:"size"`
	UploadDate time.Time `json:"uploadDate"`
}

// BuildExport assembles the export document from the current store state.
func (s *Service) BuildExport() *Export {
	members := s.store.Members()
	out := &Export{
		ExportDate:   s.now(),
		System:       exportSystem,
		Version:      exportVersion,
		TotalMembers: len(members),
		Members:      make([]ExportMember, 0, len(members)),
	}

	for _, m := range members {
		monthly := make(map[string]*roster.MonthlyRecord, len(m.MonthlyData))
		for monthID, rec := range m.MonthlyData {
			clean := rec.Clone()
			for i := range clean.Files {
				clean.Files[i].Data = ""
			}
			monthly[monthID] = clean
		}

		files := make([]ExportFile, 0, len(m.Files))
		for _, f := range m.Files {
			files = append(files, ExportFile{Name: f.Name, Size: f.Size, UploadDate: f.UploadDate})
		}

		out.Members = append(out.Members, ExportMember{
			ID:           m.ID,
			Name:         m.Name,
			ResearchArea: m.ResearchArea,
			Progress:     m.Progress,
			LastUpdate:   m.LastUpdate,
			MonthlyData:  monthly,
			Files:        files,
		})
	}
	return out
}
