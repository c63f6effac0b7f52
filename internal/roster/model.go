package roster

import "time"

// Status reflects how current a member's reporting is.
type Status string

const (
	StatusActive  Status = "active"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// Month is one reporting month. Immutable once built.
type Month struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
}

// FileAttachment is the metadata for one uploaded file. The same attachment
// value is indexed twice: in the owning member's flat file list and in the
// file list of the month it was uploaded under. Data carries the opaque
// base64 payload and is stripped from exports.
type FileAttachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       string    `json:"size"`
	Type       string    `json:"type"`
	UploadDate time.Time `json:"uploadDate"`
	Month      string    `json:"month"`
	Data       string    `json:"data,omitempty"`
}

// MonthlyRecord is one member's progress entry for one calendar month.
// A zero LastModified marks a shell created by a file upload before any
// content was saved; shells are invisible to the timeline and do not count
// toward progress.
type MonthlyRecord struct {
	Content      string           `json:"content"`
	LastModified time.Time        `json:"lastModified,omitzero"`
	Submitted    bool             `json:"submitted"`
	SubmittedAt  *time.Time       `json:"submittedAt,omitempty"`
	Files        []FileAttachment `json:"files"`
}

// Member is one roster entry. Identity fields (ID, Name, Avatar,
// ResearchArea) are owned by the roster definition; the remaining fields are
// session state that persistence overwrites on load.
type Member struct {
	ID           string                    `json:"id"`
	Name         string                    `json:"name"`
	Avatar       string                    `json:"avatar"`
	ResearchArea string                    `json:"research"`
	Status       Status                    `json:"status"`
	Progress     int                       `json:"progress"`
	LastUpdate   *time.Time                `json:"lastUpdate"`
	MonthlyData  map[string]*MonthlyRecord `json:"monthlyData"`
	Files        []FileAttachment          `json:"files"`
}

// Clone returns a deep copy of the record.
func (r *MonthlyRecord) Clone() *MonthlyRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.SubmittedAt != nil {
		at := *r.SubmittedAt
		out.SubmittedAt = &at
	}
	out.Files = cloneFiles(r.Files)
	return &out
}

// Clone returns a deep copy of the member, monthly data and files included.
func (m *Member) Clone() *Member {
	if m == nil {
		return nil
	}
	out := *m
	if m.LastUpdate != nil {
		at := *m.LastUpdate
		out.LastUpdate = &at
	}
	out.MonthlyData = make(map[string]*MonthlyRecord, len(m.MonthlyData))
	for key, rec := range m.MonthlyData {
		out.MonthlyData[key] = rec.Clone()
	}
	out.Files = cloneFiles(m.Files)
	return &out
}

func cloneFiles(files []FileAttachment) []FileAttachment {
	if files == nil {
		return nil
	}
	out := make([]FileAttachment, len(files))
	copy(out, files)
	return out
}
