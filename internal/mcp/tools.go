package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/labtrack/labtrack/internal/attachment"
	"github.com/labtrack/labtrack/internal/report"
	"github.com/labtrack/labtrack/internal/roster"
)

type handler struct {
	svc    Services
	logger *slog.Logger
}

func registerTools(server *sdkmcp.Server, svc Services, logger *slog.Logger) {
	h := &handler{svc: svc, logger: logger}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_members",
		Description: "List the roster with each member's reporting overview",
	}, h.listMembers)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_months",
		Description: "List the twelve reporting months of the cycle",
	}, h.listMonths)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_member",
		Description: "Get one member's overview and full monthly history",
	}, h.getMember)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_progress",
		Description: "Get the saved progress record for one member and month",
	}, h.getProgress)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "save_progress",
		Description: "Save progress content for a member and month; editing a submitted month moves it back to draft",
	}, h.saveProgress)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "submit_progress",
		Description: "Submit a saved month to the supervisor; requires previously saved content",
	}, h.submitProgress)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "attach_files",
		Description: "Attach files to a member's month; files over 50 MB are rejected individually and the rest proceed",
	}, h.attachFiles)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_file",
		Description: "Delete an attached file from a member; unknown ids are a no-op",
	}, h.deleteFile)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_stats",
		Description: "Get roster-wide statistics for a reporting month",
	}, h.getStats)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_timeline",
		Description: "Get the recent-activity feed, newest first",
	}, h.getTimeline)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_report",
		Description: "Build the downloadable progress report with file payloads stripped",
	}, h.exportReport)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "save_snapshot",
		Description: "Persist the current state explicitly; the server also autosaves",
	}, h.saveSnapshot)
}

// persist writes the snapshot after a mutation. Failures are logged and the
// session continues with the unsaved in-memory state; they never fail the
// originating operation.
func (h *handler) persist(ctx context.Context) {
	if h.svc.Save == nil {
		return
	}
	if err := h.svc.Save(ctx); err != nil {
		h.logger.Error("failed to persist snapshot, continuing unsaved", "error", err)
	}
}

type emptyParams struct{}

type listMembersResult struct {
	Members []report.MemberOverview `json:"members"`
}

func (h *handler) listMembers(_ context.Context, _ *sdkmcp.CallToolRequest, _ emptyParams) (*sdkmcp.CallToolResult, listMembersResult, error) {
	out := listMembersResult{Members: []report.MemberOverview{}}
	for _, m := range h.svc.Progress.Members() {
		overview, err := h.svc.Reports.MemberOverview(m.ID)
		if err != nil {
			return nil, listMembersResult{}, userError(err)
		}
		out.Members = append(out.Members, *overview)
	}
	return nil, out, nil
}

type listMonthsResult struct {
	Months []roster.Month `json:"months"`
}

func (h *handler) listMonths(_ context.Context, _ *sdkmcp.CallToolRequest, _ emptyParams) (*sdkmcp.CallToolResult, listMonthsResult, error) {
	return nil, listMonthsResult{Months: h.svc.Progress.Months()}, nil
}

type getMemberParams struct {
	MemberID string `json:"member_id" jsonschema:"roster member id, e.g. RES001"`
}

type getMemberResult struct {
	Overview    report.MemberOverview            `json:"overview"`
	MonthlyData map[string]*roster.MonthlyRecord `json:"monthlyData"`
}

func (h *handler) getMember(_ context.Context, _ *sdkmcp.CallToolRequest, params getMemberParams) (*sdkmcp.CallToolResult, getMemberResult, error) {
	overview, err := h.svc.Reports.MemberOverview(params.MemberID)
	if err != nil {
		return nil, getMemberResult{}, userError(err)
	}
	member, err := h.svc.Progress.Member(params.MemberID)
	if err != nil {
		return nil, getMemberResult{}, userError(err)
	}

	monthly := make(map[string]*roster.MonthlyRecord, len(member.MonthlyData))
	for monthID, rec := range member.MonthlyData {
		monthly[monthID] = stripRecord(rec)
	}
	return nil, getMemberResult{Overview: *overview, MonthlyData: monthly}, nil
}

type recordParams struct {
	MemberID string `json:"member_id" jsonschema:"roster member id, e.g. RES001"`
	MonthID  string `json:"month_id" jsonschema:"reporting month id, e.g. 2025-01"`
}

type recordResult struct {
	MemberID string                `json:"memberId"`
	MonthID  string                `json:"monthId"`
	Record   *roster.MonthlyRecord `json:"record"`
}

func (h *handler) getProgress(_ context.Context, _ *sdkmcp.CallToolRequest, params recordParams) (*sdkmcp.CallToolResult, recordResult, error) {
	rec, err := h.svc.Progress.Record(params.MemberID, params.MonthID)
	if err != nil {
		return nil, recordResult{}, userError(err)
	}
	return nil, recordResult{MemberID: params.MemberID, MonthID: params.MonthID, Record: stripRecord(rec)}, nil
}

type saveProgressParams struct {
	MemberID string `json:"member_id" jsonschema:"roster member id, e.g. RES001"`
	MonthID  string `json:"month_id" jsonschema:"reporting month id, e.g. 2025-01"`
	Content  string `json:"content" jsonschema:"rich-text progress content; must not be empty"`
}

func (h *handler) saveProgress(ctx context.Context, _ *sdkmcp.CallToolRequest, params saveProgressParams) (*sdkmcp.CallToolResult, recordResult, error) {
	rec, err := h.svc.Progress.UpsertContent(params.MemberID, params.MonthID, params.Content)
	if err != nil {
		return nil, recordResult{}, userError(err)
	}
	h.persist(ctx)
	return nil, recordResult{MemberID: params.MemberID, MonthID: params.MonthID, Record: stripRecord(rec)}, nil
}

func (h *handler) submitProgress(ctx context.Context, _ *sdkmcp.CallToolRequest, params recordParams) (*sdkmcp.CallToolResult, recordResult, error) {
	if err := h.svc.Progress.MarkSubmitted(params.MemberID, params.MonthID); err != nil {
		return nil, recordResult{}, userError(err)
	}
	h.persist(ctx)

	rec, err := h.svc.Progress.Record(params.MemberID, params.MonthID)
	if err != nil {
		return nil, recordResult{}, userError(err)
	}
	return nil, recordResult{MemberID: params.MemberID, MonthID: params.MonthID, Record: stripRecord(rec)}, nil
}

type fileUpload struct {
	Name      string `json:"name" jsonschema:"original filename, extension drives the type tag"`
	Data      string `json:"data,omitempty" jsonschema:"base64-encoded file content; optional"`
	SizeBytes int64  `json:"size_bytes,omitempty" jsonschema:"byte size when data is omitted"`
}

type attachFilesParams struct {
	MemberID string       `json:"member_id" jsonschema:"roster member id, e.g. RES001"`
	MonthID  string       `json:"month_id" jsonschema:"reporting month id, e.g. 2025-01"`
	Files    []fileUpload `json:"files" jsonschema:"files to attach"`
}

type attachFilesResult struct {
	Attached []roster.FileAttachment `json:"attached"`
	Rejected []string                `json:"rejected,omitempty"`
}

func (h *handler) attachFiles(ctx context.Context, _ *sdkmcp.CallToolRequest, params attachFilesParams) (*sdkmcp.CallToolResult, attachFilesResult, error) {
	uploads := make([]attachment.Upload, 0, len(params.Files))
	rejected := []string{}
	for _, f := range params.Files {
		up := attachment.Upload{Name: f.Name, SizeBytes: f.SizeBytes}
		if f.Data != "" {
			raw, err := base64.StdEncoding.DecodeString(f.Data)
			if err != nil {
				rejected = append(rejected, fmt.Sprintf("%s: invalid base64 data", f.Name))
				continue
			}
			up.SizeBytes = int64(len(raw))
			up.Content = bytes.NewReader(raw)
		}
		uploads = append(uploads, up)
	}

	attached, err := h.svc.Attachments.AttachBatch(ctx, params.MemberID, params.MonthID, uploads)
	if err != nil {
		return nil, attachFilesResult{}, userError(err)
	}
	h.persist(ctx)

	accepted := make(map[string]bool, len(attached))
	stripped := make([]roster.FileAttachment, 0, len(attached))
	for _, f := range attached {
		accepted[f.Name] = true
		f.Data = ""
		stripped = append(stripped, f)
	}
	for _, up := range uploads {
		if !accepted[up.Name] {
			rejected = append(rejected, fmt.Sprintf("%s: exceeds the 50 MB limit or is unreadable", up.Name))
		}
	}
	return nil, attachFilesResult{Attached: stripped, Rejected: rejected}, nil
}

type deleteFileParams struct {
	MemberID string `json:"member_id" jsonschema:"roster member id, e.g. RES001"`
	FileID   string `json:"file_id" jsonschema:"attachment id to delete"`
}

type statusResult struct {
	Status string `json:"status"`
}

func (h *handler) deleteFile(ctx context.Context, _ *sdkmcp.CallToolRequest, params deleteFileParams) (*sdkmcp.CallToolResult, statusResult, error) {
	if err := h.svc.Attachments.Detach(params.MemberID, params.FileID); err != nil {
		return nil, statusResult{}, userError(err)
	}
	h.persist(ctx)
	return nil, statusResult{Status: "deleted"}, nil
}

type getStatsParams struct {
	MonthID string `json:"month_id,omitempty" jsonschema:"month to count submissions for; defaults to the first month of the cycle"`
}

type getStatsResult struct {
	MonthID string       `json:"monthId"`
	Stats   report.Stats `json:"stats"`
}

func (h *handler) getStats(_ context.Context, _ *sdkmcp.CallToolRequest, params getStatsParams) (*sdkmcp.CallToolResult, getStatsResult, error) {
	monthID := params.MonthID
	if monthID == "" {
		if months := h.svc.Progress.Months(); len(months) > 0 {
			monthID = months[0].ID
		}
	}
	return nil, getStatsResult{MonthID: monthID, Stats: h.svc.Reports.ComputeStats(monthID)}, nil
}

type getTimelineParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of entries; defaults to 10"`
}

type getTimelineResult struct {
	Entries []report.TimelineEntry `json:"entries"`
}

func (h *handler) getTimeline(_ context.Context, _ *sdkmcp.CallToolRequest, params getTimelineParams) (*sdkmcp.CallToolResult, getTimelineResult, error) {
	return nil, getTimelineResult{Entries: h.svc.Reports.BuildTimeline(params.Limit)}, nil
}

func (h *handler) exportReport(_ context.Context, _ *sdkmcp.CallToolRequest, _ emptyParams) (*sdkmcp.CallToolResult, report.Export, error) {
	return nil, *h.svc.Reports.BuildExport(), nil
}

func (h *handler) saveSnapshot(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyParams) (*sdkmcp.CallToolResult, statusResult, error) {
	if h.svc.Save == nil {
		return nil, statusResult{Status: "no store configured"}, nil
	}
	if err := h.svc.Save(ctx); err != nil {
		return nil, statusResult{}, fmt.Errorf("saving snapshot: %w", err)
	}
	return nil, statusResult{Status: "saved"}, nil
}

// stripRecord drops attachment payloads from a record copy before it leaves
// the server.
func stripRecord(rec *roster.MonthlyRecord) *roster.MonthlyRecord {
	if rec == nil {
		return nil
	}
	out := rec.Clone()
	for i := range out.Files {
		out.Files[i].Data = ""
	}
	return out
}
