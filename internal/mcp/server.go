package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/labtrack/labtrack/internal/attachment"
	"github.com/labtrack/labtrack/internal/report"
	"github.com/labtrack/labtrack/internal/roster"
)

// ProgressService defines record store operations needed by MCP.
type ProgressService interface {
	Months() []roster.Month
	Members() []*roster.Member
	Member(memberID string) (*roster.Member, error)
	Record(memberID, monthID string) (*roster.MonthlyRecord, error)
	UpsertContent(memberID, monthID, content string) (*roster.MonthlyRecord, error)
	MarkSubmitted(memberID, monthID string) error
}

// AttachmentService defines file operations needed by MCP.
type AttachmentService interface {
	AttachBatch(ctx context.Context, memberID, monthID string, uploads []attachment.Upload) ([]roster.FileAttachment, error)
	Detach(memberID, fileID string) error
}

// ReportService defines derived-view operations needed by MCP.
type ReportService interface {
	ComputeStats(currentMonthID string) report.Stats
	BuildTimeline(limit int) []report.TimelineEntry
	MemberOverview(memberID string) (*report.MemberOverview, error)
	BuildExport() *report.Export
}

// SaveFunc persists the current record store state.
type SaveFunc func(ctx context.Context) error

// Services contains all domain services needed by MCP.
type Services struct {
	Progress    ProgressService
	Attachments AttachmentService
	Reports     ReportService
	Save        SaveFunc
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "labtrack",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerUsageResource(server)

	// The core assumes a single actor: mutations never interleave. The
	// serialization middleware enforces that at the boundary so the domain
	// packages stay lock-light.
	server.AddReceivingMiddleware(serializeMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services, cfg.Logger)

	return server
}
