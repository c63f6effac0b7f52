package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `LabTrack tracks monthly research progress for a fixed lab roster across a
twelve-month reporting cycle.

Typical flow:
1. list_members / list_months to discover ids.
2. save_progress to draft a member's month, then submit_progress to send it
   to the supervisor. Editing a submitted month moves it back to draft.
3. attach_files / delete_file to manage per-month attachments.
4. get_stats, get_timeline and export_report for roster-wide views.

State persists automatically after every mutation and on a background
interval; save_snapshot forces a write and reports failures.

Read labtrack://docs/usage for details on ids, statuses and limits.`

const usageDoc = `# LabTrack Usage

## Identifiers

- Member ids follow the pattern RES001..RES008 and come from list_members.
- Month ids follow the pattern YYYY-MM (for example 2025-01) and come from
  list_months. The cycle always spans twelve months of one start year.

## Progress workflow

- save_progress stores rich-text content for a member and month. Empty
  content is rejected. Saving over a submitted month resets it to draft and
  clears its submission timestamp.
- submit_progress requires previously saved content and marks the member
  active.
- Progress percent is the share of months with non-empty saved content,
  rounded to the nearest integer.

## Files

- attach_files accepts a batch; each file over 50 MB is rejected on its own
  while the rest proceed. Provide base64 content in data, or just size_bytes
  for metadata-only attachments.
- File type tags derive from the filename extension (pdf, word, excel,
  powerpoint, image, archive, alt, or file).
- delete_file removes an attachment everywhere it is indexed; unknown ids
  are a no-op.

## Statuses

Members carry one of three statuses: active, warning, danger. Submitting a
month always sets the member active.`

func registerUsageResource(server *sdkmcp.Server) {
	server.AddResource(&sdkmcp.Resource{
		URI:         "labtrack://docs/usage",
		Name:        "labtrack-usage",
		Title:       "LabTrack Usage",
		Description: "Identifiers, the progress workflow, file limits and statuses",
		MIMEType:    "text/markdown",
		Size:        int64(len(usageDoc)),
	}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		uri := "labtrack://docs/usage"
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     usageDoc,
			}},
		}, nil
	})
}
