package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Benggoy/f5-on-DPU-roi-config/internal/configstore"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// markdownPreviewLimit caps how much of the document the markdown response
// format embeds.
const markdownPreviewLimit = 3000

// maxReportedChanges caps the change list returned by apply.
const maxReportedChanges = 20

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("roi_config_status",
			mcp.WithDescription("Get status of the ROI config file and MCP server"),
		),
		s.handleStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("roi_config_read",
			mcp.WithDescription("Read the ROI calculator configuration file"),
			mcp.WithString("section",
				mcp.Description("Top-level section to read (e.g. gpuTypes, hardware, models, storage, metadata). Omit for the full document"),
			),
			mcp.WithString("response_format",
				mcp.Description("Response format"),
				mcp.Enum("markdown", "json"),
				mcp.DefaultString("markdown"),
			),
		),
		s.handleRead,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("roi_config_research",
			mcp.WithDescription("Build a research prompt for refreshing ROI config pricing and specs"),
			mcp.WithString("categories",
				mcp.Description("Config categories to research, or \"all\""),
				mcp.DefaultString("all"),
			),
		),
		s.handleResearch,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("roi_config_apply",
			mcp.WithDescription("Apply updates to the ROI config file. REQUIRES user_confirmed=true. A timestamped backup is written before any change"),
			mcp.WithString("document",
				mcp.Description("Full replacement document as a JSON string. Mutually exclusive with updates_json"),
			),
			mcp.WithString("updates_json",
				mcp.Description("Section-level update payload as a JSON string (version_increment plus <section>_updates objects). Mutually exclusive with document"),
			),
			mcp.WithBoolean("user_confirmed",
				mcp.Required(),
				mcp.Description("Must be true; the user has explicitly approved this write"),
			),
			mcp.WithBoolean("create_backup",
				mcp.Description("Write a timestamped backup before the change (default true)"),
				mcp.DefaultBool(true),
			),
		),
		s.handleApply,
	)
}

func (s *Server) handleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reqID := uuid.NewString()
	s.logger.Debug("Tool invoked", "tool", "roi_config_status", "requestID", reqID)

	info := s.store.Stat()

	var b strings.Builder
	b.WriteString("# ROI Config MCP Status\n")
	fmt.Fprintf(&b, "File: %s\n", info.Path)
	fmt.Fprintf(&b, "Exists: %t\n", info.Exists)
	fmt.Fprintf(&b, "Version: %s\n", s.store.Version())
	fmt.Fprintf(&b, "Sections: %d\n", s.store.SectionCount())
	if info.Exists {
		fmt.Fprintf(&b, "Hash: %s\n", s.store.Hash())
		fmt.Fprintf(&b, "LastModified: %s\n", info.ModTime.UTC().Format(time.RFC3339))
	}
	b.WriteString("Security: Single file access only, requires confirmation for writes")

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleRead(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reqID := uuid.NewString()
	section := request.GetString("section", "")
	format := request.GetString("response_format", "markdown")
	s.logger.Debug("Tool invoked", "tool", "roi_config_read", "requestID", reqID, "section", section, "format", format)

	var data []byte
	var err error
	if section == "" {
		data, err = s.store.ReadAll()
	} else {
		data, err = s.store.ReadSection(section)
	}
	if err != nil {
		s.logger.Warn("Read failed", "requestID", reqID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if format == "json" {
		out := []byte(`{}`)
		out, err = sjson.SetBytes(out, "file_hash", s.store.Hash())
		if err == nil {
			out, err = sjson.SetRawBytes(out, "data", data)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to build response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(pretty.Pretty(out))), nil
	}

	rendered := string(pretty.Pretty(data))
	if len(rendered) > markdownPreviewLimit {
		rendered = rendered[:markdownPreviewLimit] + "\n... (truncated)"
	}

	var b strings.Builder
	b.WriteString("# ROI Config\n")
	fmt.Fprintf(&b, "Version: %s\n", s.store.Version())
	fmt.Fprintf(&b, "Hash: %s\n\n", s.store.Hash())
	b.WriteString(rendered)

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleResearch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reqID := uuid.NewString()
	categories := request.GetString("categories", "all")
	s.logger.Debug("Tool invoked", "tool", "roi_config_research", "requestID", reqID, "categories", categories)

	prompt := BuildResearchPrompt(s.store.Version(), time.Now(), categories)
	return mcp.NewToolResultText(prompt), nil
}

func (s *Server) handleApply(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reqID := uuid.NewString()
	s.logger.Debug("Tool invoked", "tool", "roi_config_apply", "requestID", reqID)

	// Confirmation gate comes first, before any argument inspection
	if err := checkConfirmation(request.GetBool("user_confirmed", false)); err != nil {
		s.logger.Warn("Apply rejected", "requestID", reqID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	document := request.GetString("document", "")
	updatesJSON := request.GetString("updates_json", "")
	if (document == "") == (updatesJSON == "") {
		return mcp.NewToolResultError("exactly one of document or updates_json must be provided"), nil
	}

	var backupPath string
	var snapshot func([]byte) error
	if request.GetBool("create_backup", true) {
		snapshot = func(current []byte) error {
			path, err := s.backups.Snapshot(current)
			if err != nil {
				return err
			}
			backupPath = path
			return nil
		}
	}

	var changes []string
	if document != "" {
		if err := s.store.Replace([]byte(document), snapshot); err != nil {
			s.logger.Error("Apply failed", "requestID", reqID, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
	} else {
		current, err := s.store.ReadAll()
		if err != nil {
			s.logger.Error("Apply failed", "requestID", reqID, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		merged, changeList, err := configstore.MergeUpdates(current, []byte(updatesJSON), time.Now())
		if err != nil {
			s.logger.Error("Apply failed", "requestID", reqID, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := s.store.Replace(merged, snapshot); err != nil {
			s.logger.Error("Apply failed", "requestID", reqID, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		changes = changeList
	}

	s.logger.Info("Config updated", "requestID", reqID, "changes", len(changes), "backup", backupPath)

	var b strings.Builder
	b.WriteString("# Update Applied\n")
	fmt.Fprintf(&b, "Changes: %d\n", len(changes))
	if backupPath != "" {
		fmt.Fprintf(&b, "Backup: %s\n", backupPath)
	} else {
		b.WriteString("Backup: None\n")
	}
	for i, change := range changes {
		if i == maxReportedChanges {
			b.WriteString("- ...\n")
			break
		}
		fmt.Fprintf(&b, "- %s\n", change)
	}

	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}
