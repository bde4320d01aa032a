package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joshua-mo-143/n8n-mcp/internal/common"
	"github.com/joshua-mo-143/n8n-mcp/internal/n8n"
)

// BuildTool converts an Endpoint into an mcp.Tool with the appropriate schema.
func BuildTool(e Endpoint) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(e.Description)}
	for _, p := range e.Params {
		opts = append(opts, buildParamOption(p))
	}
	return mcp.NewTool(e.Name, opts...)
}

// buildParamOption maps a Param to the appropriate mcp-go tool option.
func buildParamOption(p Param) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if p.Description != "" {
		opts = append(opts, mcp.Description(p.Description))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}

	switch p.Type {
	case "number":
		return mcp.WithNumber(p.Name, opts...)
	case "boolean":
		return mcp.WithBoolean(p.Name, opts...)
	default:
		return mcp.WithString(p.Name, opts...)
	}
}

// RegisterTools registers every bridge tool on the MCP server: the static
// catalog through the generic dispatcher, then the composite-body tools.
// Returns the number of registered tools.
func RegisterTools(s *server.MCPServer, c *n8n.Client, logger *common.Logger) (int, error) {
	catalog := Catalog()
	if err := ValidateCatalog(catalog); err != nil {
		return 0, fmt.Errorf("invalid tool catalog: %w", err)
	}

	for _, e := range catalog {
		s.AddTool(BuildTool(e), EndpointHandler(c, logger, e))
	}

	s.AddTool(createWorkflowTool(), CreateWorkflowHandler(c, logger))
	s.AddTool(updateWorkflowTool(), UpdateWorkflowHandler(c, logger))
	s.AddTool(updateWorkflowTagsTool(), UpdateWorkflowTagsHandler(c, logger))
	s.AddTool(runWorkflowTool(), RunWorkflowHandler(c, logger))

	return len(catalog) + 4, nil
}

// --- Composite-body tool definitions ---

func createWorkflowTool() mcp.Tool {
	return mcp.NewTool("create_workflow",
		mcp.WithDescription("Create a new workflow."),
		mcp.WithString("name", mcp.Required(), mcp.Description("The name of your workflow.")),
		mcp.WithArray("nodes", mcp.Required(), mcp.Description("The nodes you want to use in your workflow, as an array of n8n node objects.")),
		mcp.WithObject("connections", mcp.Required(), mcp.Description("The connections you want for your workflow.")),
	)
}

func updateWorkflowTool() mcp.Tool {
	return mcp.NewTool("update_workflow_by_id",
		mcp.WithDescription("Updates a workflow."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow to be updated.")),
		mcp.WithString("name", mcp.Required(), mcp.Description("The name of your workflow.")),
		mcp.WithArray("nodes", mcp.Required(), mcp.Description("The nodes you want to use in your workflow, as an array of n8n node objects.")),
		mcp.WithObject("connections", mcp.Required(), mcp.Description("The connections you want for your workflow.")),
	)
}

func updateWorkflowTagsTool() mcp.Tool {
	return mcp.NewTool("update_workflow_tags_by_workflow_id",
		mcp.WithDescription("Updates the tags of a single workflow to the provided tags."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The workflow ID to use.")),
		mcp.WithArray("tags", mcp.Required(), mcp.WithStringItems(), mcp.Description("The IDs of the tags to assign to this workflow.")),
	)
}

func runWorkflowTool() mcp.Tool {
	return mcp.NewTool("run_workflow",
		mcp.WithDescription("Run a workflow via its webhook path. If you don't have a webhook path to use, "+
			"retrieve all workflows and search for an appropriate workflow to run. Note that for a workflow "+
			"to be runnable this way, its first node must be a webhook trigger."),
		mcp.WithString("webhook_path", mcp.Required(), mcp.Description("The path of the webhook (that belongs to the workflow to run).")),
		mcp.WithObject("data", mcp.Description("The data to pass to the webhook. If the user has not explicitly asked for data to be sent, leave this unset.")),
	)
}
