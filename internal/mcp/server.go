package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/joshua-mo-143/n8n-mcp/internal/common"
	"github.com/joshua-mo-143/n8n-mcp/internal/config"
	"github.com/joshua-mo-143/n8n-mcp/internal/n8n"
)

// serverInstructions is surfaced to MCP hosts so the model knows what the
// bridge can do without probing every tool.
const serverInstructions = `This server provides tools that interact with an n8n server.

n8n (or 'node-mation') is a service for creating automations that can either be used on n8n's cloud offering or self-hosted.
Using this server, users can create, retrieve (in bulk and by ID), update and delete workflows, activate and deactivate them, and retrieve or update the tags of a given workflow.
They can also retrieve (in bulk and by ID) and delete executions, and retrieve (in bulk and by ID), create, update and delete tags.

If the user requests you to update or run a workflow (or assign a tag), you might need to fetch all workflows first to see what workflows are available.`

// NewServer builds the MCP server with every bridge tool registered.
// Construction fails when the n8n connection config is incomplete or the
// tool catalog is invalid.
func NewServer(cfg *config.Config, logger *common.Logger) (*server.MCPServer, error) {
	client, err := n8n.NewClient(cfg.N8N, logger)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		cfg.Server.Name,
		common.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)

	count, err := RegisterTools(s, client, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("tools", count).
		Str("base_url", client.BaseURL()).
		Msg("n8n MCP server initialized")

	return s, nil
}
