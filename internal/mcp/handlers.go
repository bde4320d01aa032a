package mcp

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joshua-mo-143/n8n-mcp/internal/common"
	"github.com/joshua-mo-143/n8n-mcp/internal/n8n"
)

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// workflowError wraps a transport or decoding failure in the bridge's
// single-line error format.
func workflowError(err error) *mcp.CallToolResult {
	return errorResult(fmt.Sprintf("Workflow error: %v", err))
}

// argValue extracts a raw argument, treating nil and empty strings as absent.
func argValue(r mcp.CallToolRequest, name string) (interface{}, bool) {
	args := r.GetArguments()
	v, ok := args[name]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return nil, false
	}
	return v, true
}

// checkParamType verifies the JSON-decoded argument matches the declared type.
func checkParamType(p Param, v interface{}) error {
	switch p.Type {
	case "number":
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("%s must be a number", p.Name)
		}
	case "boolean":
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%s must be a boolean", p.Name)
		}
	default:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%s must be a string", p.Name)
		}
	}
	return nil
}

// queryString renders an argument value as a query/path string. JSON numbers
// arrive as float64; whole values render without a decimal point.
func queryString(v interface{}) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}

// escapeWebhookPath escapes each segment of a webhook path while preserving
// the segment separators (custom webhook paths may contain slashes).
func escapeWebhookPath(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// callLogger returns a logger tagged with a fresh correlation ID for one
// tool invocation.
func callLogger(logger *common.Logger, tool string) *common.Logger {
	log := logger.WithCorrelationId(uuid.NewString())
	log.Debug().Str("tool", tool).Msg("tool call")
	return log
}

// --- Generic dispatcher ---

// EndpointHandler routes an MCP tool call to the n8n REST endpoint described
// by e. Argument validation happens before the transport client is touched;
// a validation failure issues no outbound request.
func EndpointHandler(c *n8n.Client, logger *common.Logger, e Endpoint) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callLogger(logger, e.Name)

		path := e.Path
		query := url.Values{}
		body := map[string]interface{}{}

		for _, param := range e.Params {
			val, ok := argValue(r, param.Name)
			if !ok {
				if param.Required {
					return errorResult(fmt.Sprintf("Error: %s parameter is required", param.Name)), nil
				}
				continue
			}
			if err := checkParamType(param, val); err != nil {
				return errorResult(fmt.Sprintf("Error: %v", err)), nil
			}
			if len(param.Enum) > 0 {
				strVal := queryString(val)
				valid := false
				for _, allowed := range param.Enum {
					if strVal == allowed {
						valid = true
						break
					}
				}
				if !valid {
					return errorResult(fmt.Sprintf("Error: %s must be one of: %s", param.Name, strings.Join(param.Enum, ", "))), nil
				}
			}

			switch param.In {
			case "path":
				path = strings.ReplaceAll(path, "{"+param.Name+"}", url.PathEscape(queryString(val)))
			case "query":
				query.Set(param.wireName(), queryString(val))
			case "body":
				body[param.wireName()] = val
			}
		}

		raw, err := c.Do(ctx, n8n.Request{
			Method: e.Method,
			Path:   path,
			Query:  query,
			Body:   bodyOrNil(body),
		})
		if err != nil {
			return workflowError(err), nil
		}

		pretty, err := n8n.PrettyJSON(raw)
		if err != nil {
			return workflowError(err), nil
		}
		return textResult(pretty), nil
	}
}

// bodyOrNil returns nil if the body map is empty, otherwise returns the map.
// This prevents sending an empty JSON object for methods that don't need a body.
func bodyOrNil(body map[string]interface{}) interface{} {
	if len(body) == 0 {
		return nil
	}
	return body
}

// --- Composite-body handlers ---

// workflowBody assembles the create/update payload: caller-supplied name,
// nodes and connections with default settings and no static data.
func workflowBody(r mcp.CallToolRequest) (map[string]interface{}, *mcp.CallToolResult) {
	name, err := r.RequireString("name")
	if err != nil || name == "" {
		return nil, errorResult("Error: name parameter is required")
	}
	nodes, ok := argValue(r, "nodes")
	if !ok {
		return nil, errorResult("Error: nodes parameter is required")
	}
	connections, ok := argValue(r, "connections")
	if !ok {
		return nil, errorResult("Error: connections parameter is required")
	}

	return map[string]interface{}{
		"name":        name,
		"nodes":       nodes,
		"connections": connections,
		"settings":    n8n.DefaultWorkflowSettings(),
		"staticData":  nil,
	}, nil
}

// CreateWorkflowHandler creates a new workflow with default settings.
func CreateWorkflowHandler(c *n8n.Client, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callLogger(logger, "create_workflow")

		body, errRes := workflowBody(r)
		if errRes != nil {
			return errRes, nil
		}

		raw, err := c.Post(ctx, "/api/v1/workflows", body)
		if err != nil {
			return workflowError(err), nil
		}
		pretty, err := n8n.PrettyJSON(raw)
		if err != nil {
			return workflowError(err), nil
		}
		return textResult(pretty), nil
	}
}

// UpdateWorkflowHandler replaces an existing workflow's definition.
func UpdateWorkflowHandler(c *n8n.Client, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callLogger(logger, "update_workflow_by_id")

		workflowID, err := r.RequireString("workflow_id")
		if err != nil || workflowID == "" {
			return errorResult("Error: workflow_id parameter is required"), nil
		}
		body, errRes := workflowBody(r)
		if errRes != nil {
			return errRes, nil
		}

		raw, err := c.Put(ctx, "/api/v1/workflows/"+url.PathEscape(workflowID), body)
		if err != nil {
			return workflowError(err), nil
		}
		pretty, err := n8n.PrettyJSON(raw)
		if err != nil {
			return workflowError(err), nil
		}
		return textResult(pretty), nil
	}
}

// UpdateWorkflowTagsHandler replaces the set of tags on a workflow.
func UpdateWorkflowTagsHandler(c *n8n.Client, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callLogger(logger, "update_workflow_tags_by_workflow_id")

		workflowID, err := r.RequireString("workflow_id")
		if err != nil || workflowID == "" {
			return errorResult("Error: workflow_id parameter is required"), nil
		}
		tagIDs := r.GetStringSlice("tags", nil)
		if tagIDs == nil {
			return errorResult("Error: tags parameter is required"), nil
		}

		// The n8n API takes a bare JSON array of {"id": ...} objects here.
		refs := make([]n8n.TagRef, 0, len(tagIDs))
		for _, id := range tagIDs {
			refs = append(refs, n8n.TagRef{ID: id})
		}

		raw, err := c.Put(ctx, "/api/v1/workflows/"+url.PathEscape(workflowID)+"/tags", refs)
		if err != nil {
			return workflowError(err), nil
		}
		pretty, err := n8n.PrettyJSON(raw)
		if err != nil {
			return workflowError(err), nil
		}
		return textResult(pretty), nil
	}
}

// RunWorkflowHandler triggers a workflow through its webhook path.
func RunWorkflowHandler(c *n8n.Client, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callLogger(logger, "run_workflow")

		webhookPath, err := r.RequireString("webhook_path")
		if err != nil || webhookPath == "" {
			return errorResult("Error: webhook_path parameter is required"), nil
		}
		path := "/webhook/" + escapeWebhookPath(webhookPath)

		// GET when no payload, POST with the payload as JSON body otherwise.
		var raw []byte
		if data, ok := argValue(r, "data"); ok {
			raw, err = c.Post(ctx, path, data)
		} else {
			raw, err = c.Get(ctx, path, nil)
		}
		if err != nil {
			return workflowError(err), nil
		}

		// Webhook responses are whatever the workflow produces; many return
		// nothing at all.
		if len(strings.TrimSpace(string(raw))) == 0 {
			return textResult("Workflow run successful"), nil
		}
		if pretty, err := n8n.PrettyJSON(raw); err == nil {
			return textResult(pretty), nil
		}
		return textResult(string(raw)), nil
	}
}
