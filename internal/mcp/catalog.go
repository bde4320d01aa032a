// Package mcp maps the n8n REST API onto MCP tools: a static catalog of
// endpoint templates consumed by one generic dispatcher, plus a handful of
// handlers for request shapes the flat table cannot express.
package mcp

import (
	"fmt"
	"strings"
)

// allowedMethods is the whitelist of HTTP methods for catalog endpoints.
var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
}

// Param describes one tool parameter and where it lands in the HTTP request.
type Param struct {
	Name        string   // tool-facing argument name
	Wire        string   // name on the n8n wire (defaults to Name)
	Type        string   // string, number, boolean
	Description string
	Required    bool
	In          string   // path, query, body
	Enum        []string // closed set of accepted values, empty = unrestricted
}

// wireName returns the query/body key for the parameter.
func (p Param) wireName() string {
	if p.Wire != "" {
		return p.Wire
	}
	return p.Name
}

// Endpoint binds one tool name to an HTTP request template. Every endpoint
// maps to exactly one outbound call.
type Endpoint struct {
	Name        string
	Description string
	Method      string
	Path        string // may contain {param} placeholders
	Params      []Param
}

// statusValues are the accepted execution status filter values.
var statusValues = []string{"error", "success", "waiting"}

// Catalog returns the static endpoint table: every n8n operation whose
// request shape is expressible as verb + path template + parameter placement.
// create_workflow, update_workflow_by_id, update_workflow_tags_by_workflow_id
// and run_workflow need composite bodies and live in handlers.go instead.
func Catalog() []Endpoint {
	return []Endpoint{
		{
			Name: "retrieve_workflows",
			Description: "Retrieve all workflows (with optional parameters for filtering). " +
				"Pages can be navigated by passing the nextCursor value from a previous response as cursor.",
			Method: "GET",
			Path:   "/api/v1/workflows",
			Params: []Param{
				{Name: "active", Type: "boolean", In: "query", Description: "Filter workflows by active state."},
				{Name: "tags", Type: "string", In: "query", Description: "Comma-separated list of tag names to filter by."},
				{Name: "name", Type: "string", In: "query", Description: "Filter workflows by name."},
				{Name: "project_id", Wire: "projectId", Type: "string", In: "query", Description: "Project ID to filter workflows by."},
				{Name: "exclude_pinned_data", Wire: "excludePinnedData", Type: "boolean", In: "query", Description: "Set to true to exclude pinned data from the results."},
				{Name: "limit", Type: "number", In: "query", Description: "The maximum number of items to return. The absolute maximum is 250."},
				{Name: "cursor", Type: "string", In: "query", Description: "Opaque pagination cursor from a previous response. Leave blank for the first page."},
			},
		},
		{
			Name:        "retrieve_workflow_by_id",
			Description: "Retrieve the details of a single workflow by its ID.",
			Method:      "GET",
			Path:        "/api/v1/workflows/{workflow_id}",
			Params: []Param{
				{Name: "workflow_id", Type: "string", In: "path", Required: true, Description: "The workflow ID to fetch."},
				{Name: "exclude_pinned_data", Wire: "excludePinnedData", Type: "boolean", In: "query", Description: "Set to true to exclude pinned data from the result."},
			},
		},
		{
			Name:        "delete_workflow_by_id",
			Description: "Delete a single workflow by its ID.",
			Method:      "DELETE",
			Path:        "/api/v1/workflows/{workflow_id}",
			Params: []Param{
				{Name: "workflow_id", Type: "string", In: "path", Required: true, Description: "The workflow ID to use."},
			},
		},
		{
			Name:        "activate_workflow_by_id",
			Description: "Activates a single workflow by ID.",
			Method:      "POST",
			Path:        "/api/v1/workflows/{workflow_id}/activate",
			Params: []Param{
				{Name: "workflow_id", Type: "string", In: "path", Required: true, Description: "The workflow ID to use."},
			},
		},
		{
			Name:        "deactivate_workflow_by_id",
			Description: "Deactivates a single workflow by ID.",
			Method:      "POST",
			Path:        "/api/v1/workflows/{workflow_id}/deactivate",
			Params: []Param{
				{Name: "workflow_id", Type: "string", In: "path", Required: true, Description: "The workflow ID to use."},
			},
		},
		{
			Name:        "get_workflow_tags_by_workflow_id",
			Description: "Gets the tags of a single workflow by ID.",
			Method:      "GET",
			Path:        "/api/v1/workflows/{workflow_id}/tags",
			Params: []Param{
				{Name: "workflow_id", Type: "string", In: "path", Required: true, Description: "The workflow ID to use."},
			},
		},
		{
			Name:        "retrieve_all_executions",
			Description: "Retrieve all executions (with optional parameters for filtering).",
			Method:      "GET",
			Path:        "/api/v1/executions",
			Params: []Param{
				{Name: "include_data", Wire: "includeData", Type: "boolean", In: "query", Description: "Whether or not to include the execution's detailed data."},
				{Name: "status", Type: "string", In: "query", Enum: statusValues, Description: "The status of an execution. Can either be: 'error' | 'success' | 'waiting'."},
				{Name: "workflow_id", Wire: "workflowId", Type: "string", In: "query", Description: "Workflow ID to filter executions by. Optional."},
				{Name: "project_id", Wire: "projectId", Type: "string", In: "query", Description: "Project ID to filter executions by. Optional."},
				{Name: "limit", Type: "number", In: "query", Description: "The maximum number of items to return. The absolute maximum is 250."},
				{Name: "cursor", Type: "string", In: "query", Description: "Opaque pagination cursor from a previous response. Leave blank for the first page."},
			},
		},
		{
			Name:        "retrieve_execution_by_id",
			Description: "Retrieve an execution by ID.",
			Method:      "GET",
			Path:        "/api/v1/executions/{execution_id}",
			Params: []Param{
				{Name: "execution_id", Type: "string", In: "path", Required: true, Description: "The execution ID to use."},
				{Name: "include_data", Wire: "includeData", Type: "boolean", In: "query", Description: "Whether or not to include the execution's detailed data."},
			},
		},
		{
			Name:        "delete_execution_by_id",
			Description: "Deletes an execution by ID.",
			Method:      "DELETE",
			Path:        "/api/v1/executions/{execution_id}",
			Params: []Param{
				{Name: "execution_id", Type: "string", In: "path", Required: true, Description: "The execution ID to use."},
			},
		},
		{
			Name:        "create_tag",
			Description: "Create a tag.",
			Method:      "POST",
			Path:        "/tags",
			Params: []Param{
				{Name: "name", Type: "string", In: "body", Required: true, Description: "The name to use."},
			},
		},
		{
			Name:        "retrieve_tags",
			Description: "Retrieve all tags.",
			Method:      "GET",
			Path:        "/tags",
			Params: []Param{
				{Name: "limit", Type: "number", In: "query", Description: "The maximum number of items to return."},
				{Name: "cursor", Type: "string", In: "query", Description: "Opaque pagination cursor from a previous response. Leave blank for the first page."},
			},
		},
		{
			Name:        "retrieve_tag_by_id",
			Description: "Retrieve a tag by ID.",
			Method:      "GET",
			Path:        "/tags/{tag_id}",
			Params: []Param{
				{Name: "tag_id", Type: "string", In: "path", Required: true, Description: "The tag ID to use."},
			},
		},
		{
			Name:        "update_tag_by_id",
			Description: "Updates a tag by its ID.",
			Method:      "PUT",
			Path:        "/tags/{tag_id}",
			Params: []Param{
				{Name: "tag_id", Type: "string", In: "path", Required: true, Description: "The tag ID to use."},
				{Name: "name", Type: "string", In: "body", Required: true, Description: "The name to use."},
			},
		},
		{
			Name:        "delete_tag_by_id",
			Description: "Delete a tag by its ID.",
			Method:      "DELETE",
			Path:        "/tags/{tag_id}",
			Params: []Param{
				{Name: "tag_id", Type: "string", In: "path", Required: true, Description: "The ID of the tag to delete."},
			},
		},
	}
}

// ValidateEndpoint checks a single endpoint entry for basic sanity.
func ValidateEndpoint(e Endpoint) error {
	if e.Name == "" {
		return fmt.Errorf("endpoint has empty name")
	}
	if !allowedMethods[strings.ToUpper(e.Method)] {
		return fmt.Errorf("endpoint %q has unsupported method %q", e.Name, e.Method)
	}
	if !strings.HasPrefix(e.Path, "/") {
		return fmt.Errorf("endpoint %q has invalid path %q", e.Name, e.Path)
	}
	if strings.Contains(e.Path, "..") {
		return fmt.Errorf("endpoint %q has invalid path %q (contains ..)", e.Name, e.Path)
	}
	for _, p := range e.Params {
		switch p.In {
		case "path", "query", "body":
		default:
			return fmt.Errorf("endpoint %q param %q has invalid placement %q", e.Name, p.Name, p.In)
		}
		if p.In == "path" && !strings.Contains(e.Path, "{"+p.Name+"}") {
			return fmt.Errorf("endpoint %q path param %q has no placeholder in %q", e.Name, p.Name, e.Path)
		}
	}
	return nil
}

// ValidateCatalog checks every endpoint and rejects duplicate tool names.
func ValidateCatalog(catalog []Endpoint) error {
	seen := make(map[string]bool, len(catalog))
	for _, e := range catalog {
		if err := ValidateEndpoint(e); err != nil {
			return err
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate endpoint name %q", e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}
