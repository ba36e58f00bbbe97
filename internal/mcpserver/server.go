// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Mailcraft editor to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mailcraft/internal/assets"
	"github.com/starford/mailcraft/internal/emailservice"
	"github.com/starford/mailcraft/internal/models"
)

// Server wraps the MCP server with Mailcraft tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *emailservice.Service
	assets   *assets.Dir
	handlers map[string]server.ToolHandlerFunc
}

// New creates a new MCP server with all Mailcraft tools registered.
// dir may be nil, in which case upload_image reports an error.
func New(svc *emailservice.Service, dir *assets.Dir) *Server {
	s := &Server{svc: svc, assets: dir, handlers: map[string]server.ToolHandlerFunc{}}

	s.mcp = server.NewMCPServer(
		"Mailcraft",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.addTool(mcp.NewTool("get_document",
		mcp.WithDescription("Return the email being edited: title, ordered components, selection and preview mode."),
	), s.getDocument)

	s.addTool(mcp.NewTool("add_component",
		mcp.WithDescription("Add a component just before the footer. Read the component catalog first "+
			"via get_component_catalog or the "+ComponentCatalogURI+" resource."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Component type: text, image, button, divider, spacer, columns")),
		mcp.WithObject("props", mcp.Description("Initial props for the component")),
	), s.addComponent)

	s.addTool(mcp.NewTool("update_component",
		mcp.WithDescription("Merge props into a component. Keys not given are kept."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Component id")),
		mcp.WithObject("props", mcp.Required(), mcp.Description("Props to set")),
	), s.updateComponent)

	s.addTool(mcp.NewTool("remove_component",
		mcp.WithDescription("Delete a component. The header and footer cannot be removed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Component id")),
	), s.removeComponent)

	s.addTool(mcp.NewTool("reorder_components",
		mcp.WithDescription("Move a component to the position currently held by another."),
		mcp.WithString("moved_id", mcp.Required(), mcp.Description("Component to move")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("Component whose position it takes")),
	), s.reorderComponents)

	s.addTool(mcp.NewTool("duplicate_component",
		mcp.WithDescription("Insert a copy of a component right after it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Component id")),
	), s.duplicateComponent)

	s.addTool(mcp.NewTool("set_title",
		mcp.WithDescription("Rename the email. The title becomes the export file name."),
		mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
	), s.setTitle)

	s.addTool(mcp.NewTool("save_email",
		mcp.WithDescription("Save a snapshot of the current email to the saved-emails list."),
	), s.saveEmail)

	s.addTool(mcp.NewTool("load_email",
		mcp.WithDescription("Replace the current email with a saved one."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Saved email id")),
	), s.loadEmail)

	s.addTool(mcp.NewTool("list_saved_emails",
		mcp.WithDescription("List saved emails, newest first, or search them when query is given."),
		mcp.WithString("query", mcp.Description("Optional full-text query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.listSavedEmails)

	s.addTool(mcp.NewTool("export_html",
		mcp.WithDescription("Render the current email as a complete, table-based HTML document."),
	), s.exportHTML)

	s.addTool(mcp.NewTool("get_component_catalog",
		mcp.WithDescription("Returns the component types and the props each understands."),
	), s.getComponentCatalog)

	s.addTool(mcp.NewTool("upload_image",
		mcp.WithDescription("Store an image from an http(s) URL or a base64 data URI and return the URL "+
			"to use as an image src or header logo."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:image/...;base64,... URI")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when empty")),
	), s.uploadImage)

	s.mcp.AddResource(
		mcp.NewResource(ComponentCatalogURI, "Component Catalog",
			mcp.WithResourceDescription("Component types and props understood by the exporter."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readComponentCatalogResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) addTool(tool mcp.Tool, h server.ToolHandlerFunc) {
	s.handlers[tool.Name] = h
	s.mcp.AddTool(tool, h)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// propsArg reads an object argument, accepting a JSON-encoded string as well.
func propsArg(req mcp.CallToolRequest, key string) (models.Props, error) {
	switch v := req.GetArguments()[key].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return models.Props(v), nil
	case string:
		var p models.Props
		if err := json.Unmarshal([]byte(v), &p); err != nil {
			return nil, fmt.Errorf("%s: invalid JSON object: %w", key, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%s: expected an object", key)
	}
}

func (s *Server) getDocument(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Document(ctx))
}

func (s *Server) addComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	props, err := propsArg(req, "props")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.AddComponent(ctx, typ, props)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c)
}

func (s *Server) updateComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	props, err := propsArg(req, "props")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if props == nil {
		return mcp.NewToolResultError("props is required"), nil
	}
	c, err := s.svc.UpdateComponent(ctx, id, props)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c)
}

func (s *Server) removeComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.RemoveComponent(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", id)), nil
}

func (s *Server) reorderComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	moved, err := req.RequireString("moved_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := req.RequireString("target_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.ReorderComponents(ctx, moved, target); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Document(ctx).Components)
}

func (s *Server) duplicateComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.DuplicateComponent(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c)
}

func (s *Server) setTitle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.svc.SetTitle(ctx, title)
	return mcp.NewToolResultText(fmt.Sprintf("title: %s", title)), nil
}

func (s *Server) saveEmail(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	saved, err := s.svc.SaveEmail(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"id":        saved.ID,
		"title":     saved.Title,
		"createdAt": saved.CreatedAt,
	})
}

func (s *Server) loadEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.svc.LoadEmail(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

func (s *Server) listSavedEmails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	if q := req.GetString("query", ""); q != "" {
		hits, err := s.svc.Search(ctx, q, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(hits)
	}
	items, total, err := s.svc.ListEmails(ctx, limit, 0, "", "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"emails": items, "total": total})
}

func (s *Server) exportHTML(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.svc.Export(ctx).HTML), nil
}

func (s *Server) getComponentCatalog(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ComponentCatalog), nil
}

func (s *Server) readComponentCatalogResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ComponentCatalogURI,
			MIMEType: "text/markdown",
			Text:     ComponentCatalog,
		},
	}, nil
}

var errNoAssets = errors.New("image uploads are not configured")
