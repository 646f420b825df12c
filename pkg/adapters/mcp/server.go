package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/sanitize"
)

// TreeURI is the resource exposing the current forest.
const TreeURI = "arbor://tree"

// Engine defines the tree operations exposed as MCP tools.
type Engine interface {
	Tree() domain.Tree
	FindNode(id string) (domain.Node, bool)
	AddNode(ctx context.Context, parentID, name string) domain.Tree
	RenameNode(ctx context.Context, id, newName string) domain.Tree
	DeleteNode(ctx context.Context, id string) domain.Tree
	ToggleExpand(ctx context.Context, id string) domain.Tree
}

// MutationResult provides a unified structure across adapters.
type MutationResult struct {
	Tree domain.Tree      `json:"tree" jsonschema_description:"The forest after the command"`
	Diff *domain.TreeDiff `json:"diff" jsonschema_description:"Ids added, removed, renamed or toggled by the command"`
}

// mutationResultSchema describes MutationResult. Nodes nest recursively, so
// the node shape is declared once under $defs and referenced.
var mutationResultSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "tree": {
      "type": "array",
      "description": "The forest after the command",
      "items": {"$ref": "#/$defs/node"}
    },
    "diff": {
      "type": ["object", "null"],
      "description": "Ids added, removed, renamed or toggled by the command",
      "properties": {
        "added": {"type": "array", "items": {"type": "string"}},
        "removed": {"type": "array", "items": {"type": "string"}},
        "renamed": {"type": "array", "items": {"type": "string"}},
        "toggled": {"type": "array", "items": {"type": "string"}}
      }
    }
  },
  "required": ["tree", "diff"],
  "$defs": {
    "node": {
      "type": "object",
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "children": {"type": "array", "items": {"$ref": "#/$defs/node"}},
        "expanded": {"type": "boolean"}
      },
      "required": ["id", "name", "children", "expanded"]
    }
  }
}`)

type nodeArgs struct {
	ID string `json:"id"`
}

type addArgs struct {
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
}

type renameArgs struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Server wraps the arbor Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer

	// mu serializes tool calls; the engine expects a single caller.
	mu sync.Mutex
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server, e.g. to mount it on another transport.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Get the whole forest, including collapsed subtrees."),
	), s.handleGetTree)

	s.mcpServer.AddTool(mcp.NewTool("find_node",
		mcp.WithDescription("Find a node by id anywhere in the forest."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
	), s.handleFindNode)

	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a node. Without parent_id it becomes a new root; otherwise it is appended to the parent's children."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name")),
		mcp.WithString("parent_id", mcp.Description("Parent node ID (optional)")),
		mcp.WithRawOutputSchema(mutationResultSchema),
	), mcp.NewStructuredToolHandler(s.handleAddNode))

	s.mcpServer.AddTool(mcp.NewTool("rename_node",
		mcp.WithDescription("Change the display name of a node."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New display name")),
		mcp.WithRawOutputSchema(mutationResultSchema),
	), mcp.NewStructuredToolHandler(s.handleRenameNode))

	s.mcpServer.AddTool(mcp.NewTool("delete_node",
		mcp.WithDescription("Delete a node and its whole subtree."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
		mcp.WithRawOutputSchema(mutationResultSchema),
	), mcp.NewStructuredToolHandler(s.handleDeleteNode))

	s.mcpServer.AddTool(mcp.NewTool("toggle_node",
		mcp.WithDescription("Flip the expanded flag of a node."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node ID")),
		mcp.WithRawOutputSchema(mutationResultSchema),
	), mcp.NewStructuredToolHandler(s.handleToggleNode))
}

func (s *Server) handleGetTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	tree := s.engine.Tree()
	s.mu.Unlock()

	jsonBytes, err := marshalTree(tree)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleFindNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	node, ok := s.engine.FindNode(id)
	s.mu.Unlock()

	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %s", domain.ErrNodeNotFound, id)), nil
	}
	jsonBytes, _ := json.Marshal(node)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest, args addArgs) (MutationResult, error) {
	name, err := sanitize.Name(args.Name)
	if err != nil {
		slog.Warn("MCP AddNode: Name rejected", "error", err, "size", len(args.Name))
		return MutationResult{}, err
	}
	return s.mutate(args.ParentID, args.ParentID != "", func() domain.Tree {
		return s.engine.AddNode(ctx, args.ParentID, name)
	})
}

func (s *Server) handleRenameNode(ctx context.Context, request mcp.CallToolRequest, args renameArgs) (MutationResult, error) {
	name, err := sanitize.Name(args.Name)
	if err != nil {
		slog.Warn("MCP RenameNode: Name rejected", "error", err, "size", len(args.Name))
		return MutationResult{}, err
	}
	return s.mutate(args.ID, true, func() domain.Tree {
		return s.engine.RenameNode(ctx, args.ID, name)
	})
}

func (s *Server) handleDeleteNode(ctx context.Context, request mcp.CallToolRequest, args nodeArgs) (MutationResult, error) {
	return s.mutate(args.ID, true, func() domain.Tree {
		return s.engine.DeleteNode(ctx, args.ID)
	})
}

func (s *Server) handleToggleNode(ctx context.Context, request mcp.CallToolRequest, args nodeArgs) (MutationResult, error) {
	return s.mutate(args.ID, true, func() domain.Tree {
		return s.engine.ToggleExpand(ctx, args.ID)
	})
}

func (s *Server) mutate(id string, mustExist bool, fn func() domain.Tree) (MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mustExist {
		if _, ok := s.engine.FindNode(id); !ok {
			return MutationResult{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
		}
	}
	before := s.engine.Tree()
	after := fn()
	if after == nil {
		after = domain.Tree{}
	}
	return MutationResult{Tree: after, Diff: domain.Diff(before, after)}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TreeURI, "Current Forest",
		mcp.WithMIMEType("application/json"),
	), s.handleReadTree)
}

func (s *Server) handleReadTree(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.Lock()
	tree := s.engine.Tree()
	s.mu.Unlock()

	jsonBytes, err := marshalTree(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TreeURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func marshalTree(tree domain.Tree) ([]byte, error) {
	if tree == nil {
		tree = domain.Tree{}
	}
	return json.Marshal(tree)
}
