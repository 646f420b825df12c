package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

func newTestServer(t *testing.T) (*Server, *arbor.Engine) {
	t.Helper()
	n := 0
	gen := ports.IDGeneratorFunc(func() string {
		n++
		return fmt.Sprintf("n%d", n)
	})
	engine, err := arbor.New(memory.NewStore(), arbor.WithIDGenerator(gen))
	require.NoError(t, err)
	_, err = engine.Initialize(context.Background())
	require.NoError(t, err)
	return NewServer(engine), engine
}

func call(t *testing.T, s *Server, tool string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	registered := s.mcpServer.GetTool(tool)
	require.NotNil(t, registered, "tool %s not registered", tool)

	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args

	res, err := registered.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestToolsRegistered(t *testing.T) {
	s, _ := newTestServer(t)
	tools := s.mcpServer.ListTools()
	for _, name := range []string{"get_tree", "find_node", "add_node", "rename_node", "delete_node", "toggle_node"} {
		assert.Contains(t, tools, name)
	}
}

func TestMutationToolsOutputSchema(t *testing.T) {
	s, _ := newTestServer(t)

	for _, name := range []string{"add_node", "rename_node", "delete_node", "toggle_node"} {
		t.Run(name, func(t *testing.T) {
			registered := s.mcpServer.GetTool(name)
			require.NotNil(t, registered)

			data, err := json.Marshal(registered.Tool)
			require.NoError(t, err)

			var decoded struct {
				OutputSchema struct {
					Type string                     `json:"type"`
					Defs map[string]json.RawMessage `json:"$defs"`
				} `json:"outputSchema"`
			}
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, "object", decoded.OutputSchema.Type)
			assert.Contains(t, decoded.OutputSchema.Defs, "node")
		})
	}
}

func TestAddNode_UnknownParent(t *testing.T) {
	s, engine := newTestServer(t)

	res := call(t, s, "add_node", map[string]any{"name": "Orphan", "parent_id": "ghost"})
	require.True(t, res.IsError)
	assert.Contains(t, text(t, res), domain.ErrNodeNotFound.Error())
	assert.Contains(t, text(t, res), "ghost")
	assert.Empty(t, engine.Tree())
}

func TestToolFlow(t *testing.T) {
	s, engine := newTestServer(t)

	res := call(t, s, "add_node", map[string]any{"name": "Fruits"})
	require.False(t, res.IsError, text(t, res))
	var out MutationResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, []string{"n1"}, out.Diff.Added)
	assert.Contains(t, text(t, res), `"children":[]`)

	res = call(t, s, "add_node", map[string]any{"name": "Apples", "parent_id": "n1"})
	require.False(t, res.IsError)

	res = call(t, s, "rename_node", map[string]any{"id": "n2", "name": "Pears"})
	require.False(t, res.IsError)
	node, ok := engine.FindNode("n2")
	require.True(t, ok)
	assert.Equal(t, "Pears", node.Name)

	res = call(t, s, "toggle_node", map[string]any{"id": "n1"})
	require.False(t, res.IsError)
	node, _ = engine.FindNode("n1")
	assert.False(t, node.Expanded)

	res = call(t, s, "find_node", map[string]any{"id": "n2"})
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"name":"Pears"`)

	res = call(t, s, "get_tree", nil)
	require.False(t, res.IsError)
	var tree domain.Tree
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &tree))
	assert.Equal(t, 2, domain.Count(tree))

	res = call(t, s, "delete_node", map[string]any{"id": "n1"})
	require.False(t, res.IsError)
	assert.Empty(t, engine.Tree())
}

func TestToolErrors(t *testing.T) {
	s, engine := newTestServer(t)

	tests := []struct {
		tool string
		args map[string]any
	}{
		{"find_node", map[string]any{"id": "ghost"}},
		{"find_node", map[string]any{}},
		{"rename_node", map[string]any{"id": "ghost", "name": "x"}},
		{"delete_node", map[string]any{"id": "ghost"}},
		{"toggle_node", map[string]any{"id": "ghost"}},
		{"add_node", map[string]any{"name": "x", "parent_id": "ghost"}},
		{"add_node", map[string]any{"name": "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			res := call(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError)
		})
	}
	assert.Empty(t, engine.Tree())
}

func TestReadTreeResource(t *testing.T) {
	s, engine := newTestServer(t)
	engine.AddNode(context.Background(), "", "Root")

	contents, err := s.handleReadTree(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, TreeURI, tc.URI)
	assert.JSONEq(t, `[{"id":"n1","name":"Root","children":[],"expanded":true}]`, tc.Text)
}
