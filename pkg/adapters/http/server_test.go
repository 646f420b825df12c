package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
	arborhttp "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

func newEngine(t *testing.T) *arbor.Engine {
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
	return engine
}

func newHandler(t *testing.T) (http.Handler, *arbor.Engine) {
	engine := newEngine(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return arborhttp.NewHandler(engine, arborhttp.WithLogger(logger)), engine
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeMutation(t *testing.T, w *httptest.ResponseRecorder) arborhttp.MutationResponse {
	t.Helper()
	var resp arborhttp.MutationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := newHandler(t)

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"app":"arbor-http"`)
}

func TestGetTree_Empty(t *testing.T) {
	h, _ := newHandler(t)

	w := do(t, h, http.MethodGet, "/tree", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAddRenameToggleDelete(t *testing.T) {
	h, engine := newHandler(t)

	w := do(t, h, http.MethodPost, "/nodes", `{"name":"Fruits"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeMutation(t, w)
	assert.Equal(t, []string{"n1"}, resp.Diff.Added)
	require.Len(t, resp.Tree, 1)

	w = do(t, h, http.MethodPost, "/nodes", `{"parent_id":"n1","name":"  Apples  "}`)
	require.Equal(t, http.StatusCreated, w.Code)
	node, ok := engine.FindNode("n2")
	require.True(t, ok)
	assert.Equal(t, "Apples", node.Name)

	w = do(t, h, http.MethodPatch, "/nodes/n2", `{"name":"Green Apples"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"n2"}, decodeMutation(t, w).Diff.Renamed)

	w = do(t, h, http.MethodPost, "/nodes/n1/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"n1"}, decodeMutation(t, w).Diff.Toggled)

	w = do(t, h, http.MethodGet, "/nodes/n1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Node
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.Expanded)

	w = do(t, h, http.MethodDelete, "/nodes/n1", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeMutation(t, w)
	assert.ElementsMatch(t, []string{"n1", "n2"}, resp.Diff.Removed)
	assert.Empty(t, resp.Tree)
	assert.Empty(t, engine.Tree())
}

func TestUnknownIDs(t *testing.T) {
	h, _ := newHandler(t)

	tests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/nodes/ghost", ""},
		{http.MethodPatch, "/nodes/ghost", `{"name":"x"}`},
		{http.MethodDelete, "/nodes/ghost", ""},
		{http.MethodPost, "/nodes/ghost/toggle", ""},
		{http.MethodPost, "/nodes", `{"parent_id":"ghost","name":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Contains(t, w.Body.String(), "node not found")
		})
	}
}

func TestBadRequests(t *testing.T) {
	h, engine := newHandler(t)
	engine.AddNode(context.Background(), "", "Root")

	tests := []struct {
		name, method, path, body string
	}{
		{"malformed add", http.MethodPost, "/nodes", `{`},
		{"empty name", http.MethodPost, "/nodes", `{"name":"   "}`},
		{"malformed rename", http.MethodPatch, "/nodes/n1", `nope`},
		{"empty rename", http.MethodPatch, "/nodes/n1", `{"name":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Equal(t, 1, domain.Count(engine.Tree()))
}

func TestMetricsHandler(t *testing.T) {
	engine := newEngine(t)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "arbor_tree_nodes 0\n")
	})

	h := arborhttp.NewHandler(engine, arborhttp.WithMetricsHandler(metrics))
	w := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "arbor_tree_nodes")

	h = arborhttp.NewHandler(engine)
	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents(t *testing.T) {
	h, _ := newHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(prefix string) string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, lines.Err())
		return ""
	}

	waitFor("data: connected")

	post, err := http.Post(srv.URL+"/nodes", "application/json", strings.NewReader(`{"name":"Fruits"}`))
	require.NoError(t, err)
	post.Body.Close()

	waitFor("event: diff")
	data := waitFor("data: ")
	assert.JSONEq(t, `{"added":["n1"]}`, strings.TrimPrefix(data, "data: "))
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := arborhttp.NewStreamManager()
	ch, cancel := sm.Subscribe()

	for i := 0; i < 20; i++ {
		sm.Broadcast("msg")
	}
	assert.Len(t, ch, 10)

	cancel()
	cancel()
	for range ch {
	}
}
