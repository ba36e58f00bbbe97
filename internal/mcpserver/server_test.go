package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/mailcraft/internal/assets"
	"github.com/starford/mailcraft/internal/canvas"
	"github.com/starford/mailcraft/internal/editor"
	"github.com/starford/mailcraft/internal/emailservice"
	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/storage"
	"github.com/starford/mailcraft/internal/testutil"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func testServer(t *testing.T) (*Server, *assets.Dir) {
	t.Helper()

	kv := storage.NewMemory()
	db := testutil.TestDB(t)
	dir, err := assets.NewDir(filepath.Join(t.TempDir(), "assets"))
	if err != nil {
		t.Fatal(err)
	}

	logger := testutil.Logger()
	ed := editor.New(kv, editor.WithLogger(logger))
	svc := emailservice.NewService(ed, canvas.New(ed), db, kv, nil, logger)
	return New(svc, dir), dir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	h, ok := srv.handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decode[T any](t *testing.T, r *mcp.CallToolResult) T {
	t.Helper()
	var v T
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	if err := json.Unmarshal([]byte(resultText(r)), &v); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	return v
}

func TestToolsRegistered(t *testing.T) {
	srv, _ := testServer(t)
	want := []string{
		"get_document", "add_component", "update_component", "remove_component",
		"reorder_components", "duplicate_component", "set_title", "save_email",
		"load_email", "list_saved_emails", "export_html", "get_component_catalog", "upload_image",
	}
	if len(srv.handlers) != len(want) {
		t.Errorf("registered %d tools, want %d", len(srv.handlers), len(want))
	}
	for _, name := range want {
		if _, ok := srv.handlers[name]; !ok {
			t.Errorf("tool %s not registered", name)
		}
	}
}

func TestAddAndGetDocument(t *testing.T) {
	srv, _ := testServer(t)

	c := decode[models.Component](t, callTool(t, srv, "add_component", map[string]any{
		"type":  "text",
		"props": map[string]any{"content": "Olá"},
	}))
	if c.Type != models.TypeText || c.Props["content"] != "Olá" {
		t.Errorf("added = %+v", c)
	}

	st := decode[editor.State](t, callTool(t, srv, "get_document", nil))
	if len(st.Components) != 3 || st.Components[1].ID != c.ID {
		t.Errorf("document = %+v, want text between header and footer", st.Components)
	}
}

func TestAddComponentPropsAsJSONString(t *testing.T) {
	srv, _ := testServer(t)
	c := decode[models.Component](t, callTool(t, srv, "add_component", map[string]any{
		"type":  "button",
		"props": `{"text":"Comprar"}`,
	}))
	if c.Props["text"] != "Comprar" {
		t.Errorf("props = %+v", c.Props)
	}

	r := callTool(t, srv, "add_component", map[string]any{"type": "button", "props": "{broken"})
	if !r.IsError {
		t.Error("expected error for invalid props JSON")
	}
}

func TestAddComponentUnknownType(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "add_component", map[string]any{"type": "carousel"})
	if !r.IsError {
		t.Fatal("expected error for unknown type")
	}
	if !strings.Contains(resultText(r), "invalid component type") {
		t.Errorf("error = %q", resultText(r))
	}
}

func TestUpdateComponent(t *testing.T) {
	srv, _ := testServer(t)
	c := decode[models.Component](t, callTool(t, srv, "add_component", map[string]any{"type": "spacer"}))

	got := decode[models.Component](t, callTool(t, srv, "update_component", map[string]any{
		"id":    c.ID,
		"props": map[string]any{"height": 40},
	}))
	if got.Props["height"] != float64(40) && got.Props["height"] != 40 {
		t.Errorf("height = %v", got.Props["height"])
	}

	if r := callTool(t, srv, "update_component", map[string]any{"id": "missing", "props": map[string]any{"a": 1}}); !r.IsError {
		t.Error("expected error for missing component")
	}
	if r := callTool(t, srv, "update_component", map[string]any{"id": c.ID}); !r.IsError {
		t.Error("expected error when props are missing")
	}
}

func TestFixedComponentsAreProtected(t *testing.T) {
	srv, _ := testServer(t)
	st := decode[editor.State](t, callTool(t, srv, "get_document", nil))
	header := st.Components[0].ID

	for _, name := range []string{"remove_component", "duplicate_component"} {
		r := callTool(t, srv, name, map[string]any{"id": header})
		if !r.IsError {
			t.Errorf("%s on header should fail", name)
		}
	}
}

func TestReorderAndDuplicate(t *testing.T) {
	srv, _ := testServer(t)
	a := decode[models.Component](t, callTool(t, srv, "add_component", map[string]any{"type": "text"}))
	b := decode[models.Component](t, callTool(t, srv, "add_component", map[string]any{"type": "image"}))

	order := decode[[]models.Component](t, callTool(t, srv, "reorder_components", map[string]any{
		"moved_id": b.ID, "target_id": a.ID,
	}))
	if order[1].ID != b.ID || order[2].ID != a.ID {
		t.Errorf("order after reorder = %v", order)
	}

	dup := decode[models.Component](t, callTool(t, srv, "duplicate_component", map[string]any{"id": a.ID}))
	if dup.ID == a.ID || dup.Type != models.TypeText {
		t.Errorf("duplicate = %+v", dup)
	}

	r := callTool(t, srv, "remove_component", map[string]any{"id": dup.ID})
	if r.IsError || resultText(r) != "removed: "+dup.ID {
		t.Errorf("remove = %q", resultText(r))
	}
}

func TestSaveListLoad(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "set_title", map[string]any{"title": "Boas-vindas"})
	callTool(t, srv, "add_component", map[string]any{"type": "text", "props": map[string]any{"content": "bem-vindo ao clube"}})

	saved := decode[map[string]any](t, callTool(t, srv, "save_email", nil))
	id, _ := saved["id"].(string)
	if id == "" || saved["title"] != "Boas-vindas" {
		t.Fatalf("saved = %+v", saved)
	}

	list := decode[struct {
		Emails []emailservice.EmailListItem `json:"emails"`
		Total  int                          `json:"total"`
	}](t, callTool(t, srv, "list_saved_emails", nil))
	if list.Total != 1 || list.Emails[0].ID != id {
		t.Errorf("list = %+v", list)
	}

	hits := decode[[]emailservice.SearchHit](t, callTool(t, srv, "list_saved_emails", map[string]any{"query": "Boas"}))
	if len(hits) != 1 || hits[0].ID != id {
		t.Errorf("search = %+v", hits)
	}

	callTool(t, srv, "set_title", map[string]any{"title": "Outro"})
	st := decode[editor.State](t, callTool(t, srv, "load_email", map[string]any{"id": id}))
	if st.Title != "Boas-vindas" {
		t.Errorf("loaded title = %q", st.Title)
	}

	if r := callTool(t, srv, "load_email", map[string]any{"id": "nope"}); !r.IsError {
		t.Error("expected error for unknown saved email")
	}
}

func TestExportHTML(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "set_title", map[string]any{"title": "Promo"})
	html := resultText(callTool(t, srv, "export_html", nil))
	if !strings.HasPrefix(html, "<!DOCTYPE html>") || !strings.Contains(html, "<title>Promo</title>") {
		t.Errorf("export = %.200q", html)
	}
}

func TestComponentCatalog(t *testing.T) {
	srv, _ := testServer(t)
	text := resultText(callTool(t, srv, "get_component_catalog", nil))
	if text != ComponentCatalog {
		t.Error("catalog tool should return ComponentCatalog")
	}

	contents, err := srv.readComponentCatalogResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != ComponentCatalogURI || tc.MIMEType != "text/markdown" {
		t.Errorf("resource = %+v", contents[0])
	}
}

func TestUploadImage_DataURI(t *testing.T) {
	srv, dir := testServer(t)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)

	a := decode[assets.Asset](t, callTool(t, srv, "upload_image", map[string]any{"url": uri, "filename": "logo.png"}))
	if a.URL != "/assets/logo.png" {
		t.Errorf("url = %q", a.URL)
	}
	if _, err := os.Stat(filepath.Join(dir.Root(), "logo.png")); err != nil {
		t.Errorf("file not stored: %v", err)
	}

	r := callTool(t, srv, "upload_image", map[string]any{"url": uri, "filename": "logo.png"})
	if !r.IsError {
		t.Error("expected error when the file already exists")
	}
}

func TestUploadImage_Rejections(t *testing.T) {
	srv, _ := testServer(t)

	cases := map[string]string{
		"pdf mime":    "data:application/pdf;base64,JVBERi0=",
		"not base64":  "data:image/png,plain",
		"bad scheme":  "ftp://example.com/a.png",
		"wrong bytes": "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello")),
	}
	for name, uri := range cases {
		if r := callTool(t, srv, "upload_image", map[string]any{"url": uri}); !r.IsError {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestUploadImage_LoopbackBlocked(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer ts.Close()

	srv, _ := testServer(t)
	r := callTool(t, srv, "upload_image", map[string]any{"url": ts.URL + "/a.png"})
	if !r.IsError || !strings.Contains(resultText(r), "loopback") {
		t.Errorf("result = %q, want loopback refusal", resultText(r))
	}
}

func TestUploadImage_WithoutAssetDir(t *testing.T) {
	srv, _ := testServer(t)
	srv.assets = nil
	if r := callTool(t, srv, "upload_image", map[string]any{"url": "data:image/png;base64,AA=="}); !r.IsError {
		t.Error("expected error without an asset directory")
	}
}

func TestFilenameFromURL(t *testing.T) {
	if got := filenameFromURL("https://cdn.example.com/img/banner.jpg?v=2", ".png"); got != "banner.jpg" {
		t.Errorf("filenameFromURL = %q", got)
	}
	got := filenameFromURL("https://cdn.example.com/img/", ".webp")
	if !strings.HasSuffix(got, ".webp") {
		t.Errorf("fallback name = %q", got)
	}
	got = filenameFromURL("data:image/gif;base64,R0lG", ".gif")
	if !strings.HasSuffix(got, ".gif") {
		t.Errorf("data uri name = %q", got)
	}
}
