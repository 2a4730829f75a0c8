package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tails/internal/config"
	"github.com/hpungsan/tails/internal/host"
	"github.com/hpungsan/tails/internal/ops"
	"github.com/hpungsan/tails/internal/state"
)

type testEnv struct {
	h         *Handlers
	clipboard *host.MemoryClipboard
	commander *host.RecordingCommander
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.PasteCommand = "paste"

	env := &testEnv{
		clipboard: host.NewMemoryClipboard(""),
		commander: &host.RecordingCommander{},
	}
	session := ops.NewSession(ops.Deps{
		Config:    cfg,
		Backend:   state.NewMemory(),
		Scope:     "web-test",
		Clipboard: env.clipboard,
		Commander: env.commander,
		Status:    &host.RecordingStatus{},
		BaseDir:   t.TempDir(),
	})
	if err := session.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	renderer, err := NewRenderer(templateSub, "test")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	env.h = &Handlers{session: session, renderer: renderer}
	return env
}

// seedClip captures text and returns the clip ID.
func seedClip(t *testing.T, env *testEnv, lang, text string) string {
	t.Helper()
	out, err := env.h.session.Capture(context.Background(), text, host.Document{
		LanguageID: lang,
		EOL:        "\n",
		Path:       "/src/sample." + lang,
	})
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if !out.Added {
		t.Fatalf("Capture(%q) not added: %s", text, out.Reason)
	}
	return out.ID
}

// --- HandleList ---

func TestHandleList_Default(t *testing.T) {
	env := setupTest(t)
	seedClip(t, env, "go", "fmt.Println(value)")

	req := httptest.NewRequest("GET", "/clips", nil)
	rec := httptest.NewRecorder()
	env.h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "fmt.Println(value)") {
		t.Error("expected clip label in response")
	}
	if !strings.Contains(body, "<title>Clips") {
		t.Error("expected page title 'Clips' in response")
	}
	if !strings.Contains(body, "web-test") {
		t.Error("expected scope in response")
	}
}

func TestHandleList_Empty(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest("GET", "/clips", nil)
	rec := httptest.NewRecorder()
	env.h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No clips found") {
		t.Error("expected empty state message")
	}
}

func TestHandleList_LanguageFilter(t *testing.T) {
	env := setupTest(t)
	seedClip(t, env, "go", "return goValue")
	seedClip(t, env, "python", "return pyValue")

	req := httptest.NewRequest("GET", "/clips?lang=python", nil)
	rec := httptest.NewRecorder()
	env.h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "pyValue") {
		t.Error("expected python clip in filtered results")
	}
	if strings.Contains(body, "goValue") {
		t.Error("did not expect go clip in filtered results")
	}
}

func TestHandleList_QueryFilterIsCaseInsensitive(t *testing.T) {
	env := setupTest(t)
	seedClip(t, env, "go", "log.Fatal(err)")
	seedClip(t, env, "go", "return nil")

	req := httptest.NewRequest("GET", "/clips?q=FATAL", nil)
	rec := httptest.NewRecorder()
	env.h.HandleList(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "log.Fatal(err)") {
		t.Error("expected matching clip")
	}
	if strings.Contains(body, "return nil") {
		t.Error("did not expect non-matching clip")
	}
}

func TestHandleList_JSON(t *testing.T) {
	env := setupTest(t)
	seedClip(t, env, "go", "first clip")
	seedClip(t, env, "go", "second clip")

	req := httptest.NewRequest("GET", "/clips", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	env.h.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out ops.ListOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Equal(t, 2, out.Count)
	require.Equal(t, "second clip", out.Items[0].Label)
	require.Equal(t, 20, out.Capacity)
}

func TestHandleList_HtmxReturnsContentOnly(t *testing.T) {
	env := setupTest(t)
	seedClip(t, env, "go", "htmx clip")

	req := httptest.NewRequest("GET", "/clips", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	env.h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("htmx response should not contain full layout")
	}
	if !strings.Contains(body, "htmx clip") {
		t.Error("htmx response should contain clip data")
	}
}

func TestHandleList_HtmxTargetResults_ReturnsRows(t *testing.T) {
	env := setupTest(t)
	seedClip(t, env, "go", "row clip")

	req := httptest.NewRequest("GET", "/clips?q=row", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "results")
	rec := httptest.NewRecorder()
	env.h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<form") {
		t.Error("rows fragment should not contain the filter form")
	}
	if !strings.Contains(body, "row clip") {
		t.Error("rows fragment should contain the clip")
	}
}

// --- HandleDetail ---

func TestHandleDetail_Found(t *testing.T) {
	env := setupTest(t)
	id := seedClip(t, env, "go", "if err != nil {\n\treturn err\n}")

	req := httptest.NewRequest("GET", "/clips/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	env.h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `class="language-go"`) {
		t.Error("expected a code block tagged with the clip language")
	}
	if !strings.Contains(body, "return err") {
		t.Error("expected clip text in detail page")
	}
	if !strings.Contains(body, id) {
		t.Error("expected clip ID in detail page")
	}
}

func TestHandleDetail_EscapesHTML(t *testing.T) {
	env := setupTest(t)
	id := seedClip(t, env, "html", "<script>alert(1)</script>")

	req := httptest.NewRequest("GET", "/clips/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	env.h.HandleDetail(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
}

func TestHandleDetail_JSON(t *testing.T) {
	env := setupTest(t)
	id := seedClip(t, env, "go", "json detail")

	req := httptest.NewRequest("GET", "/clips/"+id, nil)
	req.SetPathValue("id", id)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	env.h.HandleDetail(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out ops.GetOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Equal(t, id, out.ID)
	require.Equal(t, "json detail", out.Text)
}

func TestHandleDetail_NotFound(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest("GET", "/clips/NONEXISTENT", nil)
	req.SetPathValue("id", "NONEXISTENT")
	rec := httptest.NewRecorder()
	env.h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDetail_EmptyID(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest("GET", "/clips/", nil)
	req.SetPathValue("id", "")
	rec := httptest.NewRecorder()
	env.h.HandleDetail(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// --- HandleDelete ---

func TestHandleDelete_HtmxRequest(t *testing.T) {
	env := setupTest(t)
	id := seedClip(t, env, "go", "delete me")

	req := httptest.NewRequest("DELETE", "/clips/"+id, nil)
	req.SetPathValue("id", id)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	env.h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/clips" {
		t.Errorf("HX-Redirect = %q, want /clips", got)
	}
	if n := env.h.session.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
}

func TestHandleDelete_JSONRequest(t *testing.T) {
	env := setupTest(t)
	id := seedClip(t, env, "go", "delete json")

	req := httptest.NewRequest("DELETE", "/clips/"+id, nil)
	req.SetPathValue("id", id)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	env.h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if resp["deleted"] != true {
		t.Errorf("deleted = %v, want true", resp["deleted"])
	}
	if resp["id"] != id {
		t.Errorf("id = %v, want %s", resp["id"], id)
	}
}

func TestHandleDelete_DefaultRedirect(t *testing.T) {
	env := setupTest(t)
	id := seedClip(t, env, "go", "delete redirect")

	req := httptest.NewRequest("DELETE", "/clips/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	env.h.HandleDelete(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/clips" {
		t.Errorf("Location = %q, want /clips", loc)
	}
}

func TestHandleDelete_NotFound_JSON(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest("DELETE", "/clips/MISSING", nil)
	req.SetPathValue("id", "MISSING")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	env.h.HandleDelete(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "NOT_FOUND", resp["error"]["code"])
}

// --- HandlePaste ---

func TestHandlePaste_WritesClipboardAndRunsCommand(t *testing.T) {
	env := setupTest(t)
	id := seedClip(t, env, "go", "a := 1\nb := 2")

	form := url.Values{"eol": {"crlf"}}
	req := httptest.NewRequest("POST", "/clips/"+id+"/paste", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	env.h.HandlePaste(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out ops.PasteOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.True(t, out.Pasted)
	require.Equal(t, "a := 1\r\nb := 2\r\n", env.clipboard.Text())
	require.Equal(t, []string{"paste"}, env.commander.Calls())
}

func TestHandlePaste_HtmxFragment(t *testing.T) {
	env := setupTest(t)
	id := seedClip(t, env, "go", "fragment paste")

	req := httptest.NewRequest("POST", "/clips/"+id+"/paste", nil)
	req.SetPathValue("id", id)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	env.h.HandlePaste(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Pasted fragment paste")
}

func TestHandlePaste_NotFound(t *testing.T) {
	env := setupTest(t)
	seedClip(t, env, "go", "some clip")

	req := httptest.NewRequest("POST", "/clips/MISSING/paste", nil)
	req.SetPathValue("id", "MISSING")
	rec := httptest.NewRecorder()
	env.h.HandlePaste(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// --- HandleClear ---

func postClear(env *testEnv, confirm string, headers map[string]string) *httptest.ResponseRecorder {
	form := url.Values{}
	if confirm != "" {
		form.Set("confirm", confirm)
	}
	req := httptest.NewRequest("POST", "/clips/clear", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.h.HandleClear(rec, req)
	return rec
}

func TestHandleClear_MissingConfirm(t *testing.T) {
	env := setupTest(t)
	seedClip(t, env, "go", "kept clip")

	rec := postClear(env, "", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if n := env.h.session.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}

func TestHandleClear_ConfirmFalse(t *testing.T) {
	env := setupTest(t)

	rec := postClear(env, "false", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleClear_DefaultRedirect(t *testing.T) {
	env := setupTest(t)
	seedClip(t, env, "go", "cleared clip")

	rec := postClear(env, "true", nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if n := env.h.session.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
}

func TestHandleClear_JSONResponse(t *testing.T) {
	env := setupTest(t)
	seedClip(t, env, "go", "first clip")
	seedClip(t, env, "go", "second clip")

	rec := postClear(env, "true", map[string]string{"Accept": "application/json"})

	require.Equal(t, http.StatusOK, rec.Code)
	var out ops.ClearOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Equal(t, 2, out.Cleared)
}

func TestHandleClear_HtmxResponse(t *testing.T) {
	env := setupTest(t)
	seedClip(t, env, "go", "htmx cleared")

	rec := postClear(env, "true", map[string]string{"HX-Request": "true"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Cleared 1 clips")
}

// --- Error rendering ---

func TestErrorRendering_HtmxFragment(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest("GET", "/clips/MISSING", nil)
	req.SetPathValue("id", "MISSING")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	env.h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `class="error-message"`) {
		t.Error("expected error fragment")
	}
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("htmx error should not contain full layout")
	}
}

func TestErrorRendering_FullErrorPage(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest("GET", "/clips/MISSING", nil)
	req.SetPathValue("id", "MISSING")
	rec := httptest.NewRecorder()
	env.h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("expected full error page")
	}
	if !strings.Contains(body, "clip not found: MISSING") {
		t.Error("expected error message on page")
	}
}

// --- Routing ---

func TestNewHandler_RoutesAndHeaders(t *testing.T) {
	env := setupTest(t)
	id := seedClip(t, env, "go", "routed clip")

	handler, err := NewHandler(env.h.session, "test")
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/", http.StatusFound},
		{"GET", "/clips", http.StatusOK},
		{"GET", "/clips/" + id, http.StatusOK},
		{"GET", "/static/style.css", http.StatusOK},
		{"PUT", "/clips", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.want, rec.Code)
			require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		})
	}
}

// --- Helpers ---

func TestCodeBlock_FenceOutgrowsBackticks(t *testing.T) {
	got := codeBlock("x := `a```b`", "go")
	require.True(t, strings.HasPrefix(got, "````go\n"), got)
	require.True(t, strings.HasSuffix(got, "\n````\n"), got)
}

func TestFormatTime(t *testing.T) {
	require.Equal(t, "2023-11-14 22:13:20", formatTime(1_700_000_000_000))
}

func TestFilterItems(t *testing.T) {
	items := []ops.ListItem{
		{Label: "Alpha", LanguageID: "go"},
		{Label: "beta", LanguageID: "python"},
		{Label: "alphabet", LanguageID: "python"},
	}

	require.Len(t, filterItems(items, "", ""), 3)
	require.Len(t, filterItems(items, "python", ""), 2)
	require.Len(t, filterItems(items, "", "ALPHA"), 2)
	require.Equal(t, "alphabet", filterItems(items, "python", "alpha")[0].Label)
	require.Equal(t, []string{"go", "python"}, languages(items))
}
