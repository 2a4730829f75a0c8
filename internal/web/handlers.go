package web

import (
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"github.com/hpungsan/tails/internal/errors"
	"github.com/hpungsan/tails/internal/host"
	"github.com/hpungsan/tails/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	session  *ops.Session
	renderer *Renderer
}

func (h *Handlers) page(title string) PageData {
	st := h.session.Status()
	return PageData{
		Title:   title,
		Version: h.renderer.version,
		Scope:   st.Scope,
		Status:  st.Label,
	}
}

// HandleList handles GET /clips, the history filtered by language and text.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	result := h.session.List()
	items := filterItems(result.Items, lang, query)

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, &ops.ListOutput{
			Items:    items,
			Count:    len(items),
			Capacity: result.Capacity,
			Status:   result.Status,
		})
		return
	}

	data := ListPageData{
		PageData:  h.page("Clips"),
		Items:     items,
		Count:     result.Count,
		Capacity:  result.Capacity,
		Languages: languages(result.Items),
		Language:  lang,
		Query:     query,
	}

	// The filter form swaps only the rows
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "list", "clip-rows", data)
		return
	}
	h.renderer.renderPage(w, r, "list", data)
}

// HandleDetail handles GET /clips/{id}, one clip rendered as a code block.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("clip ID is required"))
		return
	}

	clip, err := h.session.Get(ops.GetInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, clip)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData:     h.page(clip.Label),
		Clip:         clip,
		RenderedHTML: renderMarkdown(codeBlock(clip.Text, clip.LanguageID)),
	})
}

// HandleDelete handles DELETE /clips/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("clip ID is required"))
		return
	}

	result := h.session.DeleteByID(r.Context(), id)
	if !result.Deleted {
		h.renderer.renderError(w, r, errors.NewNotFound(id))
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/clips")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": result.Deleted,
			"id":      id,
			"count":   result.Count,
		})
		return
	}

	http.Redirect(w, r, "/clips", http.StatusFound)
}

// HandlePaste handles POST /clips/{id}/paste: the clip goes back on the
// clipboard and the paste command runs.
func (h *Handlers) HandlePaste(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("clip ID is required"))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	clip, err := h.session.Get(ops.GetInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	ed := host.NewStaticEditor(host.Document{
		LanguageID: clip.LanguageID,
		EOL:        host.ParseEOL(r.FormValue("eol")),
	})

	result, err := h.session.Paste(r.Context(), ed, ops.PasteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="action-result">Pasted ` + template.HTMLEscapeString(clip.Label) + `</div>`))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/clips/"+id, http.StatusFound)
}

// HandleClear handles POST /clips/clear, which requires confirm=true.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	result := h.session.Clear(r.Context())

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(fmt.Sprintf(`<div class="action-result">Cleared %d clips</div>`, result.Cleared)))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/clips", http.StatusFound)
}

// filterItems keeps items of lang (when set) whose label contains query,
// case-insensitively.
func filterItems(items []ops.ListItem, lang, query string) []ops.ListItem {
	if lang == "" && query == "" {
		return items
	}
	q := strings.ToLower(query)
	out := make([]ops.ListItem, 0, len(items))
	for _, it := range items {
		if lang != "" && it.LanguageID != lang {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(it.Label), q) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// languages returns the distinct languages of items, sorted.
func languages(items []ops.ListItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if !seen[it.LanguageID] {
			seen[it.LanguageID] = true
			out = append(out, it.LanguageID)
		}
	}
	sort.Strings(out)
	return out
}
