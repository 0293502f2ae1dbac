package http

import (
	"net/http"

	"github.com/goliatone/go-site/internal/content"
)

type entrySummary struct {
	*content.Entry
	URL string `json:"url"`
}

type entryListResponse struct {
	Kind    content.Kind   `json:"kind"`
	Entries []entrySummary `json:"entries"`
}

func (api *SiteAPI) registerContentRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "content")
	mux.HandleFunc("GET "+root+"/{kind}", api.handleContentList)
	mux.HandleFunc("GET "+root+"/{kind}/{slug}", api.handleContentGet)
}

func (api *SiteAPI) handleContentList(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	kind, err := content.ParseKind(r.PathValue("kind"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	entries, err := api.content.Recent(r.Context(), kind, parseIntQuery(r.URL.Query().Get("limit"), 0))
	if err != nil {
		api.fail(w, r, err)
		return
	}

	resp := entryListResponse{Kind: kind, Entries: make([]entrySummary, 0, len(entries))}
	for _, entry := range entries {
		summary := *entry
		summary.Body = ""
		url, _ := api.content.URL(entry.Kind, entry.Slug)
		resp.Entries = append(resp.Entries, entrySummary{Entry: &summary, URL: url})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (api *SiteAPI) handleContentGet(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	kind, err := content.ParseKind(r.PathValue("kind"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	entry, err := api.content.Get(r.Context(), kind, r.PathValue("slug"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	rendered, err := api.content.Render(r.Context(), entry)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (api *SiteAPI) handleHighlightCSS(w http.ResponseWriter, r *http.Request) {
	if api.markdown == nil {
		unavailable(w)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := api.markdown.WriteCSS(w); err != nil {
		api.logger.WithContext(r.Context()).Error("http.highlight_css.failed", "error", err)
	}
}
