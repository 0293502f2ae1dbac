package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	contentcmd "github.com/goliatone/go-site/internal/commands/content"
	submissioncmd "github.com/goliatone/go-site/internal/commands/submissions"
	"github.com/goliatone/go-site/internal/content"
	"github.com/goliatone/go-site/internal/markdown"
	"github.com/goliatone/go-site/internal/submissions"
)

type renderPayload struct {
	Markdown string `json:"markdown"`
}

type renderResponse struct {
	Nodes     []markdown.Node `json:"nodes"`
	HTML      string          `json:"html"`
	Formatted string          `json:"formatted"`
}

type statusPayload struct {
	Status string `json:"status"`
}

type flagPayload struct {
	Enabled *bool `json:"enabled"`
}

func (api *SiteAPI) registerAdminRoutes(mux *http.ServeMux, base string) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, api.requireAdmin(fn))
	}
	handle("POST "+joinPath(base, "render"), api.handleRender)
	handle("GET "+joinPath(base, "submissions")+"/{kind}", api.handleSubmissionList)
	handle("GET "+joinPath(base, "submissions")+"/{kind}/{id}", api.handleSubmissionGet)
	handle("PATCH "+joinPath(base, "submissions")+"/{kind}/{id}", api.handleSubmissionStatus)
	handle("GET "+joinPath(base, "email-logs"), api.handleEmailLogs)
	handle("GET "+joinPath(base, "flags"), api.handleFlagList)
	handle("PUT "+joinPath(base, "flags")+"/{name}", api.handleFlagSet)
	handle("POST "+joinPath(base, "content/sync"), api.handleContentSync)
}

// requireAdmin checks the bearer token in constant time. Without a configured
// token every request is refused.
func (api *SiteAPI) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if api.adminToken == "" || !ok || subtle.ConstantTimeCompare([]byte(token), []byte(api.adminToken)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (api *SiteAPI) handleRender(w http.ResponseWriter, r *http.Request) {
	if api.markdown == nil {
		unavailable(w)
		return
	}
	var payload renderPayload
	if err := decodeJSON(w, r, api.maxBodyBytes, &payload); err != nil {
		api.fail(w, r, err)
		return
	}
	nodes, err := api.markdown.Render(r.Context(), payload.Markdown)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	html, err := api.markdown.RenderHTML(r.Context(), payload.Markdown)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if nodes == nil {
		nodes = []markdown.Node{}
	}
	writeJSON(w, http.StatusOK, renderResponse{Nodes: nodes, HTML: string(html), Formatted: markdown.Format(nodes)})
}

func (api *SiteAPI) handleSubmissionList(w http.ResponseWriter, r *http.Request) {
	if api.submissions == nil {
		unavailable(w)
		return
	}
	kind, err := submissions.ParseKind(r.PathValue("kind"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	list, err := api.submissions.List(r.Context(), kind)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if list == nil {
		list = []submissions.Submission{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *SiteAPI) handleSubmissionGet(w http.ResponseWriter, r *http.Request) {
	if api.submissions == nil {
		unavailable(w)
		return
	}
	kind, err := submissions.ParseKind(r.PathValue("kind"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	record, err := api.submissions.Get(r.Context(), kind, r.PathValue("id"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *SiteAPI) handleSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	if api.commands.UpdateStatus == nil {
		unavailable(w)
		return
	}
	kind, err := submissions.ParseKind(r.PathValue("kind"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	var payload statusPayload
	if err := decodeJSON(w, r, api.maxBodyBytes, &payload); err != nil {
		api.fail(w, r, err)
		return
	}
	status, err := submissions.ParseStatus(payload.Status)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	var updated submissions.Submission
	cmd := submissioncmd.UpdateStatusCommand{Kind: kind, ID: r.PathValue("id"), Status: status, Result: &updated}
	if err := api.commands.UpdateStatus.Execute(r.Context(), cmd); err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (api *SiteAPI) handleEmailLogs(w http.ResponseWriter, r *http.Request) {
	if api.emailLogs == nil {
		unavailable(w)
		return
	}
	logs, err := api.emailLogs.Logs(r.Context())
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if limit := parseIntQuery(r.URL.Query().Get("limit"), 0); limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	writeJSON(w, http.StatusOK, logs)
}

func (api *SiteAPI) handleFlagList(w http.ResponseWriter, r *http.Request) {
	if api.flags == nil {
		unavailable(w)
		return
	}
	list, err := api.flags.List(r.Context())
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *SiteAPI) handleFlagSet(w http.ResponseWriter, r *http.Request) {
	if api.flags == nil {
		unavailable(w)
		return
	}
	var payload flagPayload
	if err := decodeJSON(w, r, api.maxBodyBytes, &payload); err != nil {
		api.fail(w, r, err)
		return
	}
	if payload.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "enabled is required"})
		return
	}
	flag, err := api.flags.Set(r.Context(), r.PathValue("name"), *payload.Enabled)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flag)
}

func (api *SiteAPI) handleContentSync(w http.ResponseWriter, r *http.Request) {
	if api.commands.SyncContent == nil || api.contentDir == "" {
		unavailable(w)
		return
	}
	var result content.SyncResult
	err := api.commands.SyncContent.Execute(r.Context(), contentcmd.SyncContentCommand{
		Directory:     api.contentDir,
		IncludeDrafts: api.drafts,
		Result:        &result,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if result.Skipped == nil {
		result.Skipped = []content.Skipped{}
	}
	writeJSON(w, http.StatusOK, result)
}
