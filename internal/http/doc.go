// Package http exposes the site over net/http.
//
// Public routes mount under /api:
//   - Content: /content/{kind}, /content/{kind}/{slug}
//   - Forms: /leads, /contact, /careers
//   - Styles: /styles/highlight.css
//
// Admin routes mount under /admin/api and require a bearer token:
//   - Markdown preview: /render
//   - Submissions: /submissions/{kind}, /submissions/{kind}/{id}
//   - Email logs: /email-logs
//   - Feature flags: /flags, /flags/{name}
//   - Content import: /content/sync
package http
