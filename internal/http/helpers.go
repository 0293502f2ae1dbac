package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-site/internal/content"
	"github.com/goliatone/go-site/internal/flags"
	"github.com/goliatone/go-site/internal/submissions"
	"github.com/goliatone/go-site/internal/validation"
)

type errorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message,omitempty"`
	Issues  []validation.ValidationIssue `json:"issues,omitempty"`
}

var errBodyRequired = errors.New("request body is required")

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

// badRequest marks request decoding failures.
type badRequest struct{ err error }

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, target any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return &badRequest{err: errBodyRequired}
	}
	defer r.Body.Close()
	body := io.Reader(r.Body)
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return &badRequest{err: errBodyRequired}
		}
		return &badRequest{err: err}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, errorResponse{
			Error:   "payload_too_large",
			Message: err.Error(),
		}
	}

	var decodeErr *badRequest
	if errors.As(err, &decodeErr) {
		return http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: decodeErr.Error(),
		}
	}

	var contentNotFound *content.NotFoundError
	if errors.As(err, &contentNotFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: contentNotFound.Error(),
		}
	}

	var submissionNotFound *submissions.NotFoundError
	if errors.As(err, &submissionNotFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: submissionNotFound.Error(),
		}
	}

	if errors.Is(err, content.ErrUnknownKind) || errors.Is(err, submissions.ErrUnknownKind) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: err.Error(),
		}
	}

	if errors.Is(err, submissions.ErrFormDisabled) {
		return http.StatusForbidden, errorResponse{
			Error:   "form_disabled",
			Message: err.Error(),
		}
	}

	if errors.Is(err, validation.ErrSchemaValidation) || goerrors.IsCategory(err, goerrors.CategoryValidation) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  validation.Issues(err),
		}
	}

	if errors.Is(err, submissions.ErrInvalidStatus) || errors.Is(err, flags.ErrInvalidName) {
		return http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

func parseIntQuery(value string, defaultValue int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return defaultValue
	}
	return parsed
}
