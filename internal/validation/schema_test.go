package validation

import (
	"errors"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestNormalizeSchemaFromFields(t *testing.T) {
	schema := NormalizeSchema(map[string]any{
		"fields": []any{
			map[string]any{"name": "portfolio", "type": "url", "required": true},
			map[string]any{"name": "years", "type": "integer"},
			"notes",
		},
	})
	if schema == nil {
		t.Fatalf("expected normalized schema")
	}
	props := schema["properties"].(map[string]any)
	if len(props) != 3 {
		t.Fatalf("expected 3 properties, got %#v", props)
	}
	if got := props["portfolio"].(map[string]any)["type"]; got != "string" {
		t.Fatalf("expected url field to map to string, got %v", got)
	}
	required := schema["required"].([]any)
	if len(required) != 1 || required[0] != "portfolio" {
		t.Fatalf("unexpected required list %#v", required)
	}
}

func TestCompileEmptySchemaAcceptsAnything(t *testing.T) {
	compiled, err := Compile(nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := compiled.Validate(map[string]any{"anything": 1}); err != nil {
		t.Fatalf("expected nil schema to accept payload, got %v", err)
	}
}

func TestValidatePayloadReportsIssues(t *testing.T) {
	schema := map[string]any{
		"fields": []any{
			map[string]any{"name": "portfolio", "type": "string", "required": true},
			map[string]any{"name": "years", "type": "integer"},
		},
	}

	if err := ValidatePayload(schema, map[string]any{"portfolio": "https://example.com", "years": 4}); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	err := ValidatePayload(schema, map[string]any{"years": "four"})
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	issues := Issues(err)
	if len(issues) < 2 {
		t.Fatalf("expected at least two issues, got %#v", issues)
	}
	var sawYears bool
	for _, issue := range issues {
		if issue.Location == "/years" {
			sawYears = true
		}
	}
	if !sawYears {
		t.Fatalf("expected an issue at /years, got %#v", issues)
	}
}

func TestValidateSchemaRejectsInvalidDocument(t *testing.T) {
	err := ValidateSchema(map[string]any{"type": 12})
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestFromFieldErrors(t *testing.T) {
	err := validation.Errors{
		"email": errors.New("must be a valid email address"),
		"name":  errors.New("cannot be blank"),
	}.Filter()

	wrapped := FromFieldErrors(err)
	if !errors.Is(wrapped, ErrSchemaValidation) {
		t.Fatalf("expected wrapped error to match ErrSchemaValidation")
	}
	issues := Issues(wrapped)
	if len(issues) != 2 || issues[0].Location != "/email" || issues[1].Location != "/name" {
		t.Fatalf("unexpected issues %#v", issues)
	}
	if !strings.Contains(wrapped.Error(), "#/name: cannot be blank") {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}

	plain := errors.New("boom")
	if FromFieldErrors(plain) != plain {
		t.Fatalf("expected non-field errors to pass through")
	}
}
