package imagegen

import (
	"strings"
	"testing"

	sitevalidation "github.com/goliatone/go-site/internal/validation"
)

const sampleManifest = `
defaults:
  size: 1024x1024
  style: flat illustration
images:
  - category: hero
    name: home
    prompt: A lighthouse at dawn
  - category: blog
    name: launch
    prompt: Rocket over a city
    size: 1792x1024
`

func TestParseManifestAppliesDefaults(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if len(m.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(m.Images))
	}
	home := m.Resolve(m.Images[0])
	if home.Size != "1024x1024" {
		t.Fatalf("expected default size, got %q", home.Size)
	}
	if home.Prompt != "A lighthouse at dawn flat illustration" {
		t.Fatalf("unexpected prompt %q", home.Prompt)
	}
	if launch := m.Resolve(m.Images[1]); launch.Size != "1792x1024" {
		t.Fatalf("expected override size, got %q", launch.Size)
	}
	if got := strings.Join(m.Keys(), ","); got != "blog/launch,hero/home" {
		t.Fatalf("unexpected keys %q", got)
	}
}

func TestParseManifestRejectsDuplicatesAndBadNames(t *testing.T) {
	doc := `
images:
  - category: hero
    name: home
    prompt: one
  - category: hero
    name: home
    prompt: two
  - category: Hero Images
    name: x
    prompt: three
`
	_, err := ParseManifest([]byte(doc))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	issues := sitevalidation.Issues(err)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", issues)
	}
}

func TestParseManifestRejectsUnknownKeys(t *testing.T) {
	if _, err := ParseManifest([]byte("images: []\ncolour: red\n")); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestParseManifestRequiresImages(t *testing.T) {
	if _, err := ParseManifest([]byte("images: []\n")); err == nil {
		t.Fatalf("expected empty manifest to fail")
	}
}
