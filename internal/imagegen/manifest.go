// Package imagegen renders marketing images from text prompts through an
// external provider and writes them as PNG files.
package imagegen

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	sitevalidation "github.com/goliatone/go-site/internal/validation"
	"github.com/goliatone/go-site/internal/yamlutil"
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Spec describes one image to generate.
type Spec struct {
	Category string `yaml:"category" json:"category"`
	Name     string `yaml:"name" json:"name"`
	Prompt   string `yaml:"prompt" json:"prompt"`
	// Size and Model override the manifest defaults.
	Size  string `yaml:"size,omitempty" json:"size,omitempty"`
	Model string `yaml:"model,omitempty" json:"model,omitempty"`
}

// Key returns the category/name pair identifying the image.
func (s Spec) Key() string {
	return path.Join(s.Category, s.Name)
}

func (s Spec) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Category, validation.Required, validation.Match(namePattern)),
		validation.Field(&s.Name, validation.Required, validation.Match(namePattern)),
		validation.Field(&s.Prompt, validation.Required, validation.Length(1, 4000)),
	)
}

// Manifest lists the images of a site.
type Manifest struct {
	Defaults struct {
		Size  string `yaml:"size,omitempty" json:"size,omitempty"`
		Model string `yaml:"model,omitempty" json:"model,omitempty"`
		Style string `yaml:"style,omitempty" json:"style,omitempty"`
	} `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Images []Spec `yaml:"images" json:"images"`
}

// LoadManifest reads and validates a YAML manifest.
func LoadManifest(file string) (*Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("imagegen: read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yamlutil.UnmarshalStrict(data, &m); err != nil {
		return nil, fmt.Errorf("imagegen: manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every spec and rejects duplicate keys.
func (m *Manifest) Validate() error {
	if len(m.Images) == 0 {
		return fmt.Errorf("imagegen: manifest lists no images")
	}
	seen := make(map[string]bool, len(m.Images))
	errs := validation.Errors{}
	for i, spec := range m.Images {
		field := fmt.Sprintf("images/%d", i)
		if err := spec.Validate(); err != nil {
			errs[field] = err
			continue
		}
		if seen[spec.Key()] {
			errs[field] = validation.NewError("imagegen.duplicate", "duplicate image "+spec.Key())
			continue
		}
		seen[spec.Key()] = true
	}
	return sitevalidation.FromFieldErrors(errs.Filter())
}

// Resolve returns spec with manifest defaults applied and the style suffix
// appended to its prompt.
func (m *Manifest) Resolve(spec Spec) Spec {
	if spec.Size == "" {
		spec.Size = m.Defaults.Size
	}
	if spec.Model == "" {
		spec.Model = m.Defaults.Model
	}
	if style := strings.TrimSpace(m.Defaults.Style); style != "" {
		spec.Prompt = strings.TrimSpace(spec.Prompt) + " " + style
	}
	return spec
}

// Keys lists the manifest keys, sorted.
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.Images))
	for _, spec := range m.Images {
		keys = append(keys, spec.Key())
	}
	sort.Strings(keys)
	return keys
}
