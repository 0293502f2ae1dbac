package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// ParseFrontMatter decodes the YAML (or TOML/JSON) frontmatter of source into
// target and returns the markdown body without delimiters. Source without
// frontmatter is returned unchanged and target is left untouched.
func ParseFrontMatter(source []byte, target any) ([]byte, error) {
	body, err := frontmatter.Parse(bytes.NewReader(source), target)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return body, nil
}
