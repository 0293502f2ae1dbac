package content

import (
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
)

// NormalizeSlug applies the default slug normalization rules.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// slugFromPath derives a slug from a file name, dropping the extension.
func slugFromPath(filePath string) (string, error) {
	base := path.Base(filePath)
	base = strings.TrimSuffix(base, path.Ext(base))
	return NormalizeSlug(base)
}

func validSlug(value any) error {
	s, _ := value.(string)
	if s == "" || slug.IsValid(s) {
		return nil
	}
	return validation.NewError("validation_slug", "must be a lowercase slug")
}
