package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// EntryUUID identifies a content entry by kind and slug, so re-importing the
// same file keeps its ID.
func EntryUUID(kind, slug string) uuid.UUID {
	return UUID("go-site:entry:" + strings.ToLower(strings.TrimSpace(kind)) + ":" + strings.ToLower(strings.TrimSpace(slug)))
}

// ImageUUID identifies a generated image by category and name.
func ImageUUID(category, name string) uuid.UUID {
	return UUID("go-site:image:" + strings.ToLower(strings.TrimSpace(category)) + ":" + strings.ToLower(strings.TrimSpace(name)))
}
