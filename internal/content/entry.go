package content

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Entry is one published piece of site content.
type Entry struct {
	bun.BaseModel `bun:"table:site_entries,alias:se" json:"-"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Key         string     `bun:"entry_key,notnull,unique" json:"-"`
	Kind        Kind       `bun:"kind,notnull" json:"kind"`
	Slug        string     `bun:"slug,notnull" json:"slug"`
	Title       string     `bun:"title,notnull" json:"title"`
	Summary     string     `bun:"summary" json:"summary,omitempty"`
	Body        string     `bun:"body" json:"body,omitempty"`
	Author      string     `bun:"author" json:"author,omitempty"`
	Tags        []string   `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Image       string     `bun:"image" json:"image,omitempty"`
	PublishedAt time.Time  `bun:"published_at" json:"published_at"`
	Draft       bool       `bun:"draft,notnull,default:false" json:"draft,omitempty"`
	Attributes  Attributes `bun:"attributes,type:jsonb" json:"attributes"`
	SourcePath  string     `bun:"source_path" json:"-"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Attributes holds the fields that only some kinds use.
type Attributes struct {
	// Case studies.
	Client   string   `json:"client,omitempty" yaml:"client"`
	Industry string   `json:"industry,omitempty" yaml:"industry"`
	Results  []string `json:"results,omitempty" yaml:"results"`

	// Events.
	Location        string     `json:"location,omitempty" yaml:"location"`
	StartsAt        *time.Time `json:"starts_at,omitempty" yaml:"starts_at"`
	EndsAt          *time.Time `json:"ends_at,omitempty" yaml:"ends_at"`
	RegistrationURL string     `json:"registration_url,omitempty" yaml:"registration_url"`

	// Whitepapers.
	DownloadURL string `json:"download_url,omitempty" yaml:"download_url"`
	Gated       bool   `json:"gated,omitempty" yaml:"gated"`
	Pages       int    `json:"pages,omitempty" yaml:"pages"`
}

// EntryKey is the unique identifier column value for kind and slug.
func EntryKey(kind Kind, slug string) string {
	return string(kind) + "/" + slug
}

var errEventEndsBeforeStart = validation.NewError("validation_event_range", "must not be before starts_at")

// Validate checks the common fields and the kind-specific requirements.
func (e *Entry) Validate() error {
	if e == nil {
		return errors.New("content: entry is nil")
	}
	err := validation.ValidateStruct(e,
		validation.Field(&e.Kind, validation.Required, validation.By(func(any) error {
			if !e.Kind.Valid() {
				return validation.NewError("validation_kind", "unknown kind")
			}
			return nil
		})),
		validation.Field(&e.Slug, validation.Required, validation.By(validSlug)),
		validation.Field(&e.Title, validation.Required),
	)
	if err != nil {
		return err
	}

	attrs := &e.Attributes
	switch e.Kind {
	case KindCaseStudy:
		return validation.ValidateStruct(attrs,
			validation.Field(&attrs.Client, validation.Required),
		)
	case KindEvent:
		return validation.ValidateStruct(attrs,
			validation.Field(&attrs.StartsAt, validation.Required),
			validation.Field(&attrs.EndsAt, validation.By(func(any) error {
				if attrs.StartsAt != nil && attrs.EndsAt != nil && attrs.EndsAt.Before(*attrs.StartsAt) {
					return errEventEndsBeforeStart
				}
				return nil
			})),
		)
	case KindWhitepaper:
		return validation.ValidateStruct(attrs,
			validation.Field(&attrs.DownloadURL, validation.Required),
		)
	}
	return nil
}

func cloneEntry(src *Entry) *Entry {
	if src == nil {
		return nil
	}
	copied := *src
	if src.Tags != nil {
		copied.Tags = append([]string(nil), src.Tags...)
	}
	if src.Attributes.Results != nil {
		copied.Attributes.Results = append([]string(nil), src.Attributes.Results...)
	}
	if src.Attributes.StartsAt != nil {
		t := *src.Attributes.StartsAt
		copied.Attributes.StartsAt = &t
	}
	if src.Attributes.EndsAt != nil {
		t := *src.Attributes.EndsAt
		copied.Attributes.EndsAt = &t
	}
	return &copied
}
