// Package flags stores feature toggles that administrators can flip at
// runtime. Flags fall back to configured defaults until first set.
package flags

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/internal/store"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// Collection is the store collection holding flag overrides.
const Collection = "feature_flags"

// Flags gating the public form endpoints.
const (
	FormsLeads   = "forms.leads"
	FormsContact = "forms.contact"
	FormsCareers = "forms.careers"
)

// ErrInvalidName is returned for flag names outside [a-z0-9._-].
var ErrInvalidName = errors.New("flags: invalid flag name")

// Flag is the effective state of one toggle.
type Flag struct {
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	// Default reports that no override has been stored yet.
	Default bool `json:"default"`
}

// Service reads and writes feature flags.
type Service struct {
	mu       sync.Mutex
	flags    *store.Collection[Flag]
	defaults map[string]bool
	logger   interfaces.Logger
	now      func() time.Time
}

// NewService builds a flag service over s seeded with defaults.
func NewService(s store.Store, defaults map[string]bool, logger interfaces.Logger) *Service {
	copied := make(map[string]bool, len(defaults))
	for name, enabled := range defaults {
		if normalized, err := NormalizeName(name); err == nil {
			copied[normalized] = enabled
		}
	}
	return &Service{
		flags:    store.NewCollection[Flag](s, Collection),
		defaults: copied,
		logger:   logging.WithCollection(logging.Or(logger), Collection),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeName lower-cases name and validates its characters. Flags use
// dotted names such as forms.leads, so each dot separated segment must be a
// valid slug.
func NormalizeName(name string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	for _, segment := range strings.Split(normalized, ".") {
		if !validSegment(segment) {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return normalized, nil
}

// Enabled reports the effective state of name. Unknown flags are disabled.
// A storage failure falls back to the configured default.
func (s *Service) Enabled(ctx context.Context, name string) bool {
	normalized, err := NormalizeName(name)
	if err != nil {
		return false
	}
	flag, ok, err := s.flags.First(ctx, "name", normalized)
	if err != nil {
		s.logger.Warn("flags.read.failed", "flag", normalized, "error", err)
		return s.defaults[normalized]
	}
	if !ok {
		return s.defaults[normalized]
	}
	return flag.Enabled
}

// Set stores an override for name.
func (s *Service) Set(ctx context.Context, name string, enabled bool) (Flag, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return Flag{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	flag := Flag{Name: normalized, Enabled: enabled, UpdatedAt: s.now()}
	updated, err := s.flags.Update(ctx, "name", normalized, store.Record{
		"enabled":    enabled,
		"updated_at": flag.UpdatedAt,
	})
	if err != nil {
		return Flag{}, err
	}
	if updated == 0 {
		if err := s.flags.Append(ctx, flag); err != nil {
			return Flag{}, err
		}
	}
	s.logger.Info("flags.set", "flag", normalized, "enabled", enabled)
	return flag, nil
}

// List returns every known flag, overrides merged over defaults, by name.
func (s *Service) List(ctx context.Context) ([]Flag, error) {
	stored, err := s.flags.All(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]Flag, len(stored)+len(s.defaults))
	for name, enabled := range s.defaults {
		byName[name] = Flag{Name: name, Enabled: enabled, Default: true}
	}
	for _, flag := range stored {
		byName[flag.Name] = flag
	}
	out := make([]Flag, 0, len(byName))
	for _, flag := range byName {
		out = append(out, flag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// validSegment accepts slug segments, with underscores allowed where a slug
// would use a dash.
func validSegment(segment string) bool {
	return segment != "" && slug.IsValid(strings.ReplaceAll(segment, "_", "-"))
}
