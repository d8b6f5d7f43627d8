package notifications

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry is the catalog of notification types keyed by category.
// It is built once at startup and never mutated, so reads need no locking.
type Registry struct {
	types map[Category]NotificationType
	order []Category
}

// NewRegistry builds a registry from types. Every entry must be valid and
// categories must be unique.
func NewRegistry(types ...NotificationType) (*Registry, error) {
	r := &Registry{
		types: make(map[Category]NotificationType, len(types)),
		order: make([]Category, 0, len(types)),
	}
	for _, t := range types {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.types[t.Category]; dup {
			return nil, errors.Join(ErrValidation, fmt.Errorf("duplicate category %q", t.Category))
		}
		r.types[t.Category] = t
		r.order = append(r.order, t.Category)
	}
	return r, nil
}

// Lookup returns the type registered for category or ErrTypeNotFound.
func (r *Registry) Lookup(category Category) (NotificationType, error) {
	t, ok := r.types[category]
	if !ok {
		return NotificationType{}, fmt.Errorf("%w: %s", ErrTypeNotFound, category)
	}
	return t, nil
}

// Types returns all entries in registration order.
func (r *Registry) Types() []NotificationType {
	out := make([]NotificationType, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.types[c])
	}
	return out
}

// PushCategories returns the categories whose policy includes push delivery.
func (r *Registry) PushCategories() []Category {
	var out []Category
	for _, c := range r.order {
		if r.types[c].Policy.IncludesPush() {
			out = append(out, c)
		}
	}
	return out
}

type catalogFile struct {
	Types []NotificationType `yaml:"types"`
}

// DecodeRegistry reads a YAML catalog:
//
//	types:
//	  - category: LIKE
//	    template: "%s liked your post"
//	    policy: STREAM_ONLY
func DecodeRegistry(r io.Reader) ([]NotificationType, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Join(ErrValidation, fmt.Errorf("decode notification catalog: %w", err))
	}
	if len(f.Types) == 0 {
		return nil, errors.Join(ErrValidation, errors.New("notification catalog is empty"))
	}
	return f.Types, nil
}

// LoadRegistryFile reads a YAML catalog from path.
func LoadRegistryFile(path string) ([]NotificationType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open notification catalog: %w", err)
	}
	defer f.Close()
	return DecodeRegistry(f)
}

// DefaultTypes is the built-in catalog used when no catalog file is configured.
func DefaultTypes() []NotificationType {
	return []NotificationType{
		{Category: CategoryLike, Template: "%s liked your post", Policy: PolicyStreamOnly},
		{Category: CategoryComment, Template: "%s commented on your post: %s", Policy: PolicyBoth},
		{Category: CategoryFollow, Template: "%s started following you", Policy: PolicyBoth},
		{Category: CategoryClubJoin, Template: "%s joined %s", Policy: PolicyStreamOnly},
		{Category: CategoryClubInvite, Template: "%s invited you to join %s", Policy: PolicyBoth},
		{Category: CategoryScheduleReminder, Template: "%s starts at %s", Policy: PolicyPushOnly},
		{Category: CategoryChatMessage, Template: "%s: %s", Policy: PolicyPushOnly},
		{Category: CategoryAnnouncement, Template: "%s", Policy: PolicyBoth},
	}
}
