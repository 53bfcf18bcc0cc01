package services

import (
	"context"
	_ "embed"
	"fmt"
	"maps"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sparkcrackers/storefront/app/api"
	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/cache"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/storage"
)

//go:embed content_defaults.yaml
var defaultContentYAML []byte

const contentCacheKey = "storefront:content:sections"

// ParseContentDefaults decodes a defaults table. Sections without a
// contentId or with an unknown type are rejected.
func ParseContentDefaults(raw []byte) (map[string]models.ContentSection, error) {
	var doc struct {
		Sections []models.ContentSection `yaml:"sections"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("content: parse defaults: %w", err)
	}

	out := make(map[string]models.ContentSection, len(doc.Sections))
	for i, s := range doc.Sections {
		if s.ContentID == "" {
			return nil, fmt.Errorf("content: default section %d has no contentId", i)
		}
		if s.Type == "" {
			s.Type = models.KindText
		}
		if !s.Type.Valid() {
			return nil, fmt.Errorf("content: default section %q has unknown type %q", s.ContentID, s.Type)
		}
		out[s.ContentID] = s
	}
	return out, nil
}

var builtinDefaults = sync.OnceValues(func() (map[string]models.ContentSection, error) {
	return ParseContentDefaults(defaultContentYAML)
})

// DefaultContent returns a copy of the built-in defaults table keyed by
// contentId.
func DefaultContent() (map[string]models.ContentSection, error) {
	d, err := builtinDefaults()
	if err != nil {
		return nil, err
	}
	return maps.Clone(d), nil
}

// ContentOptions are the optional collaborators of a ContentService.
type ContentOptions struct {
	Cache    *cache.Store
	CacheTTL time.Duration
	Media    storage.Disk
	// Defaults replaces the embedded defaults table when non-nil.
	Defaults map[string]models.ContentSection
}

// ContentService serves named content sections. Lookups always succeed: a
// section the backend does not have falls back to the defaults table, and
// an id in neither returns zero values.
type ContentService struct {
	client   *api.Client
	session  *Session
	cache    *cache.Store
	ttl      time.Duration
	media    storage.Disk
	defaults map[string]models.ContentSection

	mu       sync.RWMutex
	sections map[string]models.ContentSection
	loading  bool
	err      error
}

func NewContentService(client *api.Client, session *Session, opts ContentOptions) *ContentService {
	defaults := opts.Defaults
	if defaults == nil {
		d, err := builtinDefaults()
		if err != nil {
			logger.Error("content: built-in defaults unusable", "error", err)
		}
		defaults = d
	}
	return &ContentService{
		client:   client,
		session:  session,
		cache:    opts.Cache,
		ttl:      opts.CacheTTL,
		media:    opts.Media,
		defaults: defaults,
		sections: merge(defaults, nil),
	}
}

// Fetch loads sections, reading through the cache when one is configured.
func (c *ContentService) Fetch(ctx context.Context) error {
	var cached []models.ContentSection
	if c.cache.Get(ctx, contentCacheKey, &cached) {
		c.apply(cached, nil)
		return nil
	}
	return c.Refresh(ctx)
}

// Refresh loads sections from the backend and rewrites the cache.
func (c *ContentService) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	var list []models.ContentSection
	if err := c.client.Get(ctx, "/content", "content.fetch", "Failed to fetch content", &list); err != nil {
		c.apply(nil, err)
		return err
	}
	if err := c.cache.Set(ctx, contentCacheKey, list, c.ttl); err != nil {
		logger.WithCtx(ctx).Warn("content: cache write failed", "error", err)
	}
	c.apply(list, nil)
	return nil
}

// apply merges list over the defaults. On error the current sections stay.
func (c *ContentService) apply(list []models.ContentSection, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.err = err
	if err != nil {
		return
	}
	c.sections = merge(c.defaults, list)
}

func merge(defaults map[string]models.ContentSection, list []models.ContentSection) map[string]models.ContentSection {
	out := make(map[string]models.ContentSection, len(defaults)+len(list))
	for k, v := range defaults {
		out[k] = v
	}
	for _, s := range list {
		key := s.Key()
		if key == "" {
			continue
		}
		s.ContentID = key
		if s.Type == "" {
			s.Type = defaults[key].Type
		}
		if s.Type == "" {
			s.Type = models.KindText
		}
		out[key] = s
	}
	return out
}

// Section returns the section stored under contentID.
func (c *ContentService) Section(contentID string) (models.ContentSection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sections[contentID]
	if ok {
		s.Metadata = maps.Clone(s.Metadata)
	}
	return s, ok
}

// Value returns the section's content, or "".
func (c *ContentService) Value(contentID string) string {
	s, _ := c.Section(contentID)
	return s.Content
}

// ValueOr returns the section's content, or fallback when it is empty.
func (c *ContentService) ValueOr(contentID, fallback string) string {
	if v := c.Value(contentID); v != "" {
		return v
	}
	return fallback
}

// Metadata returns the section's metadata, or an empty map.
func (c *ContentService) Metadata(contentID string) map[string]any {
	s, _ := c.Section(contentID)
	if s.Metadata == nil {
		return map[string]any{}
	}
	return s.Metadata
}

// Kind returns the section's type, or "" for an unknown id.
func (c *ContentService) Kind(contentID string) models.ContentKind {
	s, _ := c.Section(contentID)
	return s.Type
}

func (c *ContentService) Testimonials(contentID string) []models.Testimonial {
	out := []models.Testimonial{}
	if s, ok := c.Section(contentID); ok {
		s.Items(&out)
	}
	if out == nil {
		out = []models.Testimonial{}
	}
	return out
}

func (c *ContentService) Features(contentID string) []models.Feature {
	out := []models.Feature{}
	if s, ok := c.Section(contentID); ok {
		s.Items(&out)
	}
	if out == nil {
		out = []models.Feature{}
	}
	return out
}

func (c *ContentService) Steps(contentID string) []models.Step {
	out := []models.Step{}
	if s, ok := c.Section(contentID); ok {
		s.Items(&out)
	}
	if out == nil {
		out = []models.Step{}
	}
	return out
}

// All returns every section sorted by contentId.
func (c *ContentService) All() []models.ContentSection {
	c.mu.RLock()
	out := make([]models.ContentSection, 0, len(c.sections))
	for _, s := range c.sections {
		out = append(out, s)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ContentID < out[j].ContentID })
	return out
}

func (c *ContentService) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *ContentService) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Update writes sections back (admin only) and replaces the local table
// with the backend's response.
func (c *ContentService) Update(ctx context.Context, sections []models.ContentSection) error {
	if u, ok := c.session.User(); !ok || !u.IsAdmin() {
		return ErrAdminOnly
	}

	body := make([]models.ContentSection, 0, len(sections))
	c.mu.RLock()
	for _, s := range sections {
		if s.ContentID == "" {
			continue
		}
		if s.ID == "" {
			s.ID = c.sections[s.ContentID].ID
		}
		body = append(body, s)
	}
	c.mu.RUnlock()

	var list []models.ContentSection
	if err := c.client.Put(ctx, "/content", body, "content.update", "Failed to update content", &list); err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return err
	}
	if err := c.cache.Del(ctx, contentCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("content: cache invalidation failed", "error", err)
	}
	c.apply(list, nil)
	return nil
}

// UploadImage stores data on the media disk and points the image section
// contentID at its URL.
func (c *ContentService) UploadImage(ctx context.Context, contentID, name string, data []byte) (string, error) {
	if u, ok := c.session.User(); !ok || !u.IsAdmin() {
		return "", ErrAdminOnly
	}
	if c.media == nil {
		return "", fmt.Errorf("content: no media disk configured")
	}

	key := path.Join("content", contentID, uuid.NewString()+strings.ToLower(path.Ext(name)))
	if err := c.media.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("content: upload %s: %w", name, err)
	}
	url := c.media.URL(key)

	s, _ := c.Section(contentID)
	s.ContentID = contentID
	s.Type = models.KindImage
	s.Content = url
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	s.Metadata["filename"] = name
	if err := c.Update(ctx, []models.ContentSection{s}); err != nil {
		return url, err
	}
	return url, nil
}
