package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sahilchouksey/mindmeld-api/model"
	"gorm.io/gorm"
)

const fallbackSlug = "course"

var (
	// \s is ASCII only in RE2, \p{Zs} adds no-break and other Unicode spaces
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9_\s\p{Zs}-]`)
	slugSeparators   = regexp.MustCompile(`[\s\p{Zs}_-]+`)
)

// Slugify derives a lowercase, hyphen separated identifier from a display name.
// The result only contains [a-z0-9-] with no leading, trailing or repeated hyphens,
// and may be empty.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SlugService finds free slugs in the products table
type SlugService struct {
	db *gorm.DB
}

// NewSlugService creates a new slug service
func NewSlugService(db *gorm.DB) *SlugService {
	return &SlugService{db: db}
}

// Unique returns base, or base-N with the smallest N >= 1, that no product
// other than excludeID uses. The answer is advisory: the unique index decides
// at write time.
func (s *SlugService) Unique(ctx context.Context, base string, excludeID uint) (string, error) {
	if base == "" {
		base = fallbackSlug
	}

	// base contains no LIKE wildcards other than '-', which is literal
	q := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("slug = ? OR slug LIKE ?", base, base+"-%")
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var existing []string
	if err := q.Pluck("slug", &existing).Error; err != nil {
		return "", fmt.Errorf("failed to load slugs: %w", err)
	}

	taken := make(map[string]struct{}, len(existing))
	for _, slug := range existing {
		taken[slug] = struct{}{}
	}

	candidate := base
	for counter := 1; ; counter++ {
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

// Taken reports whether any product other than excludeID uses slug
func (s *SlugService) Taken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	q := s.db.WithContext(ctx).Model(&model.Product{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
