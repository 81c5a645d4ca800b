package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/utils/metrics"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxSlugAttempts bounds retries after losing a slug race at insert time
const maxSlugAttempts = 5

// ProductInput carries writable product fields. Nil pointers are left unchanged on update.
type ProductInput struct {
	Name        *string
	Slug        *string
	Description *string
	Price       *float64
	CategoryID  *uint
	Image       *string
	Stock       *int
	Tags        []string
	IsFeatured  *bool
}

// ProductFilter narrows product listings
type ProductFilter struct {
	CategoryID         *uint
	FeaturedOnly       bool
	IncludeEnrollments bool
	Search             string
}

// ProductService manages the course catalog
type ProductService struct {
	db    *gorm.DB
	slugs *SlugService
	log   *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(db *gorm.DB, log *zap.Logger) *ProductService {
	return &ProductService{db: db, slugs: NewSlugService(db), log: log}
}

// List returns products newest first
func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	q := s.db.WithContext(ctx).Preload("Category")
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.FeaturedOnly {
		q = q.Where("is_featured = ?", true)
	}
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}

	var products []model.Product
	if err := q.Order("created_at DESC").Order("id DESC").Find(&products).Error; err != nil {
		return nil, err
	}

	if f.IncludeEnrollments && len(products) > 0 {
		if err := s.attachEnrollmentCounts(ctx, products); err != nil {
			return nil, err
		}
	}

	return products, nil
}

func (s *ProductService) attachEnrollmentCounts(ctx context.Context, products []model.Product) error {
	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	var rows []struct {
		ProductID uint
		Count     int64
	}
	err := s.db.WithContext(ctx).Model(&model.Enrollment{}).
		Select("product_id, COUNT(*) AS count").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to count enrollments: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ProductID] = r.Count
	}
	for i := range products {
		n := counts[products[i].ID]
		products[i].EnrollmentCount = &n
	}
	return nil
}

// Get loads a product by numeric id or by slug
func (s *ProductService) Get(ctx context.Context, idOrSlug string) (*model.Product, error) {
	q := s.db.WithContext(ctx).Preload("Category")
	if id, err := strconv.ParseUint(idOrSlug, 10, 64); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", idOrSlug)
	}

	var product model.Product
	if err := q.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Create adds a product. Without an explicit slug one is derived from the name.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.Price == nil {
		return nil, ErrProductInvalid
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	product := &model.Product{Tags: datatypes.JSONSlice[string]{}}
	applyProductInput(product, in)

	explicit := ""
	if in.Slug != nil {
		explicit = Slugify(*in.Slug)
	}

	err := s.writeWithSlug(ctx, product, explicit, true, func(tx *gorm.DB) error {
		return tx.Create(product).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Product created", zap.Uint("product_id", product.ID), zap.String("slug", product.SlugValue()))
	return s.Get(ctx, strconv.FormatUint(uint64(product.ID), 10))
}

// Update changes a product. The slug is regenerated only when the name
// changes and no explicit slug is supplied.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*model.Product, error) {
	var product model.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	nameChanged := in.Name != nil && *in.Name != product.Name
	applyProductInput(&product, in)

	save := func(tx *gorm.DB) error {
		return tx.Save(&product).Error
	}

	var err error
	switch {
	case in.Slug != nil:
		err = s.writeWithSlug(ctx, &product, Slugify(*in.Slug), false, save)
	case nameChanged || product.Slug == nil:
		err = s.writeWithSlug(ctx, &product, "", false, save)
	default:
		err = save(s.db.WithContext(ctx))
	}
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, strconv.FormatUint(uint64(product.ID), 10))
}

// writeWithSlug assigns a slug and runs write, recomputing the slug when the
// unique index rejects it. An explicit slug is never renamed.
func (s *ProductService) writeWithSlug(ctx context.Context, p *model.Product, explicit string, creating bool, write func(tx *gorm.DB) error) error {
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		if explicit != "" {
			taken, err := s.slugs.Taken(ctx, explicit, p.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlugTaken
			}
			slug := explicit
			p.Slug = &slug
		} else {
			slug, err := s.slugs.Unique(ctx, Slugify(p.Name), p.ID)
			if err != nil {
				return err
			}
			p.Slug = &slug
		}

		err := write(s.db.WithContext(ctx))
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if explicit != "" {
			return ErrSlugTaken
		}

		metrics.SlugRetriesTotal.Inc()
		s.log.Warn("Slug collided at write time, retrying", zap.String("slug", p.SlugValue()), zap.Int("attempt", attempt+1))
		if creating {
			p.ID = 0
		}
	}
	return ErrSlugTaken
}

func applyProductInput(p *model.Product, in ProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.CategoryID != nil {
		p.CategoryID = in.CategoryID
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Tags != nil {
		p.Tags = datatypes.JSONSlice[string](in.Tags)
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
}

// Delete removes a product together with its enrollments, cart lines and wishlist entries
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Product{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		if err := tx.Where("product_id = ?", id).Delete(&model.Enrollment{}).Error; err != nil {
			return fmt.Errorf("failed to delete enrollments: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}
		if err := tx.Exec("DELETE FROM wishlist_products WHERE product_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete wishlist entries: %w", err)
		}
		return nil
	})
}

// BackfillSlugs assigns slugs to products that have none and returns how many were fixed
func (s *ProductService) BackfillSlugs(ctx context.Context) (int64, error) {
	var products []model.Product
	if err := s.db.WithContext(ctx).Where("slug IS NULL OR slug = ''").Find(&products).Error; err != nil {
		return 0, err
	}

	var fixed int64
	for i := range products {
		p := &products[i]
		err := s.writeWithSlug(ctx, p, "", false, func(tx *gorm.DB) error {
			return tx.Model(p).Update("slug", p.Slug).Error
		})
		if err != nil {
			return fixed, fmt.Errorf("product %d: %w", p.ID, err)
		}
		fixed++
	}
	return fixed, nil
}
