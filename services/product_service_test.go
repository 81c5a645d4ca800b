package services

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/sahilchouksey/mindmeld-api/model"
	"github.com/sahilchouksey/mindmeld-api/utils/metrics"
	"github.com/sahilchouksey/mindmeld-api/utils/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// failProductInserts makes the next n product inserts fail with a unique violation
func failProductInserts(t *testing.T, db *gorm.DB, n int) *int {
	t.Helper()
	attempts := 0
	err := db.Callback().Create().Before("gorm:create").Register("test:slug_collision", func(tx *gorm.DB) {
		if tx.Statement.Table != "products" {
			return
		}
		attempts++
		if attempts <= n {
			tx.AddError(gorm.ErrDuplicatedKey)
		}
	})
	require.NoError(t, err)
	return &attempts
}

func slugRetries(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.SlugRetriesTotal.Write(&m))
	return m.GetCounter().GetValue()
}

func TestProductCreateSequentialSlugs(t *testing.T) {
	fx := newFixture(t)
	products := NewProductService(fx.db, fx.log)

	first, err := products.Create(bg, ProductInput{Name: ptr("Intro to Go!"), Price: ptr(49.0)})
	require.NoError(t, err)
	assert.Equal(t, "intro-to-go", first.SlugValue())

	second, err := products.Create(bg, ProductInput{Name: ptr("Intro to Go!"), Price: ptr(59.0)})
	require.NoError(t, err)
	assert.Equal(t, "intro-to-go-1", second.SlugValue())

	byslug, err := products.Get(bg, "intro-to-go-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byslug.ID)
}

func TestProductCreateRetriesSlugCollision(t *testing.T) {
	fx := newFixture(t)
	products := NewProductService(fx.db, fx.log)
	attempts := failProductInserts(t, fx.db, 1)
	before := slugRetries(t)

	product, err := products.Create(bg, ProductInput{Name: ptr("Intro to Go!"), Price: ptr(49.0)})
	require.NoError(t, err)
	assert.Equal(t, "intro-to-go", product.SlugValue())
	assert.NotZero(t, product.ID)
	assert.Equal(t, 2, *attempts)
	assert.Equal(t, before+1, slugRetries(t))
}

func TestProductCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	fx := newFixture(t)
	products := NewProductService(fx.db, fx.log)
	attempts := failProductInserts(t, fx.db, maxSlugAttempts)
	before := slugRetries(t)

	_, err := products.Create(bg, ProductInput{Name: ptr("Intro to Go!"), Price: ptr(49.0)})
	assert.ErrorIs(t, err, ErrSlugTaken)
	assert.Equal(t, maxSlugAttempts, *attempts)
	assert.Equal(t, before+maxSlugAttempts, slugRetries(t))

	var count int64
	require.NoError(t, fx.db.Model(&model.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProductCreateValidation(t *testing.T) {
	fx := newFixture(t)
	products := NewProductService(fx.db, fx.log)

	_, err := products.Create(bg, ProductInput{Name: ptr("No price")})
	assert.ErrorIs(t, err, ErrProductInvalid)

	_, err = products.Create(bg, ProductInput{Name: ptr("Bad category"), Price: ptr(1.0), CategoryID: ptr(uint(999))})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestProductExplicitSlug(t *testing.T) {
	fx := newFixture(t)
	products := NewProductService(fx.db, fx.log)

	p, err := products.Create(bg, ProductInput{Name: ptr("Go"), Price: ptr(1.0), Slug: ptr("My Custom Slug")})
	require.NoError(t, err)
	assert.Equal(t, "my-custom-slug", p.SlugValue())

	_, err = products.Create(bg, ProductInput{Name: ptr("Other"), Price: ptr(1.0), Slug: ptr("my-custom-slug")})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestProductUpdateSlug(t *testing.T) {
	fx := newFixture(t)
	products := NewProductService(fx.db, fx.log)

	p, err := products.Create(bg, ProductInput{Name: ptr("Go Basics"), Price: ptr(1.0)})
	require.NoError(t, err)

	// unchanged name keeps the slug
	p, err = products.Update(bg, p.ID, ProductInput{Price: ptr(2.0)})
	require.NoError(t, err)
	assert.Equal(t, "go-basics", p.SlugValue())
	assert.Equal(t, 2.0, p.Price)

	// same name re-submitted does not collide with itself
	p, err = products.Update(bg, p.ID, ProductInput{Name: ptr("Go Basics")})
	require.NoError(t, err)
	assert.Equal(t, "go-basics", p.SlugValue())

	p, err = products.Update(bg, p.ID, ProductInput{Name: ptr("Go Advanced")})
	require.NoError(t, err)
	assert.Equal(t, "go-advanced", p.SlugValue())
}

func TestProductListAndDelete(t *testing.T) {
	fx := newFixture(t)
	products := NewProductService(fx.db, fx.log)
	user := testdb.CreateUser(t, fx.db, "alice", model.RoleUser)

	featured, err := products.Create(bg, ProductInput{Name: ptr("Featured"), Price: ptr(1.0), IsFeatured: ptr(true), Tags: []string{"go"}})
	require.NoError(t, err)
	plain, err := products.Create(bg, ProductInput{Name: ptr("Plain"), Price: ptr(1.0)})
	require.NoError(t, err)

	require.NoError(t, fx.db.Create(&model.Enrollment{UserID: user.ID, ProductID: featured.ID}).Error)

	list, err := products.List(bg, ProductFilter{FeaturedOnly: true, IncludeEnrollments: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, featured.ID, list[0].ID)
	require.NotNil(t, list[0].EnrollmentCount)
	assert.Equal(t, int64(1), *list[0].EnrollmentCount)
	assert.Equal(t, []string{"go"}, []string(list[0].Tags))

	all, err := products.List(bg, ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Nil(t, all[0].EnrollmentCount)

	require.NoError(t, products.Delete(bg, featured.ID))
	assert.ErrorIs(t, products.Delete(bg, featured.ID), ErrProductNotFound)

	var enrollments int64
	fx.db.Model(&model.Enrollment{}).Count(&enrollments)
	assert.Zero(t, enrollments)

	_, err = products.Get(bg, "featured")
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = products.Get(bg, plain.SlugValue())
	assert.NoError(t, err)
}

func TestProductBackfillSlugs(t *testing.T) {
	fx := newFixture(t)
	products := NewProductService(fx.db, fx.log)
	testdb.CreateProduct(t, fx.db, "Legacy Course", 1)
	testdb.CreateProduct(t, fx.db, "Legacy Course", 1)

	fixed, err := products.BackfillSlugs(bg)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fixed)

	var slugs []string
	require.NoError(t, fx.db.Model(&model.Product{}).Order("id").Pluck("slug", &slugs).Error)
	assert.Equal(t, []string{"legacy-course", "legacy-course-1"}, slugs)
}
