package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/catalog-backend/internal/config"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/testutil"
)

// catalogFixture wires the catalog services over a fresh database and a
// recording image store.
type catalogFixture struct {
	db         *gorm.DB
	store      *fakeImageStore
	categories *CategoryService
	offers     *OfferService
	materials  *MaterialService
	contact    *ContactService
	ctx        context.Context
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()

	db := testutil.NewDB(t)
	store := &fakeImageStore{}
	storage := NewStorageService(store)
	cfg := &config.Config{Catalog: config.CatalogConfig{ShortDescriptionMaxLength: 20, MaxQueryDepth: 10}}

	return &catalogFixture{
		db:         db,
		store:      store,
		categories: NewCategoryService(db, storage, cfg),
		offers:     NewOfferService(db, storage, cfg),
		materials:  NewMaterialService(db),
		contact:    NewContactService(db, storage),
		ctx:        context.Background(),
	}
}

func lang(es, en string) *LanguageInput {
	return &LanguageInput{Es: es, En: en}
}

func uintPtr(v uint) *uint {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}

func (f *catalogFixture) root(t *testing.T, es, en string) *models.Category {
	t.Helper()
	category, err := f.categories.Create(f.ctx, &CategoryInput{Title: lang(es, en)})
	require.NoError(t, err)
	return category
}

func (f *catalogFixture) leaf(t *testing.T, parent *models.Category, es, en string) *models.Category {
	t.Helper()
	category, err := f.categories.Create(f.ctx, &CategoryInput{
		ParentCategory: uintPtr(parent.ID),
		Title:          lang(es, en),
	})
	require.NoError(t, err)
	return category
}

func (f *catalogFixture) offer(t *testing.T, subcategory *models.Category, es, en string, images ...ImageInput) *models.Offer {
	t.Helper()
	offer, err := f.offers.Create(f.ctx, &OfferInput{
		Subcategory: uintPtr(subcategory.ID),
		Title:       lang(es, en),
		Price:       floatPtr(10),
		Images:      images,
	})
	require.NoError(t, err)
	return offer
}

func (f *catalogFixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
