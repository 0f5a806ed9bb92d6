// internal/services/category_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/catalog-backend/internal/apperror"
	"github.com/javajoker/catalog-backend/internal/bulk"
	"github.com/javajoker/catalog-backend/internal/catalog"
	"github.com/javajoker/catalog-backend/internal/config"
	"github.com/javajoker/catalog-backend/internal/database"
	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/utils"
)

type CategoryService struct {
	db                        *gorm.DB
	storage                   *StorageService
	shortDescriptionMaxLength int
}

// LanguageInput carries a value in both catalog languages.
type LanguageInput struct {
	Es string `json:"es"`
	En string `json:"en"`
}

// CategoryInput is used for both create and update. Nil fields keep the
// stored value on update. A ParentCategory of 0 makes the category a root.
type CategoryInput struct {
	ParentCategory *uint          `json:"parentCategory"`
	Title          *LanguageInput `json:"title"`
	Description    *LanguageInput `json:"description"`
	Order          *int           `json:"order"`
	PosterURL      *string        `json:"posterUrl"`
	PosterPublicID *string        `json:"posterPublicId"`
}

type categoryForm struct {
	TitleEs        string `json:"title.es" validate:"required,max=63"`
	TitleEn        string `json:"title.en" validate:"required,max=63"`
	DescriptionEs  string `json:"description.es" validate:"max=250"`
	DescriptionEn  string `json:"description.en" validate:"max=250"`
	Order          int    `json:"order" validate:"gte=0"`
	PosterURL      string `json:"posterUrl" validate:"omitempty,url,max=512"`
	PosterPublicID string `json:"posterPublicId" validate:"max=255"`
}

// CategoryLookup selects one category. Exactly one field must be set.
type CategoryLookup struct {
	ID     *uint
	SlugEs *string
	SlugEn *string
}

func NewCategoryService(db *gorm.DB, storage *StorageService, cfg *config.Config) *CategoryService {
	return &CategoryService{
		db:                        db,
		storage:                   storage,
		shortDescriptionMaxLength: cfg.Catalog.ShortDescriptionMaxLength,
	}
}

func (s *CategoryService) Create(ctx context.Context, input *CategoryInput) (*models.Category, error) {
	category := &models.Category{}
	if input.ParentCategory == nil {
		input.ParentCategory = new(uint)
	}
	if err := s.save(ctx, category, input); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, input *CategoryInput) (*models.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldPoster := category.PosterPublicID
	if err := s.save(ctx, category, input); err != nil {
		return nil, err
	}

	if oldPoster != category.PosterPublicID {
		s.storage.Remove(ctx, oldPoster)
	}

	return category, nil
}

// save merges input into category, validates it, computes the namespaced
// slugs and persists it together with its descendants.
func (s *CategoryService) save(ctx context.Context, category *models.Category, input *CategoryInput) error {
	if input.Title != nil {
		category.TitleEs = input.Title.Es
		category.TitleEn = input.Title.En
	}
	if input.Description != nil {
		category.DescriptionEs = input.Description.Es
		category.DescriptionEn = input.Description.En
	}
	if input.Order != nil {
		category.Order = *input.Order
	}
	if input.PosterURL != nil {
		category.PosterURL = *input.PosterURL
	}
	if input.PosterPublicID != nil {
		category.PosterPublicID = *input.PosterPublicID
	}

	verrs := utils.ValidateFields(&categoryForm{
		TitleEs:        category.TitleEs,
		TitleEn:        category.TitleEn,
		DescriptionEs:  category.DescriptionEs,
		DescriptionEn:  category.DescriptionEn,
		Order:          category.Order,
		PosterURL:      category.PosterURL,
		PosterPublicID: category.PosterPublicID,
	})
	if verrs == nil {
		verrs = &apperror.ValidationError{}
	}

	parent, err := s.resolveParent(ctx, category, input.ParentCategory, verrs)
	if err != nil {
		return err
	}
	if err := verrs.OrNil(); err != nil {
		return err
	}

	if catalog.Slugify(category.TitleEs) == "" {
		verrs.Add("title.es", i18n.KeyValidationNotSluggable)
	}
	if catalog.Slugify(category.TitleEn) == "" {
		verrs.Add("title.en", i18n.KeyValidationNotSluggable)
	}
	if err := verrs.OrNil(); err != nil {
		return err
	}

	var parentSlugEs, parentSlugEn string
	if parent != nil {
		category.ParentCategoryID = &parent.ID
		parentSlugEs, parentSlugEn = parent.SlugEs, parent.SlugEn
	} else {
		category.ParentCategoryID = nil
	}
	category.ParentCategory = parent
	category.SlugEs = catalog.NamespacedSlug(parentSlugEs, category.TitleEs)
	category.SlugEn = catalog.NamespacedSlug(parentSlugEn, category.TitleEn)

	if err := s.checkSlugCollision(ctx, category); err != nil {
		return err
	}

	return database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Omit("ParentCategory", "Subcategories").Save(category).Error; err != nil {
			return fmt.Errorf("failed to save category: %w", err)
		}
		return s.cascade(tx, category)
	})
}

// resolveParent applies the requested parent change. Only two levels exist:
// a parent must be a root, a category with subcategories stays a root and a
// category holding offers stays a subcategory.
func (s *CategoryService) resolveParent(ctx context.Context, category *models.Category, requested *uint, verrs *apperror.ValidationError) (*models.Category, error) {
	parentID := category.ParentCategoryID
	if requested != nil {
		parentID = requested
		if *requested == 0 {
			parentID = nil
		}
	}
	if parentID == nil {
		if category.ID != 0 && !category.IsRoot() {
			var offers int64
			if err := s.db.WithContext(ctx).Model(&models.Offer{}).
				Where("subcategory_id = ?", category.ID).Count(&offers).Error; err != nil {
				return nil, fmt.Errorf("database error: %w", err)
			}
			if offers > 0 {
				verrs.Add("parentCategory", i18n.KeyCategoryHasOffers)
			}
		}
		return nil, nil
	}

	if category.ID != 0 && *parentID == category.ID {
		verrs.Add("parentCategory", i18n.KeyCategoryParentSelf)
		return nil, nil
	}

	var parent models.Category
	if err := s.db.WithContext(ctx).First(&parent, *parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verrs.Add("parentCategory", i18n.KeyCategoryParentNotFound)
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !parent.IsRoot() {
		verrs.Add("parentCategory", i18n.KeyCategoryParentNotRoot)
		return nil, nil
	}

	if category.ID != 0 {
		var children int64
		if err := s.db.WithContext(ctx).Model(&models.Category{}).
			Where("parent_category_id = ?", category.ID).Count(&children).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if children > 0 {
			verrs.Add("parentCategory", i18n.KeyCategoryHasSubcategories)
			return nil, nil
		}
	}

	return &parent, nil
}

func (s *CategoryService) checkSlugCollision(ctx context.Context, category *models.Category) error {
	query := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("(slug_es = ? OR slug_en = ?)", category.SlugEs, category.SlugEn)
	if category.ID != 0 {
		query = query.Where("id <> ?", category.ID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return apperror.Field("title", i18n.KeyValidationDuplicateName, apperror.ErrDuplicateName)
	}
	return nil
}

// cascade re-saves what derives from the category slugs: the children of a
// root with their offers, or the offers of a leaf.
func (s *CategoryService) cascade(tx *gorm.DB, category *models.Category) error {
	if err := refreshCategoryOffers(tx, category); err != nil {
		return err
	}
	if !category.IsRoot() {
		return nil
	}

	var children []models.Category
	if err := tx.Where("parent_category_id = ?", category.ID).Find(&children).Error; err != nil {
		return fmt.Errorf("failed to load subcategories: %w", err)
	}

	for i := range children {
		child := &children[i]
		child.SlugEs = catalog.NamespacedSlug(category.SlugEs, child.TitleEs)
		child.SlugEn = catalog.NamespacedSlug(category.SlugEn, child.TitleEn)

		if err := tx.Model(child).Updates(map[string]interface{}{
			"slug_es": child.SlugEs,
			"slug_en": child.SlugEn,
		}).Error; err != nil {
			return fmt.Errorf("failed to update subcategory %d: %w", child.ID, err)
		}

		if err := refreshCategoryOffers(tx, child); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes the category and everything below it. Remote images go
// first and never block the delete.
func (s *CategoryService) Delete(ctx context.Context, id uint) (uint, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	db := s.db.WithContext(ctx)
	categoryIDs := []uint{category.ID}
	publicIDs := []string{category.PosterPublicID}

	if category.IsRoot() {
		var children []models.Category
		if err := db.Where("parent_category_id = ?", category.ID).Find(&children).Error; err != nil {
			return 0, fmt.Errorf("failed to load subcategories: %w", err)
		}
		for _, child := range children {
			categoryIDs = append(categoryIDs, child.ID)
			publicIDs = append(publicIDs, child.PosterPublicID)
		}
	}

	var offerIDs []uint
	if err := db.Model(&models.Offer{}).Where("subcategory_id IN ?", categoryIDs).Pluck("id", &offerIDs).Error; err != nil {
		return 0, fmt.Errorf("failed to load offers: %w", err)
	}

	if len(offerIDs) > 0 {
		var imageIDs []string
		if err := db.Model(&models.Image{}).Where("offer_id IN ?", offerIDs).Pluck("public_id", &imageIDs).Error; err != nil {
			return 0, fmt.Errorf("failed to load images: %w", err)
		}
		publicIDs = append(publicIDs, imageIDs...)
	}

	s.storage.RemoveAll(ctx, publicIDs)

	err = database.WithTransaction(db, func(tx *gorm.DB) error {
		if len(offerIDs) > 0 {
			if err := deleteOfferRows(tx, offerIDs); err != nil {
				return err
			}
		}
		if err := tx.Where("parent_category_id = ?", category.ID).Delete(&models.Category{}).Error; err != nil {
			return fmt.Errorf("failed to delete subcategories: %w", err)
		}
		if err := tx.Delete(&models.Category{}, category.ID).Error; err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return category.ID, nil
}

// DeleteBulk deletes every listed category. Missing ids are skipped.
func (s *CategoryService) DeleteBulk(ctx context.Context, ids []uint) (*bulk.Result, error) {
	return bulk.Apply(ctx, ids, func(ctx context.Context, id uint) (recordOperation, error) {
		category, err := s.GetByID(ctx, id)
		if err != nil {
			return recordOperation{}, err
		}
		return recordOperation{id: category.ID, run: func(ctx context.Context) error {
			_, err := s.Delete(ctx, category.ID)
			return err
		}}, nil
	})
}

func (s *CategoryService) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrCategoryDoesNotExist
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}

// Get resolves a category by id or by one of its slugs.
func (s *CategoryService) Get(ctx context.Context, lookup CategoryLookup) (*models.Category, error) {
	query := s.db.WithContext(ctx)
	selectors := 0

	if lookup.ID != nil {
		query = query.Where("id = ?", *lookup.ID)
		selectors++
	}
	if lookup.SlugEs != nil {
		query = query.Where("slug_es = ?", *lookup.SlugEs)
		selectors++
	}
	if lookup.SlugEn != nil {
		query = query.Where("slug_en = ?", *lookup.SlugEn)
		selectors++
	}
	if selectors != 1 {
		return nil, apperror.ErrCategoryDoesNotExist
	}

	var category models.Category
	if err := query.First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrCategoryDoesNotExist
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}

// ListRoots returns the top-level categories ordered for display.
func (s *CategoryService) ListRoots(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Where("parent_category_id IS NULL").
		Order("sort_order ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Subcategories(ctx context.Context, category *models.Category) ([]models.Category, error) {
	var children []models.Category
	if err := s.db.WithContext(ctx).Where("parent_category_id = ?", category.ID).
		Order("sort_order ASC").Order("id ASC").Find(&children).Error; err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	return children, nil
}

func (s *CategoryService) Parent(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.IsRoot() {
		return nil, nil
	}
	return s.GetByID(ctx, *category.ParentCategoryID)
}

// offerScope selects the offers that belong to category: those of its
// children for a root, its own otherwise.
func offerScope(db *gorm.DB, category *models.Category) *gorm.DB {
	if category.IsRoot() {
		return db.Where("subcategory_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Model(&models.Category{}).Select("id").Where("parent_category_id = ?", category.ID))
	}
	return db.Where("subcategory_id = ?", category.ID)
}

// Materials returns the distinct materials used by the category's offers.
func (s *CategoryService) Materials(ctx context.Context, category *models.Category) ([]models.Material, error) {
	db := s.db.WithContext(ctx)
	offers := offerScope(db.Session(&gorm.Session{NewDB: true}).Model(&models.Offer{}).Select("id"), category)
	used := db.Session(&gorm.Session{NewDB: true}).Model(&models.OfferMaterial{}).Select("material_id").Where("offer_id IN (?)", offers)

	var materials []models.Material
	if err := db.Where("id IN (?)", used).Order("id ASC").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

// Offers lists the category's offers. Sort keys only apply to a leaf; the
// aggregated offers of a root come back unsorted.
func (s *CategoryService) Offers(ctx context.Context, category *models.Category, filters *OfferFilters) ([]models.Offer, error) {
	if filters == nil {
		filters = &OfferFilters{}
	}

	query := offerScope(s.db.WithContext(ctx).Model(&models.Offer{}), category)
	query = filters.apply(query)
	if !category.IsRoot() {
		query = applyOfferSort(query, filters.Sort)
	}

	var offers []models.Offer
	if err := query.Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}

// recordOperation is a bulk operation on a record that has no input to
// validate beyond its existence.
type recordOperation struct {
	id       uint
	validate func() []apperror.FieldError
	run      func(ctx context.Context) error
}

func (o recordOperation) Validate() []apperror.FieldError {
	if o.validate == nil {
		return nil
	}
	return o.validate()
}

func (o recordOperation) Execute(ctx context.Context) (uint, error) {
	if err := o.run(ctx); err != nil {
		return 0, err
	}
	return o.id, nil
}
