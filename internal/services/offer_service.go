// internal/services/offer_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

type OfferService struct {
	db                        *gorm.DB
	storage                   *StorageService
	shortDescriptionMaxLength int
}

type ImageInput struct {
	URL      string `json:"url" validate:"required,url,max=1024"`
	PublicID string `json:"publicId" validate:"max=255"`
}

// OfferInput is used for both create and update. Nil fields keep the stored
// value on update; nil Images or Materials leave the current set untouched.
type OfferInput struct {
	Subcategory *uint          `json:"subcategory"`
	Title       *LanguageInput `json:"title"`
	Description *LanguageInput `json:"description"`
	Price       *float64       `json:"price"`
	// PriceProvided marks an explicit price in the request, including null.
	PriceProvided bool         `json:"-"`
	Currency      *string      `json:"currency"`
	Recommended   *bool        `json:"recommended"`
	Images        []ImageInput `json:"images"`
	Materials     []uint       `json:"materials"`
}

type offerForm struct {
	TitleEs       string       `json:"title.es" validate:"required,max=120"`
	TitleEn       string       `json:"title.en" validate:"required,max=120"`
	DescriptionEs string       `json:"description.es"`
	DescriptionEn string       `json:"description.en"`
	Price         *float64     `json:"price" validate:"omitempty,gte=0"`
	Currency      string       `json:"currency" validate:"omitempty,currency"`
	Subcategory   uint         `json:"subcategory" validate:"required"`
	Images        []ImageInput `json:"images" validate:"dive"`
}

type OfferSort string

const (
	OfferSortPrice     OfferSort = "price"
	OfferSortCreatedOn OfferSort = "created_on"
	OfferSortUpdatedOn OfferSort = "updated_on"
)

var offerSortColumns = map[OfferSort]string{
	OfferSortPrice:     "price",
	OfferSortCreatedOn: "created_at",
	OfferSortUpdatedOn: "updated_at",
}

// OfferFilters narrows offer listings. Zero values do not filter.
type OfferFilters struct {
	ID               *uint
	Subcategory      *uint
	ParentCategory   *uint
	PriceGte         *float64
	PriceLte         *float64
	TitleDescription string
	Materials        []uint
	Recommended      *bool
	Sort             []OfferSort
	// OnlyOnSale hides offers that are not on sale. Set on the public graph.
	OnlyOnSale bool
}

func NewOfferService(db *gorm.DB, storage *StorageService, cfg *config.Config) *OfferService {
	return &OfferService{
		db:                        db,
		storage:                   storage,
		shortDescriptionMaxLength: cfg.Catalog.ShortDescriptionMaxLength,
	}
}

func (s *OfferService) Create(ctx context.Context, input *OfferInput) (*models.Offer, error) {
	currency := models.CurrencyCUC
	offer := &models.Offer{
		Currency: &currency,
		OnSale:   true,
	}
	input.PriceProvided = true
	if input.Images == nil {
		input.Images = []ImageInput{}
	}
	if input.Materials == nil {
		input.Materials = []uint{}
	}

	if err := s.save(ctx, offer, input); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *OfferService) Update(ctx context.Context, id uint, input *OfferInput) (*models.Offer, error) {
	offer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, offer, input); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *OfferService) save(ctx context.Context, offer *models.Offer, input *OfferInput) error {
	if input.Subcategory != nil {
		offer.SubcategoryID = *input.Subcategory
	}
	if input.Title != nil {
		offer.TitleEs = input.Title.Es
		offer.TitleEn = input.Title.En
	}
	if input.Description != nil {
		offer.DescriptionEs = input.Description.Es
		offer.DescriptionEn = input.Description.En
	}
	if input.PriceProvided || input.Price != nil {
		offer.Price = input.Price
	}
	if input.Currency != nil {
		currency := models.Currency(*input.Currency)
		offer.Currency = &currency
	}
	if input.Recommended != nil {
		offer.Recommended = *input.Recommended
	}

	form := offerFormOf(offer)
	form.Images = input.Images
	verrs := utils.ValidateFields(form)
	if verrs == nil {
		verrs = &apperror.ValidationError{}
	}

	subcategory, err := s.resolveSubcategory(ctx, offer.SubcategoryID, verrs)
	if err != nil {
		return err
	}
	if input.Materials != nil {
		if err := s.checkMaterials(ctx, input.Materials, verrs); err != nil {
			return err
		}
	}
	if err := verrs.OrNil(); err != nil {
		return err
	}

	if offer.Price == nil {
		offer.Currency = nil
	} else if offer.Currency == nil {
		currency := models.CurrencyCUC
		offer.Currency = &currency
	}
	offer.ShortDescriptionEs = catalog.ShortDescription(offer.DescriptionEs, s.shortDescriptionMaxLength)
	offer.ShortDescriptionEn = catalog.ShortDescription(offer.DescriptionEn, s.shortDescriptionMaxLength)

	var removed []string
	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Omit("Subcategory", "Images").Save(offer).Error; err != nil {
			return fmt.Errorf("failed to save offer: %w", err)
		}

		// The slug embeds the id, known only after the first write.
		if err := refreshOfferSlugs(tx, offer, subcategory); err != nil {
			return err
		}

		if input.Images != nil {
			if removed, err = syncImages(tx, offer.ID, input.Images); err != nil {
				return err
			}
		}
		if input.Materials != nil {
			if err := syncMaterials(tx, offer.ID, input.Materials); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.storage.RemoveAll(ctx, removed)
	offer.Subcategory = subcategory
	return nil
}

func offerFormOf(offer *models.Offer) *offerForm {
	form := &offerForm{
		TitleEs:       offer.TitleEs,
		TitleEn:       offer.TitleEn,
		DescriptionEs: offer.DescriptionEs,
		DescriptionEn: offer.DescriptionEn,
		Price:         offer.Price,
		Subcategory:   offer.SubcategoryID,
	}
	if offer.Currency != nil {
		form.Currency = string(*offer.Currency)
	}
	return form
}

// resolveSubcategory loads the offer's category, which must be a leaf.
func (s *OfferService) resolveSubcategory(ctx context.Context, id uint, verrs *apperror.ValidationError) (*models.Category, error) {
	if id == 0 {
		return nil, nil
	}

	var subcategory models.Category
	if err := s.db.WithContext(ctx).First(&subcategory, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verrs.Add("subcategory", i18n.KeyOfferSubcategoryNotFound)
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if subcategory.IsRoot() {
		verrs.Add("subcategory", i18n.KeyOfferSubcategoryRequired)
		return nil, nil
	}

	return &subcategory, nil
}

func (s *OfferService) checkMaterials(ctx context.Context, ids []uint, verrs *apperror.ValidationError) error {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Material{}).Where("id IN ?", unique).Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if int(count) != len(unique) {
		verrs.Add("materials", i18n.KeyOfferMaterialNotFound)
	}
	return nil
}

// refreshOfferSlugs recomputes the slugs and permalinks of an offer under
// subcategory.
func refreshOfferSlugs(tx *gorm.DB, offer *models.Offer, subcategory *models.Category) error {
	slugEs := catalog.OfferSlug(offer.TitleEs, offer.ID)
	slugEn := catalog.OfferSlug(offer.TitleEn, offer.ID)
	permalinkEs := catalog.Permalink(subcategory.SlugEs, slugEs)
	permalinkEn := catalog.Permalink(subcategory.SlugEn, slugEn)

	offer.SlugEs, offer.SlugEn = &slugEs, &slugEn
	offer.PermalinkEs, offer.PermalinkEn = &permalinkEs, &permalinkEn

	if err := tx.Model(offer).Updates(map[string]interface{}{
		"slug_es":      slugEs,
		"slug_en":      slugEn,
		"permalink_es": permalinkEs,
		"permalink_en": permalinkEn,
	}).Error; err != nil {
		return fmt.Errorf("failed to update offer %d slugs: %w", offer.ID, err)
	}
	return nil
}

// refreshCategoryOffers re-saves the slugs of every offer filed directly
// under category.
func refreshCategoryOffers(tx *gorm.DB, category *models.Category) error {
	var offers []models.Offer
	if err := tx.Where("subcategory_id = ?", category.ID).Find(&offers).Error; err != nil {
		return fmt.Errorf("failed to load offers of category %d: %w", category.ID, err)
	}

	for i := range offers {
		if err := refreshOfferSlugs(tx, &offers[i], category); err != nil {
			return err
		}
	}
	return nil
}

// syncImages makes the offer's images match wanted. Images are matched by
// public id, or by url when no public id is given. It returns the public ids
// of the images that were dropped.
func syncImages(tx *gorm.DB, offerID uint, wanted []ImageInput) ([]string, error) {
	var current []models.Image
	if err := tx.Where("offer_id = ?", offerID).Find(&current).Error; err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}

	key := func(url, publicID string) string {
		if publicID != "" {
			return "id:" + publicID
		}
		return "url:" + url
	}

	keep := make(map[string]bool, len(wanted))
	for _, image := range wanted {
		keep[key(image.URL, image.PublicID)] = true
	}

	var removed []string
	existing := make(map[string]bool, len(current))
	for _, image := range current {
		k := key(image.URL, image.PublicID)
		if keep[k] && !existing[k] {
			existing[k] = true
			continue
		}
		if err := tx.Delete(&models.Image{}, image.ID).Error; err != nil {
			return nil, fmt.Errorf("failed to delete image %d: %w", image.ID, err)
		}
		removed = append(removed, image.PublicID)
	}

	for _, image := range wanted {
		k := key(image.URL, image.PublicID)
		if existing[k] {
			continue
		}
		existing[k] = true
		if err := tx.Create(&models.Image{
			URL:      image.URL,
			PublicID: image.PublicID,
			OfferID:  offerID,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to create image: %w", err)
		}
	}

	return removed, nil
}

func syncMaterials(tx *gorm.DB, offerID uint, wanted []uint) error {
	wanted = uniqueIDs(wanted)

	query := tx.Where("offer_id = ?", offerID)
	if len(wanted) > 0 {
		query = query.Where("material_id NOT IN ?", wanted)
	}
	if err := query.Delete(&models.OfferMaterial{}).Error; err != nil {
		return fmt.Errorf("failed to unlink materials: %w", err)
	}

	var linked []uint
	if err := tx.Model(&models.OfferMaterial{}).Where("offer_id = ?", offerID).Pluck("material_id", &linked).Error; err != nil {
		return fmt.Errorf("failed to load materials: %w", err)
	}
	present := make(map[uint]bool, len(linked))
	for _, id := range linked {
		present[id] = true
	}

	for _, materialID := range wanted {
		if present[materialID] {
			continue
		}
		if err := tx.Create(&models.OfferMaterial{OfferID: offerID, MaterialID: materialID}).Error; err != nil {
			return fmt.Errorf("failed to link material %d: %w", materialID, err)
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}

// deleteOfferRows removes offers with their images and material links.
func deleteOfferRows(tx *gorm.DB, offerIDs []uint) error {
	if err := tx.Where("offer_id IN ?", offerIDs).Delete(&models.Image{}).Error; err != nil {
		return fmt.Errorf("failed to delete images: %w", err)
	}
	if err := tx.Where("offer_id IN ?", offerIDs).Delete(&models.OfferMaterial{}).Error; err != nil {
		return fmt.Errorf("failed to delete offer materials: %w", err)
	}
	if err := tx.Where("id IN ?", offerIDs).Delete(&models.Offer{}).Error; err != nil {
		return fmt.Errorf("failed to delete offers: %w", err)
	}
	return nil
}

// Delete removes the offer's remote images, then the offer.
func (s *OfferService) Delete(ctx context.Context, id uint) (uint, error) {
	offer, err := s.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	var publicIDs []string
	if err := s.db.WithContext(ctx).Model(&models.Image{}).Where("offer_id = ?", offer.ID).Pluck("public_id", &publicIDs).Error; err != nil {
		return 0, fmt.Errorf("failed to load images: %w", err)
	}
	s.storage.RemoveAll(ctx, publicIDs)

	if err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		return deleteOfferRows(tx, []uint{offer.ID})
	}); err != nil {
		return 0, err
	}

	return offer.ID, nil
}

func (s *OfferService) DeleteBulk(ctx context.Context, ids []uint) (*bulk.Result, error) {
	return bulk.Apply(ctx, ids, func(ctx context.Context, id uint) (recordOperation, error) {
		offer, err := s.GetByID(ctx, id)
		if err != nil {
			return recordOperation{}, err
		}
		return recordOperation{id: offer.ID, run: func(ctx context.Context) error {
			_, err := s.Delete(ctx, offer.ID)
			return err
		}}, nil
	})
}

// SetOnSaleBulk activates or deactivates the listed offers.
func (s *OfferService) SetOnSaleBulk(ctx context.Context, ids []uint, onSale bool) (*bulk.Result, error) {
	return s.updateFlagBulk(ctx, ids, "on_sale", onSale)
}

// SetRecommendedBulk adds or removes the listed offers from recommendations.
func (s *OfferService) SetRecommendedBulk(ctx context.Context, ids []uint, recommended bool) (*bulk.Result, error) {
	return s.updateFlagBulk(ctx, ids, "recommended", recommended)
}

func (s *OfferService) updateFlagBulk(ctx context.Context, ids []uint, column string, value bool) (*bulk.Result, error) {
	return bulk.Apply(ctx, ids, func(ctx context.Context, id uint) (recordOperation, error) {
		offer, err := s.GetByID(ctx, id)
		if err != nil {
			return recordOperation{}, err
		}

		return recordOperation{
			id: offer.ID,
			validate: func() []apperror.FieldError {
				if verrs := utils.ValidateFields(offerFormOf(offer)); verrs != nil {
					return verrs.Fields
				}
				return nil
			},
			run: func(ctx context.Context) error {
				return s.db.WithContext(ctx).Model(offer).Update(column, value).Error
			},
		}, nil
	})
}

// DeleteImage removes a remote image and any image rows pointing at it.
func (s *OfferService) DeleteImage(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	s.storage.Remove(ctx, publicID)

	if err := s.db.WithContext(ctx).Where("public_id = ?", publicID).Delete(&models.Image{}).Error; err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *OfferService) GetByID(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	if err := s.db.WithContext(ctx).First(&offer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrDoesNotExist
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &offer, nil
}

// Get returns one offer. With onlyOnSale an offer that is not on sale is
// reported as missing.
func (s *OfferService) Get(ctx context.Context, id uint, onlyOnSale bool) (*models.Offer, error) {
	offer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if onlyOnSale && !offer.OnSale {
		return nil, apperror.ErrDoesNotExist
	}
	return offer, nil
}

func (s *OfferService) List(ctx context.Context, filters *OfferFilters, pagination utils.PaginationParams) ([]models.Offer, int64, error) {
	if filters == nil {
		filters = &OfferFilters{}
	}

	query := filters.apply(s.db.WithContext(ctx).Model(&models.Offer{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count offers: %w", err)
	}

	var offers []models.Offer
	query = applyOfferSort(query, filters.Sort)
	if err := utils.ApplyPagination(query, pagination).Find(&offers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list offers: %w", err)
	}

	return offers, total, nil
}

func (s *OfferService) Images(ctx context.Context, offer *models.Offer) ([]models.Image, error) {
	var images []models.Image
	if err := s.db.WithContext(ctx).Where("offer_id = ?", offer.ID).Order("id ASC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	return images, nil
}

func (s *OfferService) Materials(ctx context.Context, offer *models.Offer) ([]models.Material, error) {
	var materials []models.Material
	if err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&models.OfferMaterial{}).Select("material_id").Where("offer_id = ?", offer.ID)).
		Order("id ASC").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	return materials, nil
}

func (s *OfferService) Subcategory(ctx context.Context, offer *models.Offer) (*models.Category, error) {
	var subcategory models.Category
	if err := s.db.WithContext(ctx).First(&subcategory, offer.SubcategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrCategoryDoesNotExist
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &subcategory, nil
}

// likeEscaper makes user text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f *OfferFilters) apply(query *gorm.DB) *gorm.DB {
	subquery := func() *gorm.DB {
		return query.Session(&gorm.Session{NewDB: true})
	}

	if f.OnlyOnSale {
		query = query.Where("on_sale = ?", true)
	}
	if f.ID != nil {
		query = query.Where("id = ?", *f.ID)
	}
	if f.Subcategory != nil {
		query = query.Where("subcategory_id = ?", *f.Subcategory)
	}
	if f.ParentCategory != nil {
		query = query.Where("subcategory_id IN (?)",
			subquery().Model(&models.Category{}).Select("id").Where("parent_category_id = ?", *f.ParentCategory))
	}
	if f.PriceGte != nil {
		query = query.Where("price >= ?", *f.PriceGte)
	}
	if f.PriceLte != nil {
		query = query.Where("price <= ?", *f.PriceLte)
	}
	if text := strings.TrimSpace(f.TitleDescription); text != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
		query = query.Where(
			`(LOWER(title_es) LIKE ? ESCAPE '\' OR LOWER(title_en) LIKE ? ESCAPE '\' OR `+
				`LOWER(description_es) LIKE ? ESCAPE '\' OR LOWER(description_en) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern, pattern,
		)
	}
	if materials := uniqueIDs(f.Materials); len(materials) > 0 {
		query = query.Where("id IN (?)",
			subquery().Model(&models.OfferMaterial{}).Select("offer_id").Where("material_id IN ?", materials))
	}
	if f.Recommended != nil {
		query = query.Where("recommended = ?", *f.Recommended)
	}

	return query
}

// applyOfferSort orders ascending by each key, created_on when none is given.
func applyOfferSort(query *gorm.DB, sort []OfferSort) *gorm.DB {
	if len(sort) == 0 {
		sort = []OfferSort{OfferSortCreatedOn}
	}
	for _, key := range sort {
		if column, ok := offerSortColumns[key]; ok {
			query = query.Order(column + " ASC")
		}
	}
	return query.Order("id ASC")
}
