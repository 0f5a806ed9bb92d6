// internal/services/material_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/catalog-backend/internal/apperror"
	"github.com/javajoker/catalog-backend/internal/bulk"
	"github.com/javajoker/catalog-backend/internal/database"
	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/utils"
)

type MaterialService struct {
	db *gorm.DB
}

type MaterialInput struct {
	Title *LanguageInput `json:"title"`
}

type materialForm struct {
	TitleEs string `json:"title.es" validate:"required,max=255"`
	TitleEn string `json:"title.en" validate:"required,max=255"`
}

func NewMaterialService(db *gorm.DB) *MaterialService {
	return &MaterialService{db: db}
}

func (s *MaterialService) Create(ctx context.Context, input *MaterialInput) (*models.Material, error) {
	material := &models.Material{}
	if err := s.save(ctx, material, input); err != nil {
		return nil, err
	}
	return material, nil
}

func (s *MaterialService) Update(ctx context.Context, id uint, input *MaterialInput) (*models.Material, error) {
	material, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, material, input); err != nil {
		return nil, err
	}
	return material, nil
}

func (s *MaterialService) save(ctx context.Context, material *models.Material, input *MaterialInput) error {
	if input.Title != nil {
		material.TitleEs = input.Title.Es
		material.TitleEn = input.Title.En
	}

	if verrs := utils.ValidateFields(&materialForm{TitleEs: material.TitleEs, TitleEn: material.TitleEn}); verrs != nil {
		return verrs
	}

	verrs := &apperror.ValidationError{}
	titles := []struct{ field, column, value string }{
		{"title.es", "title_es", material.TitleEs},
		{"title.en", "title_en", material.TitleEn},
	}
	for _, title := range titles {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Material{}).
			Where(title.column+" = ? AND id <> ?", title.value, material.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count > 0 {
			verrs.Add(title.field, i18n.KeyMaterialTitleTaken)
			verrs.Cause = apperror.ErrDuplicateName
		}
	}
	if err := verrs.OrNil(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Save(material).Error; err != nil {
		return fmt.Errorf("failed to save material: %w", err)
	}
	return nil
}

// Delete removes the material and unlinks it from every offer.
func (s *MaterialService) Delete(ctx context.Context, id uint) (uint, error) {
	material, err := s.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("material_id = ?", material.ID).Delete(&models.OfferMaterial{}).Error; err != nil {
			return fmt.Errorf("failed to unlink material: %w", err)
		}
		if err := tx.Delete(&models.Material{}, material.ID).Error; err != nil {
			return fmt.Errorf("failed to delete material: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return material.ID, nil
}

func (s *MaterialService) DeleteBulk(ctx context.Context, ids []uint) (*bulk.Result, error) {
	return bulk.Apply(ctx, ids, func(ctx context.Context, id uint) (recordOperation, error) {
		material, err := s.GetByID(ctx, id)
		if err != nil {
			return recordOperation{}, err
		}
		return recordOperation{id: material.ID, run: func(ctx context.Context) error {
			_, err := s.Delete(ctx, material.ID)
			return err
		}}, nil
	})
}

func (s *MaterialService) GetByID(ctx context.Context, id uint) (*models.Material, error) {
	var material models.Material
	if err := s.db.WithContext(ctx).First(&material, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrDoesNotExist
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &material, nil
}

func (s *MaterialService) List(ctx context.Context) ([]models.Material, error) {
	var materials []models.Material
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}
