// internal/services/contact_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/catalog-backend/internal/apperror"
	"github.com/javajoker/catalog-backend/internal/bulk"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/utils"
)

// ContactService manages the contact page, manufacturers and the messages
// visitors leave through the public site.
type ContactService struct {
	db      *gorm.DB
	storage *StorageService
}

type ContactInfoInput struct {
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=64"`
	Address     *string `json:"address"`
	Twitter     *string `json:"twitter" validate:"omitempty,max=255"`
	Facebook    *string `json:"facebook" validate:"omitempty,max=255"`
	Linkedin    *string `json:"linkedin" validate:"omitempty,max=255"`
	About       *string `json:"about"`
	PdfURL      *string `json:"pdfUrl" validate:"omitempty,max=1024"`
	PdfPublicID *string `json:"pdfPublicId" validate:"omitempty,max=255"`
}

type ManufacturerInput struct {
	Name         *string `json:"name"`
	LogoURL      *string `json:"logoUrl"`
	LogoPublicID *string `json:"logoPublicId"`
}

type manufacturerForm struct {
	Name         string `json:"name" validate:"required,max=255"`
	LogoURL      string `json:"logoUrl" validate:"omitempty,url,max=1024"`
	LogoPublicID string `json:"logoPublicId" validate:"max=255"`
}

type MessageInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Topic   string `json:"topic" validate:"required,max=255"`
	Message string `json:"message" validate:"required"`
}

func NewContactService(db *gorm.DB, storage *StorageService) *ContactService {
	return &ContactService{
		db:      db,
		storage: storage,
	}
}

// GetContactInfo returns the current contact record, the most recent row.
func (s *ContactService) GetContactInfo(ctx context.Context) (*models.ContactInfo, error) {
	var contact models.ContactInfo
	if err := s.db.WithContext(ctx).Last(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrDoesNotExist
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &contact, nil
}

func (s *ContactService) UpdateContactInfo(ctx context.Context, input *ContactInfoInput) (*models.ContactInfo, error) {
	if verrs := utils.ValidateFields(input); verrs != nil {
		return nil, verrs
	}

	contact, err := s.GetContactInfo(ctx)
	if errors.Is(err, apperror.ErrDoesNotExist) {
		contact = &models.ContactInfo{}
	} else if err != nil {
		return nil, err
	}

	oldPdf := contact.PdfPublicID
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&contact.Email, input.Email)
	assign(&contact.Phone, input.Phone)
	assign(&contact.Address, input.Address)
	assign(&contact.Twitter, input.Twitter)
	assign(&contact.Facebook, input.Facebook)
	assign(&contact.Linkedin, input.Linkedin)
	assign(&contact.About, input.About)
	assign(&contact.PdfURL, input.PdfURL)
	assign(&contact.PdfPublicID, input.PdfPublicID)

	if err := s.db.WithContext(ctx).Save(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to save contact info: %w", err)
	}

	if oldPdf != contact.PdfPublicID {
		s.storage.Remove(ctx, oldPdf)
	}

	return contact, nil
}

func (s *ContactService) ListManufacturers(ctx context.Context) ([]models.Manufacturer, error) {
	var manufacturers []models.Manufacturer
	if err := s.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&manufacturers).Error; err != nil {
		return nil, fmt.Errorf("failed to list manufacturers: %w", err)
	}
	return manufacturers, nil
}

func (s *ContactService) GetManufacturer(ctx context.Context, id uint) (*models.Manufacturer, error) {
	var manufacturer models.Manufacturer
	if err := s.db.WithContext(ctx).First(&manufacturer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrDoesNotExist
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &manufacturer, nil
}

func (s *ContactService) CreateManufacturer(ctx context.Context, input *ManufacturerInput) (*models.Manufacturer, error) {
	manufacturer := &models.Manufacturer{}
	if err := s.saveManufacturer(ctx, manufacturer, input); err != nil {
		return nil, err
	}
	return manufacturer, nil
}

func (s *ContactService) UpdateManufacturer(ctx context.Context, id uint, input *ManufacturerInput) (*models.Manufacturer, error) {
	manufacturer, err := s.GetManufacturer(ctx, id)
	if err != nil {
		return nil, err
	}

	oldLogo := manufacturer.LogoPublicID
	if err := s.saveManufacturer(ctx, manufacturer, input); err != nil {
		return nil, err
	}

	if oldLogo != manufacturer.LogoPublicID {
		s.storage.Remove(ctx, oldLogo)
	}
	return manufacturer, nil
}

func (s *ContactService) saveManufacturer(ctx context.Context, manufacturer *models.Manufacturer, input *ManufacturerInput) error {
	if input.Name != nil {
		manufacturer.Name = *input.Name
	}
	if input.LogoURL != nil {
		manufacturer.LogoURL = *input.LogoURL
	}
	if input.LogoPublicID != nil {
		manufacturer.LogoPublicID = *input.LogoPublicID
	}

	if verrs := utils.ValidateFields(&manufacturerForm{
		Name:         manufacturer.Name,
		LogoURL:      manufacturer.LogoURL,
		LogoPublicID: manufacturer.LogoPublicID,
	}); verrs != nil {
		return verrs
	}

	if err := s.db.WithContext(ctx).Save(manufacturer).Error; err != nil {
		return fmt.Errorf("failed to save manufacturer: %w", err)
	}
	return nil
}

// DeleteManufacturer removes the logo from the image store, then the row.
func (s *ContactService) DeleteManufacturer(ctx context.Context, id uint) (uint, error) {
	manufacturer, err := s.GetManufacturer(ctx, id)
	if err != nil {
		return 0, err
	}

	s.storage.Remove(ctx, manufacturer.LogoPublicID)

	if err := s.db.WithContext(ctx).Delete(&models.Manufacturer{}, manufacturer.ID).Error; err != nil {
		return 0, fmt.Errorf("failed to delete manufacturer: %w", err)
	}
	return manufacturer.ID, nil
}

func (s *ContactService) DeleteManufacturerBulk(ctx context.Context, ids []uint) (*bulk.Result, error) {
	return bulk.Apply(ctx, ids, func(ctx context.Context, id uint) (recordOperation, error) {
		manufacturer, err := s.GetManufacturer(ctx, id)
		if err != nil {
			return recordOperation{}, err
		}
		return recordOperation{id: manufacturer.ID, run: func(ctx context.Context) error {
			_, err := s.DeleteManufacturer(ctx, manufacturer.ID)
			return err
		}}, nil
	})
}

// CreateMessage stores a visitor message as unread.
func (s *ContactService) CreateMessage(ctx context.Context, input *MessageInput) (*models.Message, error) {
	if verrs := utils.ValidateFields(input); verrs != nil {
		return nil, verrs
	}

	message := &models.Message{
		Name:    input.Name,
		Email:   input.Email,
		Topic:   input.Topic,
		Message: input.Message,
		Status:  models.MessageStatusUnread,
	}
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return message, nil
}

// ListMessages returns messages newest first.
func (s *ContactService) ListMessages(ctx context.Context, pagination utils.PaginationParams) ([]models.Message, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Message{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	var messages []models.Message
	if err := utils.ApplyPagination(query.Order("created_at DESC").Order("id DESC"), pagination).
		Find(&messages).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, total, nil
}

func (s *ContactService) getMessage(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := s.db.WithContext(ctx).First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrDoesNotExist
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &message, nil
}

// ReadMessage returns a message and marks it as read.
func (s *ContactService) ReadMessage(ctx context.Context, id uint) (*models.Message, error) {
	message, err := s.getMessage(ctx, id)
	if err != nil {
		return nil, err
	}

	if message.Status == models.MessageStatusUnread {
		if err := s.db.WithContext(ctx).Model(message).Update("status", models.MessageStatusRead).Error; err != nil {
			return nil, fmt.Errorf("failed to mark message as read: %w", err)
		}
		message.Status = models.MessageStatusRead
	}
	return message, nil
}

func (s *ContactService) DeleteMessageBulk(ctx context.Context, ids []uint) (*bulk.Result, error) {
	return bulk.Apply(ctx, ids, func(ctx context.Context, id uint) (recordOperation, error) {
		message, err := s.getMessage(ctx, id)
		if err != nil {
			return recordOperation{}, err
		}
		return recordOperation{id: message.ID, run: func(ctx context.Context) error {
			return s.db.WithContext(ctx).Delete(&models.Message{}, message.ID).Error
		}}, nil
	})
}
