package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/catalog-backend/internal/apperror"
	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/utils"
)

func TestMaterialUniqueTitles(t *testing.T) {
	f := newCatalogFixture(t)
	steel, err := f.materials.Create(f.ctx, &MaterialInput{Title: lang("Acero", "Steel")})
	require.NoError(t, err)

	_, err = f.materials.Create(f.ctx, &MaterialInput{Title: lang("Acero", "Iron")})
	assert.ErrorIs(t, err, apperror.ErrDuplicateName)
	fields, ok := apperror.FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, []apperror.FieldError{{Field: "title.es", Messages: []string{i18n.KeyMaterialTitleTaken}}}, fields)

	// Re-saving its own titles is not a collision.
	_, err = f.materials.Update(f.ctx, steel.ID, &MaterialInput{Title: lang("Acero", "Steel")})
	assert.NoError(t, err)
}

func TestMaterialDeleteUnlinksOffers(t *testing.T) {
	f := newCatalogFixture(t)
	leaf := f.leaf(t, f.root(t, "Hogar", "Home"), "Cocina", "Kitchen")
	steel, err := f.materials.Create(f.ctx, &MaterialInput{Title: lang("Acero", "Steel")})
	require.NoError(t, err)
	_, err = f.offers.Create(f.ctx, &OfferInput{Subcategory: uintPtr(leaf.ID), Title: lang("Olla", "Pot"), Materials: []uint{steel.ID}})
	require.NoError(t, err)

	result, err := f.materials.DeleteBulk(f.ctx, []uint{steel.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{steel.ID}, result.SuccessIDs)
	assert.Equal(t, int64(0), f.count(t, &models.OfferMaterial{}))
	assert.Equal(t, int64(1), f.count(t, &models.Offer{}))
}

func TestContactInfoUpdateReplacesPdf(t *testing.T) {
	f := newCatalogFixture(t)

	contact, err := f.contact.UpdateContactInfo(f.ctx, &ContactInfoInput{
		Email:       stringPtr("shop@example.com"),
		PdfPublicID: stringPtr("catalog-v1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", contact.Email)

	contact, err = f.contact.UpdateContactInfo(f.ctx, &ContactInfoInput{PdfPublicID: stringPtr("catalog-v2")})
	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", contact.Email)
	assert.Equal(t, "catalog-v2", contact.PdfPublicID)
	assert.Equal(t, []string{"catalog-v1"}, f.store.Removed())

	current, err := f.contact.GetContactInfo(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, contact.ID, current.ID)

	_, err = f.contact.UpdateContactInfo(f.ctx, &ContactInfoInput{Email: stringPtr("not-an-email")})
	fields, ok := apperror.FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "email", fields[0].Field)
}

func TestManufacturerLifecycle(t *testing.T) {
	f := newCatalogFixture(t)

	manufacturer, err := f.contact.CreateManufacturer(f.ctx, &ManufacturerInput{Name: stringPtr("Acme"), LogoPublicID: stringPtr("logo-1")})
	require.NoError(t, err)

	_, err = f.contact.UpdateManufacturer(f.ctx, manufacturer.ID, &ManufacturerInput{LogoPublicID: stringPtr("logo-2")})
	require.NoError(t, err)
	assert.Equal(t, []string{"logo-1"}, f.store.Removed())

	result, err := f.contact.DeleteManufacturerBulk(f.ctx, []uint{manufacturer.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{manufacturer.ID}, result.SuccessIDs)
	assert.Equal(t, []string{"logo-1", "logo-2"}, f.store.Removed())

	_, err = f.contact.CreateManufacturer(f.ctx, &ManufacturerInput{})
	fields, ok := apperror.FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "name", fields[0].Field)
}

func TestMessagesAreMarkedReadWhenOpened(t *testing.T) {
	f := newCatalogFixture(t)

	message, err := f.contact.CreateMessage(f.ctx, &MessageInput{
		Name:    "Ana",
		Email:   "ana@example.com",
		Topic:   "Precio",
		Message: "¿Tienen envíos?",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusUnread, message.Status)

	opened, err := f.contact.ReadMessage(f.ctx, message.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusRead, opened.Status)

	messages, total, err := f.contact.ListMessages(f.ctx, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, models.MessageStatusRead, messages[0].Status)

	result, err := f.contact.DeleteMessageBulk(f.ctx, []uint{message.ID, 42})
	require.NoError(t, err)
	assert.Equal(t, []uint{message.ID}, result.SuccessIDs)

	_, err = f.contact.ReadMessage(f.ctx, message.ID)
	assert.ErrorIs(t, err, apperror.ErrDoesNotExist)
}

func TestCreateMessageValidation(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.contact.CreateMessage(f.ctx, &MessageInput{Name: "Ana", Email: "bad", Topic: "x", Message: "hi"})
	fields, ok := apperror.FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "email", fields[0].Field)
}
