// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess      = "success"
	KeyDoesNotExist = "common.does_not_exist"
	KeyRateLimited  = "common.rate_limited"

	// Authentication
	KeyAuthLoginRequired        = "auth.login_required"
	KeyAuthPermissionDenied     = "auth.permission_denied"
	KeyAuthAuthenticationFailed = "auth.authentication_failed"
	KeyAuthInvalidCredentials   = "auth.invalid_credentials"
	KeyAuthWrongPassword        = "auth.wrong_password"
	KeyAuthLogoutSuccess        = "auth.logout_success"

	// Categories
	KeyCategoryDoesNotExist     = "category.does_not_exist"
	KeyCategoryTitleTaken       = "category.title_taken"
	KeyCategoryParentNotFound   = "category.parent_not_found"
	KeyCategoryParentSelf       = "category.parent_self"
	KeyCategoryParentNotRoot    = "category.parent_not_root"
	KeyCategoryHasSubcategories = "category.has_subcategories"
	KeyCategoryHasOffers        = "category.has_offers"
	KeyCategoryLookupAmbiguous  = "category.lookup_ambiguous"

	// Offers
	KeyOfferSubcategoryRequired = "offer.subcategory_required"
	KeyOfferSubcategoryNotFound = "offer.subcategory_not_found"
	KeyOfferMaterialNotFound    = "offer.material_not_found"

	// Materials
	KeyMaterialTitleTaken = "material.title_taken"

	// Messages
	KeyMessageSent = "message.sent"

	// Validation
	KeyValidationInvalid       = "validation.invalid"
	KeyValidationDuplicateName = "validation.duplicate_name"
	KeyValidationNotSluggable  = "validation.not_sluggable"
)
