// internal/models/offer.go
package models

import "time"

type Offer struct {
	BaseModel
	TitleEs            string    `json:"title_es" gorm:"size:255;not null"`
	TitleEn            string    `json:"title_en" gorm:"size:255;not null"`
	DescriptionEs      string    `json:"description_es" gorm:"type:text"`
	DescriptionEn      string    `json:"description_en" gorm:"type:text"`
	ShortDescriptionEs string    `json:"short_description_es" gorm:"size:512"`
	ShortDescriptionEn string    `json:"short_description_en" gorm:"size:512"`
	Price              *float64  `json:"price" gorm:"type:decimal(12,2);index"`
	Currency           *Currency `json:"currency" gorm:"size:3"`
	SubcategoryID      uint      `json:"subcategory_id" gorm:"not null;index"`
	// Slugs and permalinks are null between the two save phases.
	SlugEs      *string `json:"slug_es" gorm:"uniqueIndex;size:512"`
	SlugEn      *string `json:"slug_en" gorm:"uniqueIndex;size:512"`
	PermalinkEs *string `json:"permalink_es" gorm:"uniqueIndex;size:1024"`
	PermalinkEn *string `json:"permalink_en" gorm:"uniqueIndex;size:1024"`
	OnSale      bool    `json:"on_sale" gorm:"not null;index"`
	Recommended bool    `json:"recommended" gorm:"not null;index"`

	// Relationships
	Subcategory *Category `json:"subcategory,omitempty" gorm:"foreignKey:SubcategoryID"`
	Images      []Image   `json:"images,omitempty" gorm:"foreignKey:OfferID"`
}

type Image struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	URL       string    `json:"url" gorm:"size:1024;not null"`
	PublicID  string    `json:"public_id" gorm:"size:255;index"`
	OfferID   uint      `json:"offer_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

type Material struct {
	BaseModel
	TitleEs string `json:"title_es" gorm:"uniqueIndex;size:255;not null"`
	TitleEn string `json:"title_en" gorm:"uniqueIndex;size:255;not null"`
}

type OfferMaterial struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	OfferID    uint `json:"offer_id" gorm:"not null;uniqueIndex:idx_offer_material"`
	MaterialID uint `json:"material_id" gorm:"not null;uniqueIndex:idx_offer_material;index"`
}
