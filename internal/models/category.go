// internal/models/category.go
package models

type Category struct {
	BaseModel
	TitleEs          string `json:"title_es" gorm:"size:255;not null"`
	TitleEn          string `json:"title_en" gorm:"size:255;not null"`
	DescriptionEs    string `json:"description_es" gorm:"type:text"`
	DescriptionEn    string `json:"description_en" gorm:"type:text"`
	SlugEs           string `json:"slug_es" gorm:"uniqueIndex;size:512;not null"`
	SlugEn           string `json:"slug_en" gorm:"uniqueIndex;size:512;not null"`
	Order            int    `json:"order" gorm:"column:sort_order;not null;default:0"`
	PosterURL        string `json:"poster_url" gorm:"size:512"`
	PosterPublicID   string `json:"poster_public_id" gorm:"size:255"`
	ParentCategoryID *uint  `json:"parent_category_id" gorm:"index"`

	// Relationships
	ParentCategory *Category  `json:"parent_category,omitempty" gorm:"foreignKey:ParentCategoryID"`
	Subcategories  []Category `json:"subcategories,omitempty" gorm:"foreignKey:ParentCategoryID"`
}

func (c *Category) IsRoot() bool {
	return c.ParentCategoryID == nil
}
