// internal/models/contact.go
package models

type ContactInfo struct {
	BaseModel
	Email       string `json:"email" gorm:"size:255"`
	Phone       string `json:"phone" gorm:"size:64"`
	Address     string `json:"address" gorm:"type:text"`
	Twitter     string `json:"twitter" gorm:"size:255"`
	Facebook    string `json:"facebook" gorm:"size:255"`
	Linkedin    string `json:"linkedin" gorm:"size:255"`
	About       string `json:"about" gorm:"type:text"`
	PdfURL      string `json:"pdf_url" gorm:"size:1024"`
	PdfPublicID string `json:"pdf_public_id" gorm:"size:255"`
}

type Manufacturer struct {
	BaseModel
	Name         string `json:"name" gorm:"size:255;not null"`
	LogoURL      string `json:"logo_url" gorm:"size:1024"`
	LogoPublicID string `json:"logo_public_id" gorm:"size:255"`
}

type Message struct {
	BaseModel
	Name    string        `json:"name" gorm:"size:255;not null"`
	Email   string        `json:"email" gorm:"size:255;not null"`
	Topic   string        `json:"topic" gorm:"size:255;not null"`
	Message string        `json:"message" gorm:"type:text;not null"`
	Status  MessageStatus `json:"status" gorm:"type:varchar(10);not null;index"`
}
