package model

import "gorm.io/gorm"

// Category: categories
type Category struct {
	CategoryID string `gorm:"type:uuid;primaryKey"                   json:"category_id"`
	Name       string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	BaseModel
}

// TableName categories
func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(_ *gorm.DB) error {
	if c.CategoryID == "" {
		c.CategoryID = newID()
	}
	return nil
}
