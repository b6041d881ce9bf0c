package models

import (
	"time"

	"github.com/kitroom/kitroom-backend/pkg/enums"
)

// UniformMedia stores the shared display assets for a uniform type. Media is
// keyed by (category, type) and shared across every size of that type. Only
// URLs are kept here; file storage lives outside this service.
type UniformMedia struct {
	Category     enums.Category `gorm:"column:category;primaryKey" json:"category"`
	Type         string         `gorm:"column:type;primaryKey" json:"type"`
	ImageURL     *string        `gorm:"column:image_url" json:"image_url,omitempty"`
	SizeChartURL *string        `gorm:"column:size_chart_url" json:"size_chart_url,omitempty"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName implements the gorm naming override.
func (UniformMedia) TableName() string {
	return "uniform_media"
}
