package waterobjects

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hydroatlas/internal/models"
)

// Provider is the read-only listing of registry water objects consumed by
// the document indexer.
type Provider struct {
	db *gorm.DB
}

// NewProvider creates a Provider.
func NewProvider(db *gorm.DB) *Provider {
	return &Provider{db: db}
}

// List returns all water objects ordered by name.
func (p *Provider) List(ctx context.Context) ([]models.WaterObject, error) {
	var objects []models.WaterObject
	if err := p.db.WithContext(ctx).Order("name").Find(&objects).Error; err != nil {
		return nil, fmt.Errorf("list water objects: %w", err)
	}
	return objects, nil
}
