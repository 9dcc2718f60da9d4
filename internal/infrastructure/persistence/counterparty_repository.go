package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/partner"
	"github.com/Ali-Mohamed-1/Alyarmouk-Inventory-Manager-sub000/internal/domain/shared"
)

// GormCounterpartyRepository implements CounterpartyRepository using GORM
type GormCounterpartyRepository struct {
	db *gorm.DB
}

// NewGormCounterpartyRepository creates a new GormCounterpartyRepository
func NewGormCounterpartyRepository(db *gorm.DB) *GormCounterpartyRepository {
	return &GormCounterpartyRepository{db: db}
}

// FindByID finds a counterparty by ID
func (r *GormCounterpartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Counterparty, error) {
	var counterparty partner.Counterparty
	if err := r.db.WithContext(ctx).First(&counterparty, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &counterparty, nil
}

// FindActive returns active counterparties, paginated
func (r *GormCounterpartyRepository) FindActive(ctx context.Context, filter shared.Filter) (*shared.Paginated[partner.Counterparty], error) {
	query := r.db.WithContext(ctx).Model(&partner.Counterparty{}).Where("active = ?", true)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var counterparties []partner.Counterparty
	if err := query.
		Order("name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&counterparties).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(counterparties, total, page, pageSize)
	return &result, nil
}

// Save creates or updates a counterparty
func (r *GormCounterpartyRepository) Save(ctx context.Context, counterparty *partner.Counterparty) error {
	return r.db.WithContext(ctx).Save(counterparty).Error
}

// Ensure GormCounterpartyRepository implements CounterpartyRepository
var _ partner.CounterpartyRepository = (*GormCounterpartyRepository)(nil)
