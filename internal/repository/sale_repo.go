package repository

import (
	"context"

	"anypos/internal/dto"
	"anypos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(ctx context.Context, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	Save(ctx context.Context, s *model.Sale) error
	NextReferenceNumber(ctx context.Context) (int, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) Create(ctx context.Context, s *model.Sale) error {
	// Items are created in the same insert via the association
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) Save(ctx context.Context, s *model.Sale) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *saleRepo) NextReferenceNumber(ctx context.Context) (int, error) {
	// PostgreSQL sequence for atomic reference number generation,
	// created by the schema patches in infra.NewDatabase.
	var num int
	err := r.db.WithContext(ctx).Raw("SELECT nextval('sales_reference_seq')").Scan(&num).Error
	return num, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Sale{})

	switch filter.Status {
	case "", "all":
	case model.SaleVoided:
		q = q.Where("deleted = true")
	default:
		q = q.Where("status = ? AND deleted = false", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		// Default: today
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error

	return sales, total, err
}
