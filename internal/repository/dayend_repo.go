package repository

import (
	"context"
	"time"

	"anypos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DayEndRepository persists day-end sessions and their sale links.
//
// Methods taking a tx run inside the caller's transaction; the service layer
// owns transaction boundaries so that recompute-then-freeze sequences commit
// atomically. A nil tx falls back to the base connection (unit-test fakes
// ignore the argument entirely).
type DayEndRepository interface {
	Create(ctx context.Context, d *model.DayEnd) error
	FindOpenByCashierAndDay(ctx context.Context, cashierID uuid.UUID, day time.Time) (*model.DayEnd, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.DayEnd, error)
	// FindByIDForUpdate locks the day-end row until the transaction commits.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.DayEnd, error)
	Save(ctx context.Context, tx *gorm.DB, d *model.DayEnd) error
	List(ctx context.Context, page, limit int) ([]model.DayEnd, int64, error)
	ListByCashier(ctx context.Context, cashierID uuid.UUID, page, limit int) ([]model.DayEnd, int64, error)

	// CreateLink inserts the (day_end, sale) association. Returns false when
	// the pair already existed (the unique index absorbed the insert).
	CreateLink(ctx context.Context, tx *gorm.DB, l *model.DayEndSale) (bool, error)
	FindLink(ctx context.Context, dayEndID, saleID uuid.UUID) (*model.DayEndSale, error)
	// LinkedSales returns every non-voided sale linked to the day-end.
	LinkedSales(ctx context.Context, tx *gorm.DB, dayEndID uuid.UUID) ([]model.Sale, error)

	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type dayEndRepo struct{ db *gorm.DB }

func NewDayEndRepository(db *gorm.DB) DayEndRepository { return &dayEndRepo{db: db} }

func (r *dayEndRepo) DB() *gorm.DB { return r.db }

func (r *dayEndRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *dayEndRepo) Create(ctx context.Context, d *model.DayEnd) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *dayEndRepo) FindOpenByCashierAndDay(ctx context.Context, cashierID uuid.UUID, day time.Time) (*model.DayEnd, error) {
	var d model.DayEnd
	err := r.db.WithContext(ctx).
		Where("cashier_id = ? AND is_closed = false AND DATE(opened_at) = ?", cashierID, day.Format("2006-01-02")).
		First(&d).Error
	return &d, err
}

func (r *dayEndRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.DayEnd, error) {
	var d model.DayEnd
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *dayEndRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.DayEnd, error) {
	var d model.DayEnd
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&d, "id = ?", id).Error
	return &d, err
}

func (r *dayEndRepo) Save(ctx context.Context, tx *gorm.DB, d *model.DayEnd) error {
	return r.conn(tx).WithContext(ctx).Save(d).Error
}

func (r *dayEndRepo) List(ctx context.Context, page, limit int) ([]model.DayEnd, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&model.DayEnd{}), page, limit)
}

func (r *dayEndRepo) ListByCashier(ctx context.Context, cashierID uuid.UUID, page, limit int) ([]model.DayEnd, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.DayEnd{}).Where("cashier_id = ?", cashierID)
	return r.list(ctx, q, page, limit)
}

func (r *dayEndRepo) list(_ context.Context, q *gorm.DB, page, limit int) ([]model.DayEnd, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var dayEnds []model.DayEnd
	err := q.Order("opened_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&dayEnds).Error
	return dayEnds, total, err
}

func (r *dayEndRepo) CreateLink(ctx context.Context, tx *gorm.DB, l *model.DayEndSale) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day_end_id"}, {Name: "sale_id"}},
			DoNothing: true,
		}).
		Create(l)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *dayEndRepo) FindLink(ctx context.Context, dayEndID, saleID uuid.UUID) (*model.DayEndSale, error) {
	var l model.DayEndSale
	err := r.db.WithContext(ctx).
		Where("day_end_id = ? AND sale_id = ?", dayEndID, saleID).
		First(&l).Error
	return &l, err
}

func (r *dayEndRepo) LinkedSales(ctx context.Context, tx *gorm.DB, dayEndID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.conn(tx).WithContext(ctx).
		Joins("JOIN day_end_sales ON day_end_sales.sale_id = sales.id").
		Where("day_end_sales.day_end_id = ? AND sales.deleted = false", dayEndID).
		Find(&sales).Error
	return sales, err
}
