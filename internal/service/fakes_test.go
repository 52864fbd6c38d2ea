package service_test

import (
	"context"
	"fmt"
	"time"

	"anypos/internal/dto"
	"anypos/internal/model"
	"anypos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── In-memory DayEndRepository ───────────────────────────────────────────────

type fakeDayEndRepo struct {
	dayEnds map[uuid.UUID]*model.DayEnd
	links   []model.DayEndSale
	sales   *fakeSaleRepo

	// failNextCreate simulates losing a concurrent-open race: the next Create
	// returns a duplicate-key error after storing a winner row.
	failNextCreate bool

	// afterFindOpen fires once when FindOpenByCashierAndDay hits. The caller
	// receives the pre-hook snapshot, simulating a concurrent writer that
	// commits after the unlocked lookup.
	afterFindOpen func(*model.DayEnd)
}

func newFakeDayEndRepo(sales *fakeSaleRepo) *fakeDayEndRepo {
	return &fakeDayEndRepo{
		dayEnds: make(map[uuid.UUID]*model.DayEnd),
		sales:   sales,
	}
}

func (r *fakeDayEndRepo) DB() *gorm.DB { return nil }

func (r *fakeDayEndRepo) Create(_ context.Context, d *model.DayEnd) error {
	if r.failNextCreate {
		r.failNextCreate = false
		winner := *d
		winner.ID = uuid.New()
		r.dayEnds[winner.ID] = &winner
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range r.dayEnds {
		if existing.CashierID == d.CashierID && !existing.IsClosed && sameDay(existing.OpenedAt, d.OpenedAt) {
			return gorm.ErrDuplicatedKey
		}
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.dayEnds[d.ID] = d
	return nil
}

func (r *fakeDayEndRepo) FindOpenByCashierAndDay(_ context.Context, cashierID uuid.UUID, day time.Time) (*model.DayEnd, error) {
	for _, d := range r.dayEnds {
		if d.CashierID == cashierID && !d.IsClosed && sameDay(d.OpenedAt, day) {
			if r.afterFindOpen != nil {
				hook := r.afterFindOpen
				r.afterFindOpen = nil
				stale := *d
				hook(d)
				return &stale, nil
			}
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDayEndRepo) FindByID(_ context.Context, id uuid.UUID) (*model.DayEnd, error) {
	d, ok := r.dayEnds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *fakeDayEndRepo) FindByIDForUpdate(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.DayEnd, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeDayEndRepo) Save(_ context.Context, _ *gorm.DB, d *model.DayEnd) error {
	r.dayEnds[d.ID] = d
	return nil
}

func (r *fakeDayEndRepo) List(_ context.Context, page, limit int) ([]model.DayEnd, int64, error) {
	all := make([]model.DayEnd, 0, len(r.dayEnds))
	for _, d := range r.dayEnds {
		all = append(all, *d)
	}
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *fakeDayEndRepo) ListByCashier(_ context.Context, cashierID uuid.UUID, page, limit int) ([]model.DayEnd, int64, error) {
	var all []model.DayEnd
	for _, d := range r.dayEnds {
		if d.CashierID == cashierID {
			all = append(all, *d)
		}
	}
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *fakeDayEndRepo) CreateLink(_ context.Context, _ *gorm.DB, l *model.DayEndSale) (bool, error) {
	for _, existing := range r.links {
		if existing.DayEndID == l.DayEndID && existing.SaleID == l.SaleID {
			return false, nil
		}
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	r.links = append(r.links, *l)
	return true, nil
}

func (r *fakeDayEndRepo) FindLink(_ context.Context, dayEndID, saleID uuid.UUID) (*model.DayEndSale, error) {
	for i := range r.links {
		if r.links[i].DayEndID == dayEndID && r.links[i].SaleID == saleID {
			return &r.links[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDayEndRepo) LinkedSales(_ context.Context, _ *gorm.DB, dayEndID uuid.UUID) ([]model.Sale, error) {
	var result []model.Sale
	for _, l := range r.links {
		sale, ok := r.sales.sales[l.SaleID]
		if ok && l.DayEndID == dayEndID && !sale.Deleted {
			result = append(result, *sale)
		}
	}
	return result, nil
}

var _ repository.DayEndRepository = (*fakeDayEndRepo)(nil)

// ── In-memory SaleRepository ─────────────────────────────────────────────────

type fakeSaleRepo struct {
	sales  map[uuid.UUID]*model.Sale
	nextNo int
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *fakeSaleRepo) Create(_ context.Context, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	r.sales[s.ID] = s
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeSaleRepo) Save(_ context.Context, s *model.Sale) error {
	r.sales[s.ID] = s
	return nil
}

func (r *fakeSaleRepo) NextReferenceNumber(_ context.Context) (int, error) {
	r.nextNo++
	return r.nextNo, nil
}

func (r *fakeSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var all []model.Sale
	for _, s := range r.sales {
		switch filter.Status {
		case "", "all":
		case model.SaleVoided:
			if !s.Deleted {
				continue
			}
		default:
			if s.Status != filter.Status || s.Deleted {
				continue
			}
		}
		all = append(all, *s)
	}
	return paginate(all, filter.Page, filter.Limit), int64(len(all)), nil
}

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

// ── helpers ──────────────────────────────────────────────────────────────────

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func paginate[T any](all []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = len(all)
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// seedSale stores a completed sale with a single total amount.
func seedSale(r *fakeSaleRepo, cashierID uuid.UUID, total, discount, tax, method string) uuid.UUID {
	id := uuid.New()
	r.sales[id] = &model.Sale{
		ID:              id,
		ReferenceNumber: fmt.Sprintf("S-TEST-%06d", len(r.sales)+1),
		CashierID:       cashierID,
		Subtotal:        mustDecimal(total),
		Discount:        mustDecimal(discount),
		Tax:             mustDecimal(tax),
		Total:           mustDecimal(total),
		AmountPaid:      mustDecimal(total),
		PaymentMethod:   method,
		Status:          model.SaleCompleted,
		CreatedAt:       time.Now(),
	}
	return id
}
