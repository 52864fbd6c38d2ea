package service

import (
	"context"
	"errors"
	"time"

	"anypos/internal/dto"
	"anypos/internal/model"
	"anypos/internal/repository"
	"anypos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type DayEndService interface {
	// Open returns the cashier's active day-end for today, creating it if
	// needed, and applies the optional opening-balance/notes overrides.
	Open(ctx context.Context, cashierID uuid.UUID, req dto.OpenDayEndRequest) (*dto.DayEndResponse, error)
	GetActive(ctx context.Context, cashierID uuid.UUID) (*dto.DayEndResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.DayEndResponse, error)
	List(ctx context.Context, page, limit int) (*dto.DayEndListResponse, error)
	CashierHistory(ctx context.Context, cashierID uuid.UUID, page, limit int) (*dto.DayEndListResponse, error)
	// AddSale links a sale into an open day-end and recomputes its totals.
	// Linking the same sale twice is a no-op.
	AddSale(ctx context.Context, dayEndID, saleID uuid.UUID) (*dto.DayEndResponse, error)
	// Close recomputes once more, records the counted cash and freezes the
	// day-end. The transition is terminal; repeat calls fail ErrDayEndClosed.
	Close(ctx context.Context, id uuid.UUID, req dto.CloseDayEndRequest) (*dto.DayEndResponse, error)
	Summary(ctx context.Context, id uuid.UUID) (*dto.DayEndSummary, error)
}

type dayEndService struct {
	repo       repository.DayEndRepository
	sales      repository.SaleRepository
	dispatcher *worker.Dispatcher // nil disables the closing-report pipeline
}

func NewDayEndService(repo repository.DayEndRepository, sales repository.SaleRepository, dispatcher *worker.Dispatcher) DayEndService {
	return &dayEndService{repo: repo, sales: sales, dispatcher: dispatcher}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *dayEndService) Open(ctx context.Context, cashierID uuid.UUID, req dto.OpenDayEndRequest) (*dto.DayEndResponse, error) {
	if req.OpeningBalance != nil && req.OpeningBalance.IsNegative() {
		return nil, ErrNegativeAmount
	}

	dayEnd, err := s.getOrCreateActive(ctx, cashierID)
	if err != nil {
		return nil, err
	}

	if req.OpeningBalance == nil && req.Notes == nil {
		return dayEndToResponse(dayEnd), nil
	}

	out := dayEnd
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Re-read under lock before writing the overrides: a Close committing
		// after the lookup above must not be overwritten by a stale full-row
		// save that would flip is_closed back.
		locked, err := s.repo.FindByIDForUpdate(ctx, tx, dayEnd.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDayEndNotFound
			}
			return err
		}
		if locked.IsClosed {
			return ErrDayEndClosed
		}
		if req.OpeningBalance != nil {
			locked.OpeningBalance = *req.OpeningBalance
		}
		if req.Notes != nil {
			locked.Notes = req.Notes
		}
		out = locked
		return s.repo.Save(ctx, tx, locked)
	})
	if err != nil {
		return nil, err
	}

	return dayEndToResponse(out), nil
}

// getOrCreateActive finds the open day-end whose opened_at falls on today's
// calendar date for the cashier, or creates one. The partial unique index on
// (cashier_id, date(opened_at)) WHERE NOT is_closed makes the check-then-act
// safe under concurrent callers: the loser of a create race gets a
// duplicate-key error and re-reads the winner's row.
func (s *dayEndService) getOrCreateActive(ctx context.Context, cashierID uuid.UUID) (*model.DayEnd, error) {
	today := time.Now()

	dayEnd, err := s.repo.FindOpenByCashierAndDay(ctx, cashierID, today)
	if err == nil {
		return dayEnd, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dayEnd = &model.DayEnd{
		CashierID: cashierID,
		OpenedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, dayEnd); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.repo.FindOpenByCashierAndDay(ctx, cashierID, today)
		}
		return nil, err
	}
	return dayEnd, nil
}

// ── GetActive / Get / lists ───────────────────────────────────────────────────

func (s *dayEndService) GetActive(ctx context.Context, cashierID uuid.UUID) (*dto.DayEndResponse, error) {
	dayEnd, err := s.repo.FindOpenByCashierAndDay(ctx, cashierID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveDayEnd
		}
		return nil, err
	}
	return dayEndToResponse(dayEnd), nil
}

func (s *dayEndService) Get(ctx context.Context, id uuid.UUID) (*dto.DayEndResponse, error) {
	dayEnd, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDayEndNotFound
		}
		return nil, err
	}
	return dayEndToResponse(dayEnd), nil
}

func (s *dayEndService) List(ctx context.Context, page, limit int) (*dto.DayEndListResponse, error) {
	dayEnds, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return dayEndsToList(dayEnds, total, page, limit), nil
}

func (s *dayEndService) CashierHistory(ctx context.Context, cashierID uuid.UUID, page, limit int) (*dto.DayEndListResponse, error) {
	dayEnds, total, err := s.repo.ListByCashier(ctx, cashierID, page, limit)
	if err != nil {
		return nil, err
	}
	return dayEndsToList(dayEnds, total, page, limit), nil
}

// ── AddSale ───────────────────────────────────────────────────────────────────

func (s *dayEndService) AddSale(ctx context.Context, dayEndID, saleID uuid.UUID) (*dto.DayEndResponse, error) {
	if _, err := s.sales.FindByID(ctx, saleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	var out *model.DayEnd
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Row lock serializes against a concurrent Close: whichever commits
		// first wins, a losing AddSale observes is_closed and has no effect.
		dayEnd, err := s.repo.FindByIDForUpdate(ctx, tx, dayEndID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDayEndNotFound
			}
			return err
		}
		if dayEnd.IsClosed {
			return ErrDayEndClosed
		}

		link := &model.DayEndSale{DayEndID: dayEnd.ID, SaleID: saleID}
		if _, err := s.repo.CreateLink(ctx, tx, link); err != nil {
			return err
		}

		if err := s.recompute(ctx, tx, dayEnd); err != nil {
			return err
		}
		out = dayEnd
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dayEndToResponse(out), nil
}

// ── recompute ─────────────────────────────────────────────────────────────────

// recompute derives all totals from scratch over the linked, non-voided sales
// and writes them back in the caller's transaction. Never incremental: a late
// link or a voided sale cannot cause drift, re-running always converges.
func (s *dayEndService) recompute(ctx context.Context, tx *gorm.DB, dayEnd *model.DayEnd) error {
	sales, err := s.repo.LinkedSales(ctx, tx, dayEnd.ID)
	if err != nil {
		return err
	}

	totals := sumSales(sales)

	dayEnd.TotalSalesCount = totals.count
	dayEnd.TotalRevenue = totals.revenue
	dayEnd.TotalDiscount = totals.discount
	dayEnd.TotalTax = totals.tax
	dayEnd.CashSales = totals.byMethod[model.PaymentCash]
	dayEnd.CardSales = totals.byMethod[model.PaymentCard]
	dayEnd.ChequeSales = totals.byMethod[model.PaymentCheque]
	dayEnd.OnlineSales = totals.byMethod[model.PaymentOnline]
	dayEnd.CreditSales = totals.byMethod[model.PaymentCredit]
	dayEnd.ExpectedCash = dayEnd.CashSales
	dayEnd.CashVariance = dayEnd.ActualCash.Sub(dayEnd.ExpectedCash)

	return s.repo.Save(ctx, tx, dayEnd)
}

// ── Close ─────────────────────────────────────────────────────────────────────

func (s *dayEndService) Close(ctx context.Context, id uuid.UUID, req dto.CloseDayEndRequest) (*dto.DayEndResponse, error) {
	if req.ActualCash.IsNegative() {
		return nil, ErrNegativeAmount
	}

	var out *model.DayEnd
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		dayEnd, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDayEndNotFound
			}
			return err
		}
		if dayEnd.IsClosed {
			return ErrDayEndClosed
		}

		// Final recompute inside the same transaction that freezes the row,
		// so no sale can slip in between totals and the closed flag.
		if err := s.recompute(ctx, tx, dayEnd); err != nil {
			return err
		}

		now := time.Now()
		dayEnd.ActualCash = req.ActualCash
		dayEnd.CashVariance = req.ActualCash.Sub(dayEnd.ExpectedCash)
		dayEnd.ClosingBalance = dayEnd.OpeningBalance.Add(dayEnd.TotalRevenue)
		if req.Notes != nil {
			dayEnd.Notes = req.Notes
		}
		dayEnd.IsClosed = true
		dayEnd.ClosedAt = &now

		out = dayEnd
		return s.repo.Save(ctx, tx, dayEnd)
	})
	if err != nil {
		return nil, err
	}

	s.enqueueClosingReport(ctx, out)

	return dayEndToResponse(out), nil
}

// enqueueClosingReport dispatches the async PDF/email pipeline. Failures are
// logged, never surfaced: reconciliation correctness does not depend on it.
func (s *dayEndService) enqueueClosingReport(ctx context.Context, dayEnd *model.DayEnd) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueDayEndReport(ctx, buildSummary(dayEnd)); err != nil {
		log.Error().Err(err).Str("day_end_id", dayEnd.ID.String()).Msg("failed to enqueue closing report")
	}
}

// ── Summary ───────────────────────────────────────────────────────────────────

func (s *dayEndService) Summary(ctx context.Context, id uuid.UUID) (*dto.DayEndSummary, error) {
	dayEnd, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDayEndNotFound
		}
		return nil, err
	}
	return buildSummary(dayEnd), nil
}
