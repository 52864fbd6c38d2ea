package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anypos/internal/dto"
	"anypos/internal/model"
	"anypos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	Register(ctx context.Context, cashierID uuid.UUID, req dto.RegisterSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	// Void soft-deletes a sale. Day-end recomputes skip voided sales, so
	// voiding a linked sale corrects the session totals on the next recompute.
	Void(ctx context.Context, id uuid.UUID, reason string) error
}

type saleService struct {
	repo repository.SaleRepository
}

func NewSaleService(repo repository.SaleRepository) SaleService {
	return &saleService{repo: repo}
}

// ── Register ──────────────────────────────────────────────────────────────────

func (s *saleService) Register(ctx context.Context, cashierID uuid.UUID, req dto.RegisterSaleRequest) (*dto.SaleResponse, error) {
	subtotal := decimal.Zero
	discount := decimal.Zero
	tax := decimal.Zero

	items := make([]model.SaleItem, len(req.Items))
	for i, item := range req.Items {
		lineSubtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).
			Sub(item.Discount).Add(item.Tax)
		if lineSubtotal.IsNegative() {
			return nil, ErrNegativeAmount
		}
		subtotal = subtotal.Add(lineSubtotal)
		discount = discount.Add(item.Discount)
		tax = tax.Add(item.Tax)
		items[i] = model.SaleItem{
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			Tax:         item.Tax,
			Subtotal:    lineSubtotal,
		}
	}
	total := subtotal

	change := decimal.Zero
	if req.AmountPaid.GreaterThan(total) {
		change = req.AmountPaid.Sub(total)
	}

	refNum, err := s.repo.NextReferenceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("sale reference number: %w", err)
	}

	sale := &model.Sale{
		ReferenceNumber: fmt.Sprintf("S-%s-%06d", time.Now().Format("20060102"), refNum),
		CashierID:       cashierID,
		Subtotal:        subtotal,
		Discount:        discount,
		Tax:             tax,
		Total:           total,
		AmountPaid:      req.AmountPaid,
		Change:          change,
		PaymentMethod:   req.PaymentMethod,
		Status:          model.SaleCompleted,
		Notes:           req.Notes,
		Items:           items,
	}
	if err := s.repo.Create(ctx, sale); err != nil {
		return nil, err
	}

	return saleToResponse(sale), nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.SaleListResponse{
		Data:  make([]dto.SaleResponse, len(sales)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range sales {
		resp.Data[i] = *saleToResponse(&sales[i])
	}
	return resp, nil
}

// ── Void ──────────────────────────────────────────────────────────────────────

func (s *saleService) Void(ctx context.Context, id uuid.UUID, reason string) error {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSaleNotFound
		}
		return err
	}
	if sale.Deleted {
		return ErrSaleVoided
	}

	sale.Deleted = true
	sale.Status = model.SaleVoided
	if reason != "" {
		note := reason
		if sale.Notes != nil && *sale.Notes != "" {
			note = *sale.Notes + " | " + reason
		}
		sale.Notes = &note
	}
	return s.repo.Save(ctx, sale)
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, len(sale.Items))
	for i, item := range sale.Items {
		items[i] = dto.SaleItemResponse{
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			Tax:         item.Tax,
			Subtotal:    item.Subtotal,
		}
	}
	return &dto.SaleResponse{
		ID:              sale.ID.String(),
		ReferenceNumber: sale.ReferenceNumber,
		CashierID:       sale.CashierID.String(),
		Subtotal:        sale.Subtotal,
		Discount:        sale.Discount,
		Tax:             sale.Tax,
		Total:           sale.Total,
		AmountPaid:      sale.AmountPaid,
		Change:          sale.Change,
		PaymentMethod:   sale.PaymentMethod,
		Status:          sale.Status,
		Notes:           sale.Notes,
		Items:           items,
		CreatedAt:       sale.CreatedAt.Format(time.RFC3339),
	}
}
