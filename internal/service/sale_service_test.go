package service_test

import (
	"context"
	"strings"
	"testing"

	"anypos/internal/dto"
	"anypos/internal/model"
	"anypos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSaleComputesTotals(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := service.NewSaleService(repo)

	resp, err := svc.Register(context.Background(), uuid.New(), dto.RegisterSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductName: "Coffee", ProductCode: "COF-01", Quantity: 2, UnitPrice: mustDecimal("3.50")},
			{ProductName: "Croissant", ProductCode: "CRO-01", Quantity: 1, UnitPrice: mustDecimal("2.00"), Discount: mustDecimal("0.50"), Tax: mustDecimal("0.25")},
		},
		PaymentMethod: model.PaymentCash,
		AmountPaid:    mustDecimal("10.00"),
	})

	require.NoError(t, err)
	// Line 1: 2 × 3.50 = 7.00; line 2: 2.00 − 0.50 + 0.25 = 1.75
	assert.Equal(t, "8.75", resp.Total.String())
	assert.Equal(t, "0.5", resp.Discount.String())
	assert.Equal(t, "0.25", resp.Tax.String())
	assert.Equal(t, "1.25", resp.Change.String())
	assert.Equal(t, model.SaleCompleted, resp.Status)
	assert.Len(t, resp.Items, 2)
	assert.True(t, strings.HasPrefix(resp.ReferenceNumber, "S-"))
}

func TestRegisterSaleNegativeLine(t *testing.T) {
	svc := service.NewSaleService(newFakeSaleRepo())

	_, err := svc.Register(context.Background(), uuid.New(), dto.RegisterSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductName: "Coffee", ProductCode: "COF-01", Quantity: 1, UnitPrice: mustDecimal("2.00"), Discount: mustDecimal("5.00")},
		},
		PaymentMethod: model.PaymentCash,
	})
	assert.ErrorIs(t, err, service.ErrNegativeAmount)
}

func TestVoidSale(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := service.NewSaleService(repo)
	cashierID := uuid.New()

	saleID := seedSale(repo, cashierID, "20.00", "0", "0", model.PaymentCash)

	require.NoError(t, svc.Void(context.Background(), saleID, "customer refund"))

	stored := repo.sales[saleID]
	assert.True(t, stored.Deleted)
	assert.Equal(t, model.SaleVoided, stored.Status)
	require.NotNil(t, stored.Notes)
	assert.Contains(t, *stored.Notes, "customer refund")
}

func TestVoidSaleTwice(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := service.NewSaleService(repo)

	saleID := seedSale(repo, uuid.New(), "20.00", "0", "0", model.PaymentCash)
	require.NoError(t, svc.Void(context.Background(), saleID, ""))

	err := svc.Void(context.Background(), saleID, "")
	assert.ErrorIs(t, err, service.ErrSaleVoided)
}

func TestGetSaleNotFound(t *testing.T) {
	svc := service.NewSaleService(newFakeSaleRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrSaleNotFound)
}

func TestListSalesFiltersVoided(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := service.NewSaleService(repo)
	cashierID := uuid.New()

	seedSale(repo, cashierID, "10.00", "0", "0", model.PaymentCash)
	voided := seedSale(repo, cashierID, "30.00", "0", "0", model.PaymentCard)
	require.NoError(t, svc.Void(context.Background(), voided, ""))

	completed, err := svc.List(context.Background(), dto.SaleFilter{Status: model.SaleCompleted, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, completed.Data, 1)
	assert.Equal(t, "10", completed.Data[0].Total.String())

	voidedList, err := svc.List(context.Background(), dto.SaleFilter{Status: model.SaleVoided, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, voidedList.Data, 1)
	assert.Equal(t, model.SaleVoided, voidedList.Data[0].Status)
}
