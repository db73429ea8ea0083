package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-pagamentocerto/internal/order"
	"github.com/imrishuroy/go-pagamentocerto/internal/payerr"
	"github.com/imrishuroy/go-pagamentocerto/internal/validation"
)

func TestBuildOrder(t *testing.T) {
	addr := &validation.Address{
		Street: "Rua Fulano", Number: "100", District: "Centro",
		City: "Sao Paulo", ZipCode: "01000-000", State: "SP",
	}
	req := validation.CheckoutRequest{
		OrderID: "40",
		Buyer: &validation.Buyer{
			Type: "company", Name: "Loja Teste", Email: "compras@loja.com.br", TaxID: "00000000000",
			CompanyTaxID: "12345678000199", CompanyName: "Loja Teste Ltda",
		},
		PaymentMethod: "credit_card_visa",
		Items: []validation.Item{
			{ID: "1", Description: "Caneta", Quantity: "3", UnitValue: "5.50"},
			{ID: "2", Description: "Caderno", Quantity: "2", UnitValue: "30.90"},
			{ID: "3", Description: "Borracha", Quantity: "1", UnitValue: "9.60"},
			{ID: "1", Description: "Caneta", Quantity: "1", UnitValue: "5.50"},
		},
		ShippingAddress: addr,
		BillingAddress:  addr,
		Discount:        &validation.Discount{Type: "percentage", Value: "15"},
		ShippingValue:   "15.20",
		OtherCharges:    "5.30",
	}

	o, err := buildOrder(req)
	require.NoError(t, err)

	assert.Equal(t, 40, o.OrderID())
	assert.Equal(t, order.BuyerCompany, o.BuyerType())
	assert.Equal(t, order.PaymentCreditCardVisa, o.PaymentMethod())

	qty, ok := o.ProductQuantity("1")
	require.True(t, ok)
	assert.Equal(t, 4, qty)
	assert.Len(t, o.Products(), 3)

	subtotal, ok := o.Subtotal()
	require.True(t, ok)
	assert.Equal(t, "93.40", subtotal.StringFixed(2))

	_, hasShipping := o.ShippingAddress()
	_, hasBilling := o.BillingAddress()
	assert.True(t, hasShipping)
	assert.True(t, hasBilling)

	// 93.40 - 15% = 79.39, + 15.20 + 5.30
	assert.Equal(t, "99.89", o.TotalAmount().StringFixed(2))
}

func TestBuildOrder_Errors(t *testing.T) {
	base := func() validation.CheckoutRequest {
		return validation.CheckoutRequest{
			Buyer: &validation.Buyer{Name: "Maria", Email: "maria@example.com", TaxID: "123"},
			Items: []validation.Item{{ID: "1", Description: "Caneta", Quantity: "1", UnitValue: "5.50"}},
		}
	}

	cases := []struct {
		name   string
		mutate func(*validation.CheckoutRequest)
		want   error
	}{
		{"bad order id", func(r *validation.CheckoutRequest) { r.OrderID = "x1" }, payerr.ErrInvalidParameter},
		{"zero unit value", func(r *validation.CheckoutRequest) { r.Items[0].UnitValue = "0" }, payerr.ErrMissingParameter},
		{"incomplete address", func(r *validation.CheckoutRequest) {
			r.ShippingAddress = &validation.Address{Street: "Rua"}
		}, payerr.ErrMissingParameter},
		{"percentage over 100", func(r *validation.CheckoutRequest) {
			r.Discount = &validation.Discount{Type: "percentage", Value: "101"}
		}, payerr.ErrInvalidParameter},
		{"bad shipping value", func(r *validation.CheckoutRequest) { r.ShippingValue = "1,50" }, payerr.ErrInvalidParameter},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.mutate(&req)
			_, err := buildOrder(req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
