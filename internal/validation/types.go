package validation

import "encoding/json"

// Amounts and counts are json.Number so that both 9.9 and "9.90" are
// accepted and parsed exactly, without going through float64.

// Buyer is the buyer block of a checkout.
type Buyer struct {
	Type         string `json:"type" validate:"omitempty,oneof=person company"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	TaxID        string `json:"cpf" validate:"required"`
	RG           string `json:"rg,omitempty"`
	AreaCode     string `json:"area_code,omitempty" validate:"omitempty,numeric,len=2"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,numeric"`
	CompanyTaxID string `json:"cnpj,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
}

// Item is a single cart line.
type Item struct {
	ID          string      `json:"id" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Quantity    json.Number `json:"quantity" validate:"required"`
	UnitValue   json.Number `json:"unit_value" validate:"required"`
}

// Address is a shipping or billing address.
type Address struct {
	Street     string `json:"street" validate:"required"`
	Number     string `json:"number" validate:"required"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district" validate:"required"`
	City       string `json:"city" validate:"required"`
	ZipCode    string `json:"zip_code" validate:"required"`
	State      string `json:"state" validate:"required,len=2"`
}

// Discount applied to the cart subtotal.
type Discount struct {
	Type  string      `json:"type" validate:"omitempty,oneof=flat percentage"`
	Value json.Number `json:"value" validate:"required"`
}

// CheckoutRequest is the payload for POST /transactions.
type CheckoutRequest struct {
	OrderID         json.Number `json:"order_id,omitempty"`
	Buyer           *Buyer      `json:"buyer" validate:"required"`
	PaymentMethod   string      `json:"payment_method,omitempty" validate:"omitempty,oneof=invoice credit_card_visa"`
	Items           []Item      `json:"items" validate:"required,min=1,dive"`
	ShippingAddress *Address    `json:"shipping_address,omitempty"`
	BillingAddress  *Address    `json:"billing_address,omitempty"`
	Discount        *Discount   `json:"discount,omitempty"`
	ShippingValue   json.Number `json:"shipping_value,omitempty"`
	OtherCharges    json.Number `json:"other_charges,omitempty"`
}
