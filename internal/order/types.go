package order

import "github.com/shopspring/decimal"

// BuyerType tells whether the buyer is a natural person or a company.
type BuyerType int

const (
	BuyerPerson BuyerType = iota
	BuyerCompany
)

func (t BuyerType) String() string {
	if t == BuyerCompany {
		return "company"
	}
	return "person"
}

// PaymentMethod supported by the gateway.
type PaymentMethod int

const (
	PaymentInvoice PaymentMethod = iota // boleto
	PaymentCreditCardVisa
)

func (m PaymentMethod) String() string {
	if m == PaymentCreditCardVisa {
		return "credit_card_visa"
	}
	return "invoice"
}

// AddressKind selects the address slot written by SetAddress.
type AddressKind int

const (
	AddressShipping AddressKind = iota
	AddressBilling
)

// DiscountType is either a flat amount or a percentage of the subtotal.
type DiscountType int

const (
	DiscountFlat DiscountType = iota
	DiscountPercentage
)

func (t DiscountType) String() string {
	if t == DiscountPercentage {
		return "percentage"
	}
	return "flat"
}

// BuyerInfo holds the buyer identification. TaxID is the CPF; CompanyTaxID
// (CNPJ) and CompanyName are required only for company buyers.
type BuyerInfo struct {
	Name         string
	Email        string
	TaxID        string
	RG           string
	AreaCode     string
	Phone        string
	CompanyTaxID string
	CompanyName  string
}

// Address is a postal address. Complement is the only optional field.
type Address struct {
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	ZipCode    string
	State      string
}

// Product is one cart line. AccumulatedAmount is the sum of the rounded
// amounts of every AddProduct call made for this id.
type Product struct {
	ID                string
	Description       string
	UnitValue         decimal.Decimal
	Quantity          int
	AccumulatedAmount decimal.Decimal
}

// Discount applied over the order subtotal.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}
