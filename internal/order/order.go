package order

import (
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-pagamentocerto/internal/payerr"
)

var hundred = decimal.NewFromInt(100)

// Order is the purchase being assembled before it is sent to the gateway.
// Every mutating method validates its input fully before touching state, so a
// returned error always leaves the order as it was.
//
// Order is not safe for concurrent use.
type Order struct {
	orderID       int
	buyerType     BuyerType
	buyerInfo     BuyerInfo
	paymentMethod PaymentMethod

	shippingAddress *Address
	billingAddress  *Address

	products     map[string]*Product
	productOrder []string

	discount      *Discount
	shippingValue decimal.Decimal
	otherCharges  decimal.Decimal
}

// New returns an empty order paid by invoice.
func New() *Order {
	return &Order{
		products:      map[string]*Product{},
		paymentMethod: PaymentInvoice,
	}
}

func (o *Order) SetOrderID(id int) { o.orderID = id }

func (o *Order) OrderID() int { return o.orderID }

// SetBuyerInfo stores the buyer. name, email and cpf are always required;
// company buyers also need cnpj and companyName.
func (o *Order) SetBuyerInfo(info BuyerInfo, buyerType BuyerType) error {
	required := []field{
		{"name", info.Name},
		{"email", info.Email},
		{"cpf", info.TaxID},
	}
	if buyerType == BuyerCompany {
		required = append(required, field{"cnpj", info.CompanyTaxID}, field{"companyName", info.CompanyName})
	}
	if name := firstEmpty(required); name != "" {
		return payerr.Missing("buyer's %s is required", name)
	}

	o.buyerType = buyerType
	o.buyerInfo = info
	return nil
}

func (o *Order) BuyerInfo() BuyerInfo { return o.buyerInfo }

func (o *Order) BuyerType() BuyerType { return o.buyerType }

func (o *Order) SetPaymentMethod(m PaymentMethod) error {
	switch m {
	case PaymentInvoice, PaymentCreditCardVisa:
		o.paymentMethod = m
		return nil
	default:
		return payerr.Invalid("payment method %d is not supported", int(m))
	}
}

func (o *Order) PaymentMethod() PaymentMethod { return o.paymentMethod }

// AddProduct adds quantity units of a product to the cart. Adding an id that
// already exists sums the quantity and the rounded line amount of this call
// into the existing line; the unit value must match the stored one.
func (o *Order) AddProduct(id, description string, quantity int, unitValue decimal.Decimal) error {
	if id == "" {
		return payerr.Missing("product id not specified")
	}
	if description == "" {
		return payerr.Missing("product description not specified")
	}
	if quantity == 0 {
		return payerr.Missing("product quantity not specified")
	}
	if unitValue.IsZero() {
		return payerr.Missing("product value not specified")
	}
	if quantity < 0 {
		return payerr.Invalid("product quantity must be a positive integer")
	}
	if unitValue.IsNegative() {
		return payerr.Invalid("product value must not be negative")
	}

	lineAmount := unitValue.Mul(decimal.NewFromInt(int64(quantity))).Round(2)

	if p, ok := o.products[id]; ok {
		if !p.UnitValue.Equal(unitValue) {
			return payerr.Mismatch("the product with id %s has value %s", id, p.UnitValue.String())
		}
		p.Quantity += quantity
		p.AccumulatedAmount = p.AccumulatedAmount.Add(lineAmount)
		return nil
	}

	o.products[id] = &Product{
		ID:                id,
		Description:       description,
		UnitValue:         unitValue,
		Quantity:          quantity,
		AccumulatedAmount: lineAmount,
	}
	o.productOrder = append(o.productOrder, id)
	return nil
}

// Products returns a copy of the cart lines in the order they were first added.
func (o *Order) Products() []Product {
	out := make([]Product, 0, len(o.productOrder))
	for _, id := range o.productOrder {
		out = append(out, *o.products[id])
	}
	return out
}

func (o *Order) ProductTotalAmount(id string) (decimal.Decimal, bool) {
	p, ok := o.products[id]
	if !ok {
		return decimal.Zero, false
	}
	return p.AccumulatedAmount, true
}

func (o *Order) ProductQuantity(id string) (int, bool) {
	p, ok := o.products[id]
	if !ok {
		return 0, false
	}
	return p.Quantity, true
}

// SetAddress validates and stores an address in the slot selected by kind.
func (o *Order) SetAddress(kind AddressKind, a Address) error {
	if kind != AddressShipping && kind != AddressBilling {
		return payerr.Invalid("unknown address type: %d", int(kind))
	}
	missing := firstEmpty([]field{
		{"street", a.Street},
		{"number", a.Number},
		{"district", a.District},
		{"city", a.City},
		{"zipCode", a.ZipCode},
		{"state", a.State},
	})
	if missing != "" {
		return payerr.Missing("address %s is required", missing)
	}

	stored := a
	if kind == AddressBilling {
		o.billingAddress = &stored
	} else {
		o.shippingAddress = &stored
	}
	return nil
}

func (o *Order) SetShippingAddress(a Address) error { return o.SetAddress(AddressShipping, a) }

func (o *Order) SetBillingAddress(a Address) error { return o.SetAddress(AddressBilling, a) }

func (o *Order) ShippingAddress() (Address, bool) {
	if o.shippingAddress == nil {
		return Address{}, false
	}
	return *o.shippingAddress, true
}

func (o *Order) BillingAddress() (Address, bool) {
	if o.billingAddress == nil {
		return Address{}, false
	}
	return *o.billingAddress, true
}

// SetDiscount sets the order discount. The cart must not be empty. A flat
// discount must be in [0, subtotal) and a percentage in [0, 100].
func (o *Order) SetDiscount(value decimal.Decimal, discountType DiscountType) error {
	subtotal, ok := o.Subtotal()
	if !ok {
		return payerr.NoProducts("cannot set discount without products")
	}

	switch discountType {
	case DiscountFlat:
		if value.IsNegative() {
			return payerr.Invalid("discount must be a positive value")
		}
		if value.GreaterThanOrEqual(subtotal) {
			return payerr.Invalid("discount cannot be greater than the subtotal")
		}
	case DiscountPercentage:
		if value.IsNegative() || value.GreaterThan(hundred) {
			return payerr.Invalid("discount value %s is not a valid percentage", value.String())
		}
	default:
		return payerr.Invalid("unknown discount type: %d", int(discountType))
	}

	o.discount = &Discount{Type: discountType, Value: value}
	return nil
}

func (o *Order) Discount() (Discount, bool) {
	if o.discount == nil {
		return Discount{}, false
	}
	return *o.discount, true
}

// Subtotal is the sum of every line's accumulated amount. The second result
// is false when the cart is empty.
func (o *Order) Subtotal() (decimal.Decimal, bool) {
	if len(o.productOrder) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, id := range o.productOrder {
		sum = sum.Add(o.products[id].AccumulatedAmount)
	}
	return sum, true
}

// ApplyDiscount returns value with the order discount applied. Only the
// percentage result is rounded to cents.
func (o *Order) ApplyDiscount(value decimal.Decimal) decimal.Decimal {
	if o.discount == nil {
		return value
	}
	if o.discount.Type == DiscountPercentage {
		off := value.Mul(o.discount.Value).Div(hundred)
		return value.Sub(off).Round(2)
	}
	return value.Sub(o.discount.Value)
}

// CalculatedDiscount is the amount taken off the subtotal.
func (o *Order) CalculatedDiscount() decimal.Decimal {
	subtotal, _ := o.Subtotal()
	return subtotal.Sub(o.ApplyDiscount(subtotal))
}

// TotalAmount is the discounted subtotal plus shipping and other charges.
// The sum itself is not rounded.
func (o *Order) TotalAmount() decimal.Decimal {
	subtotal, _ := o.Subtotal()
	return o.ApplyDiscount(subtotal).Add(o.shippingValue).Add(o.otherCharges)
}

func (o *Order) SetShippingValue(v decimal.Decimal) { o.shippingValue = v }

func (o *Order) ShippingValue() decimal.Decimal { return o.shippingValue }

func (o *Order) SetOtherCharges(v decimal.Decimal) { o.otherCharges = v }

func (o *Order) OtherCharges() decimal.Decimal { return o.otherCharges }

type field struct {
	name  string
	value string
}

// firstEmpty returns the name of the first field with an empty value.
func firstEmpty(fields []field) string {
	for _, f := range fields {
		if f.value == "" {
			return f.name
		}
	}
	return ""
}
