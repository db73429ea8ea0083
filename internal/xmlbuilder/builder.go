// Package xmlbuilder serializes an order into the request document accepted by
// the seller web service (IniciaTransacao).
package xmlbuilder

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-pagamentocerto/internal/order"
	"github.com/imrishuroy/go-pagamentocerto/internal/payerr"
)

// Header is written verbatim before the root element.
const Header = `<?xml version="1.0" encoding="utf-8" ?>`

// emptyAmount is what the gateway expects for zero optional values.
const emptyAmount = "000"

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

type request struct {
	XMLName xml.Name  `xml:"LocaWeb"`
	Buyer   buyer     `xml:"Comprador"`
	Payment payment   `xml:"Pagamento"`
	Order   orderInfo `xml:"Pedido"`
}

type buyer struct {
	Name        string `xml:"Nome"`
	Email       string `xml:"Email"`
	Cpf         string `xml:"Cpf"`
	Rg          string `xml:"Rg,omitempty"`
	AreaCode    string `xml:"Ddd,omitempty"`
	Phone       string `xml:"Telefone,omitempty"`
	PersonType  string `xml:"TipoPessoa"`
	CompanyName string `xml:"RazaoSocial,omitempty"`
	Cnpj        string `xml:"Cnpj,omitempty"`
}

type payment struct {
	Module string `xml:"Modulo"`
	Type   string `xml:"Tipo,omitempty"`
}

type orderInfo struct {
	Number   int      `xml:"Numero"`
	SubTotal int64    `xml:"ValorSubTotal"`
	Shipping string   `xml:"ValorFrete"`
	Extra    string   `xml:"ValorAcrescimo"`
	Discount string   `xml:"ValorDesconto"`
	Total    int64    `xml:"ValorTotal"`
	Items    itemList `xml:"Itens"`
	Billing  address  `xml:"Cobranca"`
	Delivery address  `xml:"Entrega"`
}

type itemList struct {
	Items []item `xml:"Item"`
}

type item struct {
	Code        string `xml:"CodProduto"`
	Description string `xml:"DescProduto"`
	Quantity    int    `xml:"Quantidade"`
	UnitValue   int64  `xml:"ValorUnitario"`
	Total       int64  `xml:"ValorTotal"`
}

type address struct {
	Street     string `xml:"Endereco"`
	Complement string `xml:"Complemento,omitempty"`
	Number     string `xml:"Numero"`
	District   string `xml:"Bairro"`
	City       string `xml:"Cidade"`
	ZipCode    string `xml:"Cep"`
	State      string `xml:"Estado"`
}

// Build renders o as a request document. Amounts are converted to cents here;
// o is only read.
func Build(o *order.Order) (string, error) {
	subtotal, _ := o.Subtotal()
	shipping, _ := o.ShippingAddress()
	billing, _ := o.BillingAddress()

	amounts := map[string]decimal.Decimal{
		"subtotal":      subtotal,
		"shipping":      o.ShippingValue(),
		"other charges": o.OtherCharges(),
		"discount":      o.CalculatedDiscount(),
		"total":         o.TotalAmount(),
	}
	for _, p := range o.Products() {
		amounts["product "+p.ID+" unit value"] = p.UnitValue
		amounts["product "+p.ID+" amount"] = p.AccumulatedAmount
	}
	for name, v := range amounts {
		if !centsInRange(v) {
			return "", payerr.Invalid("%s %s does not fit in cents", name, v.String())
		}
	}

	req := request{
		Buyer:   buildBuyer(o.BuyerInfo(), o.BuyerType()),
		Payment: buildPayment(o.PaymentMethod()),
		Order: orderInfo{
			Number:   o.OrderID(),
			SubTotal: Cents(subtotal),
			Shipping: optionalCents(o.ShippingValue()),
			Extra:    optionalCents(o.OtherCharges()),
			Discount: optionalCents(o.CalculatedDiscount()),
			Total:    Cents(o.TotalAmount()),
			Billing:  buildAddress(billing),
			Delivery: buildAddress(shipping),
		},
	}
	for _, p := range o.Products() {
		req.Order.Items.Items = append(req.Order.Items.Items, item{
			Code:        p.ID,
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitValue:   Cents(p.UnitValue),
			Total:       Cents(p.AccumulatedAmount),
		})
	}

	body, err := xml.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request xml: %w", err)
	}
	return Header + string(body), nil
}

// Cents converts a currency amount to integer hundredths, rounding half away from zero.
// Amounts outside the int64 range are truncated; Build rejects them first.
func Cents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func centsInRange(amount decimal.Decimal) bool {
	c := amount.Mul(hundred).Round(0)
	return c.Cmp(maxCents) <= 0 && c.Cmp(minCents) >= 0
}

func optionalCents(amount decimal.Decimal) string {
	c := Cents(amount)
	if c == 0 {
		return emptyAmount
	}
	return strconv.FormatInt(c, 10)
}

func buildBuyer(info order.BuyerInfo, t order.BuyerType) buyer {
	b := buyer{
		Name:       info.Name,
		Email:      info.Email,
		Cpf:        info.TaxID,
		Rg:         info.RG,
		PersonType: "Fisica",
	}
	if info.Phone != "" && info.AreaCode != "" {
		b.AreaCode = info.AreaCode
		b.Phone = info.Phone
	}
	if t == order.BuyerCompany {
		b.PersonType = "Juridica"
		b.CompanyName = info.CompanyName
		b.Cnpj = info.CompanyTaxID
	}
	return b
}

func buildPayment(m order.PaymentMethod) payment {
	if m == order.PaymentCreditCardVisa {
		return payment{Module: "CartaoCredito", Type: "Visa"}
	}
	return payment{Module: "Boleto"}
}

func buildAddress(a order.Address) address {
	return address{
		Street:     a.Street,
		Complement: a.Complement,
		Number:     a.Number,
		District:   a.District,
		City:       a.City,
		ZipCode:    a.ZipCode,
		State:      a.State,
	}
}
