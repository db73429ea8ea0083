package transaction

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-pagamentocerto/internal/order"
)

type document struct {
	Transaction struct {
		ID      string `xml:"IdTransacao"`
		Code    string `xml:"CodRetorno"`
		Message string `xml:"MensagemRetorno"`
		Date    string `xml:"Data"`
	} `xml:"Transacao"`
	Buyer struct {
		Name       string `xml:"Nome"`
		Email      string `xml:"Email"`
		PersonType string `xml:"TipoPessoa"`
		Cpf        string `xml:"Cpf"`
		Cnpj       string `xml:"Cnpj"`
	} `xml:"Comprador"`
	Payment struct {
		Module string `xml:"Modulo"`
		Type   string `xml:"Type"`
	} `xml:"Pagamento"`
	Order struct {
		Number string `xml:"Numero"`
		Total  string `xml:"ValorTotal"`
	} `xml:"Pedido"`
}

// Decode parses a status document using the local time zone for its date.
func Decode(data []byte) (Transaction, error) {
	return DecodeIn(data, time.Local)
}

// DecodeIn parses a status document, interpreting its "dd/mm/yyyy hh:mm:ss"
// date in loc. Missing or malformed fields decode as zero values; only a
// document that is not well-formed XML yields an error.
func DecodeIn(data []byte, loc *time.Location) (Transaction, error) {
	var doc document
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = passThroughCharset
	if err := dec.Decode(&doc); err != nil {
		return Transaction{}, fmt.Errorf("decode transaction xml: %w", err)
	}

	tx := Transaction{
		ID:            doc.Transaction.ID,
		Timestamp:     parseDate(doc.Transaction.Date, loc),
		StatusCode:    StatusCode(leadingInt(doc.Transaction.Code)),
		StatusMessage: doc.Transaction.Message,
		Buyer: BuyerInfo{
			Name:  doc.Buyer.Name,
			Email: doc.Buyer.Email,
		},
		PaymentType: paymentType(doc.Payment.Module, doc.Payment.Type),
		OrderID:     leadingInt(doc.Order.Number),
		TotalAmount: decimal.New(int64(leadingInt(doc.Order.Total)), -2),
	}

	if doc.Buyer.PersonType == "Juridica" {
		tx.BuyerType = order.BuyerCompany
		tx.Buyer.CompanyTaxID = doc.Buyer.Cnpj
	} else {
		tx.BuyerType = order.BuyerPerson
		tx.Buyer.TaxID = doc.Buyer.Cpf
	}
	return tx, nil
}

// paymentType falls back to invoice for anything but a Visa credit card.
func paymentType(module, subtype string) order.PaymentMethod {
	if module == "CartaoCredito" && subtype == "Visa" {
		return order.PaymentCreditCardVisa
	}
	return order.PaymentInvoice
}

// parseDate reads "dd/mm/yyyy hh:mm:ss", day first.
func parseDate(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	datePart, clockPart, _ := strings.Cut(s, " ")
	date := strings.Split(datePart, "/")
	clock := strings.Split(clockPart, ":")

	at := func(parts []string, i int) int {
		if i < len(parts) {
			return leadingInt(parts[i])
		}
		return 0
	}
	return time.Date(
		at(date, 2),             // year
		time.Month(at(date, 1)), // month
		at(date, 0),             // day
		at(clock, 0),
		at(clock, 1),
		at(clock, 2),
		0, loc,
	)
}

// leadingInt parses an optional sign and the digits that follow it, ignoring
// leading whitespace and any trailing garbage. It returns 0 when there are no
// digits and saturates at math.MaxInt when the digit run overflows.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int(s[i] - '0')
		if n > (math.MaxInt-d)/10 {
			// saturate on overflow
			n = math.MaxInt
			break
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}

// passThroughCharset lets documents declaring a non UTF-8 encoding through
// without transcoding.
func passThroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
