package validation

import (
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// New returns a configured validator with the checkout struct-level rules
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// report fields by their json names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(buyerStructValidation, Buyer{})
	v.RegisterStructValidation(discountStructValidation, Discount{})
	return v
}

// buyerStructValidation requires the company fields for company buyers.
func buyerStructValidation(sl validatorv10.StructLevel) {
	b := sl.Current().Interface().(Buyer)
	if b.Type != "company" {
		return
	}
	if b.CompanyTaxID == "" {
		sl.ReportError(b.CompanyTaxID, "cnpj", "CompanyTaxID", "required_for_company", "")
	}
	if b.CompanyName == "" {
		sl.ReportError(b.CompanyName, "company_name", "CompanyName", "required_for_company", "")
	}
}

// discountStructValidation checks the value range for the discount type.
// The cart-dependent bound of flat discounts is checked by the order itself.
func discountStructValidation(sl validatorv10.StructLevel) {
	d := sl.Current().Interface().(Discount)
	if d.Value == "" {
		return
	}
	value, err := decimal.NewFromString(d.Value.String())
	if err != nil {
		sl.ReportError(d.Value, "value", "Value", "decimal", "")
		return
	}
	if value.IsNegative() {
		sl.ReportError(d.Value, "value", "Value", "gte", "0")
		return
	}
	if d.Type == "percentage" && value.GreaterThan(hundred) {
		sl.ReportError(d.Value, "value", "Value", "lte", "100")
	}
}
