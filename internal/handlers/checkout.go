package handlers

import (
	"github.com/imrishuroy/go-pagamentocerto/internal/order"
	"github.com/imrishuroy/go-pagamentocerto/internal/validation"
)

// buildOrder runs a validated checkout through the Order operations, so every
// business rule (required fields, value mismatch, discount bounds) is applied
// exactly as for any other caller of the aggregate.
func buildOrder(req validation.CheckoutRequest) (*order.Order, error) {
	o := order.New()

	if req.OrderID != "" {
		id, err := order.ParseOrderID(req.OrderID.String())
		if err != nil {
			return nil, err
		}
		o.SetOrderID(id)
	}

	if req.Buyer != nil {
		buyerType, err := order.ParseBuyerType(req.Buyer.Type)
		if err != nil {
			return nil, err
		}
		err = o.SetBuyerInfo(order.BuyerInfo{
			Name:         req.Buyer.Name,
			Email:        req.Buyer.Email,
			TaxID:        req.Buyer.TaxID,
			RG:           req.Buyer.RG,
			AreaCode:     req.Buyer.AreaCode,
			Phone:        req.Buyer.Phone,
			CompanyTaxID: req.Buyer.CompanyTaxID,
			CompanyName:  req.Buyer.CompanyName,
		}, buyerType)
		if err != nil {
			return nil, err
		}
	}

	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := o.SetPaymentMethod(method); err != nil {
		return nil, err
	}

	for _, it := range req.Items {
		qty, err := order.ParseQuantity(it.Quantity.String())
		if err != nil {
			return nil, err
		}
		unit, err := order.ParseAmount("product unit value", it.UnitValue.String())
		if err != nil {
			return nil, err
		}
		if err := o.AddProduct(it.ID, it.Description, qty, unit); err != nil {
			return nil, err
		}
	}

	if a := req.ShippingAddress; a != nil {
		if err := o.SetShippingAddress(toAddress(*a)); err != nil {
			return nil, err
		}
	}
	if a := req.BillingAddress; a != nil {
		if err := o.SetBillingAddress(toAddress(*a)); err != nil {
			return nil, err
		}
	}

	if d := req.Discount; d != nil {
		dt, err := order.ParseDiscountType(d.Type)
		if err != nil {
			return nil, err
		}
		value, err := order.ParseAmount("discount value", d.Value.String())
		if err != nil {
			return nil, err
		}
		if err := o.SetDiscount(value, dt); err != nil {
			return nil, err
		}
	}

	if req.ShippingValue != "" {
		v, err := order.ParseAmount("shipping value", req.ShippingValue.String())
		if err != nil {
			return nil, err
		}
		o.SetShippingValue(v)
	}
	if req.OtherCharges != "" {
		v, err := order.ParseAmount("other charges", req.OtherCharges.String())
		if err != nil {
			return nil, err
		}
		o.SetOtherCharges(v)
	}

	return o, nil
}

func toAddress(a validation.Address) order.Address {
	return order.Address{
		Street:     a.Street,
		Number:     a.Number,
		Complement: a.Complement,
		District:   a.District,
		City:       a.City,
		ZipCode:    a.ZipCode,
		State:      a.State,
	}
}
