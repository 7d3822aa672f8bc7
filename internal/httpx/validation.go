package httpx

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type OrderItemReq struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderReq struct {
	OrderNumber     string           `json:"order_number"`
	CustomerID      string           `json:"customer_id"`
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   string           `json:"customer_phone"`
	TotalAmount     *decimal.Decimal `json:"total_amount" validate:"required"`
	Status          string           `json:"status" validate:"omitempty,oneof=pending paid"`
	ExternalID      string           `json:"external_id"`
	ShippingAddress string           `json:"shipping_address"`
	ShippingMethod  string           `json:"shipping_method"`
	PaymentMethod   string           `json:"payment_method"`
	Items           []OrderItemReq   `json:"items" validate:"dive"`
}

func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(createOrderStructValidation, CreateOrderReq{})
	return v
}

// createOrderStructValidation ties total_amount to the line items: when items
// are present the stated total must equal the exact sum of price*quantity.
// An itemless draft keeps whatever total it states.
func createOrderStructValidation(sl validator.StructLevel) {
	req := sl.Current().Interface().(CreateOrderReq)
	if req.TotalAmount == nil {
		return // the required tag reports the missing field
	}
	if req.TotalAmount.IsNegative() {
		sl.ReportError(req.TotalAmount, "total_amount", "TotalAmount", "non_negative", "")
		return
	}
	if len(req.Items) == 0 {
		return
	}
	sum := decimal.Zero
	for _, it := range req.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if !sum.Equal(*req.TotalAmount) {
		sl.ReportError(req.TotalAmount, "total_amount", "TotalAmount", "total_matches_items", "")
	}
}
