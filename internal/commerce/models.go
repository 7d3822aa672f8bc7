package commerce

import (
	"time"

	"github.com/shopspring/decimal"
)

type Merchant struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Customer struct {
	ID            string
	MerchantID    string
	Email         string
	FullName      string
	Phone         string
	LifetimeValue decimal.Decimal
	CreatedAt     time.Time
}

type Product struct {
	ID         string
	MerchantID string
	Name       string
	SKU        string
	Price      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Order struct {
	ID              string
	MerchantID      string
	OrderNumber     string
	ExternalID      string
	CustomerID      *string
	TotalAmount     decimal.Decimal
	Status          Status
	ShippingAddress string
	ShippingMethod  string
	PaymentMethod   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is immutable after creation; Price is the unit price snapshot
// taken at order time, not a live reference to the product.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}
