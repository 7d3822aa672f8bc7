package httpx

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateOrderValidation(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name    string
		req     CreateOrderReq
		wantErr bool
	}{
		{
			name: "total matches single item",
			req: CreateOrderReq{
				TotalAmount: dec("15000"),
				Items:       []OrderItemReq{{ProductID: "p1", Quantity: 2, Price: decimal.RequireFromString("7500")}},
			},
		},
		{
			name: "total matches multiple items",
			req: CreateOrderReq{
				TotalAmount: dec("110.50"),
				Items: []OrderItemReq{
					{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("100")},
					{ProductID: "p2", Quantity: 3, Price: decimal.RequireFromString("3.50")},
				},
			},
		},
		{
			name: "zero items keeps stated total",
			req:  CreateOrderReq{TotalAmount: dec("500")},
		},
		{
			name: "total diverges from items",
			req: CreateOrderReq{
				TotalAmount: dec("14999"),
				Items:       []OrderItemReq{{ProductID: "p1", Quantity: 2, Price: decimal.RequireFromString("7500")}},
			},
			wantErr: true,
		},
		{
			name:    "missing total",
			req:     CreateOrderReq{},
			wantErr: true,
		},
		{
			name:    "negative total",
			req:     CreateOrderReq{TotalAmount: dec("-1")},
			wantErr: true,
		},
		{
			name: "zero quantity item",
			req: CreateOrderReq{
				TotalAmount: dec("0"),
				Items:       []OrderItemReq{{ProductID: "p1", Quantity: 0, Price: decimal.RequireFromString("10")}},
			},
			wantErr: true,
		},
		{
			name: "malformed customer email",
			req: CreateOrderReq{
				TotalAmount:   dec("10"),
				CustomerEmail: "not-an-email",
			},
			wantErr: true,
		},
		{
			name:    "unknown status",
			req:     CreateOrderReq{TotalAmount: dec("10"), Status: "shipped"},
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := v.Struct(c.req)
			if c.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
