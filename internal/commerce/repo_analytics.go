package commerce

import (
	"context"
	"time"
)

type SalesBucket struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type TopProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
	Quantity int     `json:"quantity"`
}

type AnalyticsSummary struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalOrders   int     `json:"totalOrders"`
	AvgOrderValue float64 `json:"avgOrderValue"`
}

type AnalyticsReport struct {
	SalesOverTime []SalesBucket    `json:"salesOverTime"`
	TopProducts   []TopProduct     `json:"topProducts"`
	Summary       AnalyticsSummary `json:"summary"`
}

// Aggregate builds the revenue report for one merchant over committed orders
// with created_at >= since. Read-only; buckets with no orders are absent
// rather than zero-filled.
func (r *Repo) Aggregate(ctx context.Context, merchantID string, since time.Time) (*AnalyticsReport, error) {
	report := &AnalyticsReport{
		SalesOverTime: []SalesBucket{},
		TopProducts:   []TopProduct{},
	}

	rows, err := r.DB.Query(ctx, `
		SELECT TO_CHAR(date_trunc('day', created_at), 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(total_amount), 0)::float8,
		       COUNT(id)
		FROM orders
		WHERE merchant_id = $1 AND created_at >= $2
		GROUP BY date_trunc('day', created_at)
		ORDER BY date_trunc('day', created_at)`, merchantID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b SalesBucket
		if err := rows.Scan(&b.Date, &b.Revenue, &b.Orders); err != nil {
			return nil, err
		}
		report.SalesOverTime = append(report.SalesOverTime, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx, `
		SELECT p.id, p.name,
		       COALESCE(SUM(oi.price * oi.quantity), 0)::float8 AS revenue,
		       COALESCE(SUM(oi.quantity), 0)::int
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.merchant_id = $1 AND o.created_at >= $2
		GROUP BY p.id, p.name
		ORDER BY revenue DESC
		LIMIT 5`, merchantID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t TopProduct
		if err := rows.Scan(&t.ID, &t.Name, &t.Revenue, &t.Quantity); err != nil {
			return nil, err
		}
		report.TopProducts = append(report.TopProducts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)::float8, COUNT(id)
		FROM orders
		WHERE merchant_id = $1 AND created_at >= $2`, merchantID, since).
		Scan(&report.Summary.TotalRevenue, &report.Summary.TotalOrders)
	if err != nil {
		return nil, err
	}
	if report.Summary.TotalOrders > 0 {
		report.Summary.AvgOrderValue = report.Summary.TotalRevenue / float64(report.Summary.TotalOrders)
	}
	return report, nil
}
