package redisx

import "time"

const (
	// Cache of order status, scoped like the queries that fill it:
	// order_status:{merchant_id}:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s:%s"

	// Dedup for event consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
