package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mialabs/commerce-core/internal/commerce"
	kafkax "github.com/mialabs/commerce-core/internal/kafka"
	"github.com/mialabs/commerce-core/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type Store interface {
	AddLifetimeValue(ctx context.Context, merchantID, customerID string, amount decimal.Decimal) error
}

type Dedup interface {
	Seen(ctx context.Context, key string) (bool, error)
}

// Service projects settled orders into customer lifetime value. It runs
// behind the order.settled topic so the settlement write path never waits on
// it. The fold is additive, so event dedup gates every apply.
type Service struct {
	Store       Store
	Dedup       Dedup
	ServiceName string
}

// HandleOrderSettled is the consumer handler. Returning an error leaves the
// offset uncommitted so the message is retried.
func (s *Service) HandleOrderSettled(ctx context.Context, m kafkago.Message) error {
	var env commerce.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != commerce.EventOrderSettled {
		return nil
	}

	key := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	seen, err := s.Dedup.Seen(ctx, key)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	p, err := kafkax.UnwrapPayload[commerce.OrderSettledPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.CustomerID == nil || *p.CustomerID == "" {
		return nil // guest order, nothing to attribute
	}
	return s.Store.AddLifetimeValue(ctx, p.MerchantID, *p.CustomerID, p.Amount)
}
