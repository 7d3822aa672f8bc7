package commerce

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestOrderNumberFormat(t *testing.T) {
	re := regexp.MustCompile(`^ORD-[1-9][0-9]{3}$`)
	for i := 0; i < 1000; i++ {
		n := orderNumber()
		if !re.MatchString(n) {
			t.Fatalf("orderNumber() = %q, want ORD- plus four digits", n)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	collide := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"})

	if !isUniqueViolation(collide, "orders_order_number_key") {
		t.Error("expected match on constraint name")
	}
	if !isUniqueViolation(collide, "") {
		t.Error("expected match on any constraint when name is empty")
	}
	if isUniqueViolation(collide, "orders_external_id_key") {
		t.Error("unexpected match on a different constraint")
	}
	if isUniqueViolation(errors.New("plain"), "") {
		t.Error("plain error should not match")
	}

	fk := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})
	if isUniqueViolation(fk, "") {
		t.Error("foreign-key violation is not a unique violation")
	}
	if !isForeignKeyViolation(fk) {
		t.Error("expected foreign-key violation to be detected")
	}
}

func numberCollision() error {
	return fmt.Errorf("insert order: %w", &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"})
}

func TestAllocateOrderRetriesGeneratedNumber(t *testing.T) {
	var numbers []string
	view := &OrderView{ID: "o1"}
	got, err := allocateOrder(CreateOrderInput{}, true, orderNumber(), func(n string) (*OrderView, error) {
		numbers = append(numbers, n)
		if len(numbers) < 3 {
			return nil, numberCollision()
		}
		return view, nil
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got != view {
		t.Fatal("expected the view from the successful attempt")
	}
	if len(numbers) != 3 {
		t.Fatalf("attempted %d times, want 3 (two collisions, then success)", len(numbers))
	}
}

func TestAllocateOrderSuppliedNumberCollisionIsConflict(t *testing.T) {
	attempts := 0
	_, err := allocateOrder(CreateOrderInput{}, false, "ORD-7777", func(n string) (*OrderView, error) {
		attempts++
		return nil, numberCollision()
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	if attempts != 1 {
		t.Fatalf("a caller-supplied number must not be retried, got %d attempts", attempts)
	}
}

func TestAllocateOrderGivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	_, err := allocateOrder(CreateOrderInput{}, true, orderNumber(), func(n string) (*OrderView, error) {
		attempts++
		return nil, numberCollision()
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict after exhausting retries", err)
	}
	if attempts != maxOrderNumberAttempts {
		t.Fatalf("attempted %d times, want %d", attempts, maxOrderNumberAttempts)
	}
}

func TestAllocateOrderMapsStorageErrors(t *testing.T) {
	extCollide := fmt.Errorf("insert order: %w", &pgconn.PgError{Code: "23505", ConstraintName: "orders_external_id_key"})
	_, err := allocateOrder(CreateOrderInput{ExternalID: "ext-1"}, true, "ORD-1000", func(string) (*OrderView, error) {
		return nil, extCollide
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("external id collision: got %v, want ErrConflict", err)
	}

	fk := fmt.Errorf("insert item: %w", &pgconn.PgError{Code: "23503"})
	_, err = allocateOrder(CreateOrderInput{}, true, "ORD-1000", func(string) (*OrderView, error) {
		return nil, fk
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown product: got %v, want ErrNotFound", err)
	}

	boom := errors.New("pool exhausted")
	_, err = allocateOrder(CreateOrderInput{}, true, "ORD-1000", func(string) (*OrderView, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("plain storage error must pass through, got %v", err)
	}
}
