package commerce

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Settlement only ever moves an order forward. paid is terminal for this
// engine; anything else (a future cancelled, refunded, ...) has no defined
// transition and is left untouched.
var validNext = map[Status]map[Status]bool{
	StatusPending: {StatusPaid: true},
	StatusPaid:    {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
