package statemachine

import (
	"errors"

	"local-baba-api/models"
)

// Actor labels for transition permissions.
const (
	ActorCustomer   = "customer"
	ActorRestaurant = "restaurant"
	ActorRider      = "rider"
)

// Transition defines a valid state change and who can perform it.
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// validTransitions is the authoritative state machine definition. The happy
// path is Processing → Preparing → Picked up → On its way → Delivered;
// Cancelled is reachable from any non-terminal state.
var validTransitions = []Transition{
	// Restaurant advances preparation.
	{From: models.StatusProcessing, To: models.StatusPreparing, Actor: ActorRestaurant},
	{From: models.StatusPreparing, To: models.StatusPickedUp, Actor: ActorRestaurant},
	{From: models.StatusPickedUp, To: models.StatusOnItsWay, Actor: ActorRestaurant},

	// Rider claims an unassigned order (accept) while it is still in the
	// restaurant's hands.
	{From: models.StatusProcessing, To: models.StatusOnItsWay, Actor: ActorRider},
	{From: models.StatusPreparing, To: models.StatusOnItsWay, Actor: ActorRider},

	// Delivery completes from any non-terminal state.
	{From: models.StatusProcessing, To: models.StatusDelivered, Actor: ActorRider},
	{From: models.StatusPreparing, To: models.StatusDelivered, Actor: ActorRider},
	{From: models.StatusPickedUp, To: models.StatusDelivered, Actor: ActorRider},
	{From: models.StatusOnItsWay, To: models.StatusDelivered, Actor: ActorRider},
	{From: models.StatusProcessing, To: models.StatusDelivered, Actor: ActorRestaurant},
	{From: models.StatusPreparing, To: models.StatusDelivered, Actor: ActorRestaurant},
	{From: models.StatusPickedUp, To: models.StatusDelivered, Actor: ActorRestaurant},
	{From: models.StatusOnItsWay, To: models.StatusDelivered, Actor: ActorRestaurant},

	// Cancellation from any non-terminal state.
	{From: models.StatusProcessing, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusPickedUp, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusOnItsWay, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusProcessing, To: models.StatusCancelled, Actor: ActorRestaurant},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: ActorRestaurant},
	{From: models.StatusPickedUp, To: models.StatusCancelled, Actor: ActorRestaurant},
	{From: models.StatusOnItsWay, To: models.StatusCancelled, Actor: ActorRestaurant},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// Lookup map for O(1) validation.
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ClaimableStates are the statuses a rider may accept an order from. The
// accept handler uses this set in a conditional update so concurrent claims
// resolve to exactly one winner.
var ClaimableStates = []models.OrderStatus{models.StatusProcessing, models.StatusPreparing}

// NonTerminalStates lists every status an order can still leave.
var NonTerminalStates = []models.OrderStatus{
	models.StatusProcessing,
	models.StatusPreparing,
	models.StatusPickedUp,
	models.StatusOnItsWay,
}

// IsTerminal reports whether a status can never change again.
func IsTerminal(status models.OrderStatus) bool {
	return status == models.StatusDelivered || status == models.StatusCancelled
}

// ValidTransitionsFrom returns all valid next states from a given state.
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another.
func CanTransition(from, to models.OrderStatus, actor string) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for actor '" + actor + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation.
func GetAllTransitions() []Transition {
	return validTransitions
}
