package statemachine

import (
	"testing"

	"local-baba-api/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		actor   string
		allowed bool
	}{
		{"restaurant advances processing", models.StatusProcessing, models.StatusPreparing, ActorRestaurant, true},
		{"restaurant advances preparing", models.StatusPreparing, models.StatusPickedUp, ActorRestaurant, true},
		{"restaurant advances picked up", models.StatusPickedUp, models.StatusOnItsWay, ActorRestaurant, true},
		{"restaurant skips a step", models.StatusProcessing, models.StatusPickedUp, ActorRestaurant, false},
		{"restaurant moves backwards", models.StatusPreparing, models.StatusProcessing, ActorRestaurant, false},

		{"rider accepts from processing", models.StatusProcessing, models.StatusOnItsWay, ActorRider, true},
		{"rider accepts from preparing", models.StatusPreparing, models.StatusOnItsWay, ActorRider, true},
		{"rider accepts from picked up", models.StatusPickedUp, models.StatusOnItsWay, ActorRider, false},

		{"rider delivers in transit", models.StatusOnItsWay, models.StatusDelivered, ActorRider, true},
		{"restaurant delivers picked up", models.StatusPickedUp, models.StatusDelivered, ActorRestaurant, true},
		{"customer delivers", models.StatusOnItsWay, models.StatusDelivered, ActorCustomer, false},

		{"customer cancels processing", models.StatusProcessing, models.StatusCancelled, ActorCustomer, true},
		{"customer cancels in transit", models.StatusOnItsWay, models.StatusCancelled, ActorCustomer, true},
		{"restaurant cancels preparing", models.StatusPreparing, models.StatusCancelled, ActorRestaurant, true},
		{"rider cancels", models.StatusProcessing, models.StatusCancelled, ActorRider, false},

		{"delivered is terminal", models.StatusDelivered, models.StatusCancelled, ActorCustomer, false},
		{"cancelled is terminal", models.StatusCancelled, models.StatusPreparing, ActorRestaurant, false},
		{"cancelled cannot deliver", models.StatusCancelled, models.StatusDelivered, ActorRider, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.actor)
			if tt.allowed && err != nil {
				t.Errorf("expected %s -> %s by %s to be allowed, got %v", tt.from, tt.to, tt.actor, err)
			}
			if !tt.allowed && err == nil {
				t.Errorf("expected %s -> %s by %s to be rejected", tt.from, tt.to, tt.actor)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []models.OrderStatus{models.StatusDelivered, models.StatusCancelled}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
		if got := ValidTransitionsFrom(s); len(got) != 0 {
			t.Errorf("%s should have no outgoing transitions, got %v", s, got)
		}
	}
	for _, s := range NonTerminalStates {
		if IsTerminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
		if got := ValidTransitionsFrom(s); len(got) == 0 {
			t.Errorf("%s should have outgoing transitions", s)
		}
	}
}

func TestClaimableStatesAreClaimable(t *testing.T) {
	for _, s := range ClaimableStates {
		if err := CanTransition(s, models.StatusOnItsWay, ActorRider); err != nil {
			t.Errorf("rider should be able to claim from %s: %v", s, err)
		}
	}
	if err := CanTransition(models.StatusOnItsWay, models.StatusOnItsWay, ActorRider); err == nil {
		t.Error("claiming an already claimed order should be rejected")
	}
}

func TestEveryNonTerminalStateCanCancel(t *testing.T) {
	for _, s := range NonTerminalStates {
		if err := CanTransition(s, models.StatusCancelled, ActorCustomer); err != nil {
			t.Errorf("customer should be able to cancel from %s: %v", s, err)
		}
	}
}
