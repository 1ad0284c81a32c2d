package physics

import (
	"math"
	"testing"
)

func defaultPropulsion() Propulsion {
	return Propulsion{
		DryMass:            500,
		ExhaustVelocity:    2500,
		MaxFuelConsumption: 100,
		ClampRate:          true,
	}
}

func TestPropel_RateAdjustment(t *testing.T) {
	tests := []struct {
		name        string
		initialRate float64
		controls    Controls
		expected    float64
	}{
		{"forward from rest", 0, Controls{Forward: true}, 0.2},
		{"reverse from rest", 0, Controls{Reverse: true}, -0.2},
		{"both keys cancel", 1.0, Controls{Forward: true, Reverse: true}, 1.0},
		{"relax positive", 1.0, Controls{}, 0.8},
		{"relax negative", -1.0, Controls{}, -0.8},
		{"relax stops at zero from above", 0.1, Controls{}, 0},
		{"relax stops at zero from below", -0.1, Controls{}, 0},
		{"idle stays idle", 0, Controls{}, 0},
		{"rotation keys do not burn", 0, Controls{RotateLeft: true, RotateRight: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &RocketState{Fuel: 5000, FuelConsumption: tt.initialRate}
			Propel(state, tt.controls, defaultPropulsion(), 0.1)
			if math.Abs(state.FuelConsumption-tt.expected) > 1e-9 {
				t.Errorf("Expected rate %f, got %f", tt.expected, state.FuelConsumption)
			}
		})
	}
}

func TestPropel_MeshcherskyAcceleration(t *testing.T) {
	p := defaultPropulsion()
	state := &RocketState{Fuel: 5000, FuelConsumption: 9.8}

	Propel(state, Controls{Forward: true}, p, 0.1)

	// rate 10 kg/s, mass measured before the burn: 500 + 5000
	expected := -(2500.0 * 10.0) / 5500.0
	if math.Abs(state.Acceleration-expected) > 1e-9 {
		t.Errorf("Expected acceleration %f, got %f", expected, state.Acceleration)
	}
	if math.Abs(state.Fuel-(5000-1.0)) > 1e-9 {
		t.Errorf("Expected fuel 4999, got %f", state.Fuel)
	}
}

func TestPropel_ReverseBurnConsumesFuel(t *testing.T) {
	state := &RocketState{Fuel: 100, FuelConsumption: -5}
	Propel(state, Controls{Reverse: true}, defaultPropulsion(), 1.0)

	if math.Abs(state.Fuel-(100-5.2)) > 1e-9 {
		t.Errorf("Expected fuel %f, got %f", 100-5.2, state.Fuel)
	}
	if state.Acceleration <= 0 {
		t.Errorf("Expected positive acceleration for a retro burn, got %f", state.Acceleration)
	}
}

func TestPropel_FuelFloorsAtZero(t *testing.T) {
	state := &RocketState{Fuel: 0.5, FuelConsumption: 50}
	Propel(state, Controls{Forward: true}, defaultPropulsion(), 0.6)

	if state.Fuel != 0 {
		t.Fatalf("Expected empty tank, got %f", state.Fuel)
	}
	if state.FuelConsumption != 0 {
		t.Fatalf("Expected zero rate once the tank empties, got %f", state.FuelConsumption)
	}
	if state.Acceleration >= 0 {
		t.Errorf("Expected the emptying burn to still accelerate, got %f", state.Acceleration)
	}

	// Next tick: rate is forced to zero and stays there while keys are held.
	for i := 0; i < 10; i++ {
		Propel(state, Controls{Forward: true}, defaultPropulsion(), 0.6)
		if state.FuelConsumption != 0 {
			t.Fatalf("tick %d: expected zero rate on empty tank, got %f", i, state.FuelConsumption)
		}
		if state.Acceleration != 0 {
			t.Fatalf("tick %d: expected zero acceleration on empty tank, got %f", i, state.Acceleration)
		}
		if state.Fuel != 0 {
			t.Fatalf("tick %d: expected fuel to stay 0, got %f", i, state.Fuel)
		}
	}
}

func TestPropel_RateClamp(t *testing.T) {
	tests := []struct {
		name      string
		clamp     bool
		controls  Controls
		ticks     int
		wantBound bool
	}{
		{"clamped forward", true, Controls{Forward: true}, 600, true},
		{"clamped reverse", true, Controls{Reverse: true}, 600, true},
		{"unclamped forward", false, Controls{Forward: true}, 600, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultPropulsion()
			p.ClampRate = tt.clamp
			state := &RocketState{Fuel: 1e9}
			for i := 0; i < tt.ticks; i++ {
				Propel(state, tt.controls, p, 0.001)
			}
			bounded := math.Abs(state.FuelConsumption) <= p.MaxFuelConsumption+1e-9
			if bounded != tt.wantBound {
				t.Errorf("Expected bounded=%v, rate %f", tt.wantBound, state.FuelConsumption)
			}
		})
	}
}

func TestPropel_FuelMonotonic(t *testing.T) {
	p := defaultPropulsion()
	state := &RocketState{Fuel: 50}
	inputs := []Controls{{Forward: true}, {Reverse: true}, {}, {Forward: true, Reverse: true}}

	prev := state.Fuel
	for i := 0; i < 2000; i++ {
		Propel(state, inputs[(i/37)%len(inputs)], p, 0.3)
		if state.Fuel > prev {
			t.Fatalf("tick %d: fuel increased from %f to %f", i, prev, state.Fuel)
		}
		if state.Fuel < 0 {
			t.Fatalf("tick %d: negative fuel %f", i, state.Fuel)
		}
		prev = state.Fuel
	}
}
