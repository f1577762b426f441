package decorator

import "testing"

func TestCoffee(t *testing.T) {
	var c Coffee = SimpleCoffee{}
	if c.Cost() != 10 {
		t.Errorf("Expected 10, got %v", c.Cost())
	}
	if c.Description() != "simple coffee" {
		t.Errorf("Expected 'simple coffee', got '%s'", c.Description())
	}

	c = WithMilk(c)
	if c.Cost() != 12 {
		t.Errorf("Expected 12, got %v", c.Cost())
	}
	if c.Description() != "simple coffee, milk" {
		t.Errorf("Expected 'simple coffee, milk', got '%s'", c.Description())
	}

	c = WithWhip(c)
	if c.Cost() != 15 {
		t.Errorf("Expected 15, got %v", c.Cost())
	}
	if c.Description() != "simple coffee, milk, whip" {
		t.Errorf("Expected 'simple coffee, milk, whip', got '%s'", c.Description())
	}
}

func TestBrew(t *testing.T) {
	tests := []struct {
		name        string
		decorators  []func(Coffee) Coffee
		cost        float64
		description string
	}{
		{"plain", nil, 10, "simple coffee"},
		{"all four", []func(Coffee) Coffee{WithMilk, WithSugar, WithWhip, WithVanilla}, 17.5, "simple coffee, milk, sugar, whip, vanilla"},
		{"double sugar", []func(Coffee) Coffee{WithSugar, WithSugar}, 12, "simple coffee, sugar, sugar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Brew(SimpleCoffee{}, tt.decorators...)
			if c.Cost() != tt.cost {
				t.Errorf("Expected %v, got %v", tt.cost, c.Cost())
			}
			if c.Description() != tt.description {
				t.Errorf("Expected '%s', got '%s'", tt.description, c.Description())
			}
		})
	}
}
