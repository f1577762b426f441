// Package decorator wraps a value in layers that each add behavior while
// keeping the same interface: condiments on a Coffee, and middleware on an
// http.Handler.
package decorator

type Coffee interface {
	Cost() float64
	Description() string
}

type SimpleCoffee struct{}

func (SimpleCoffee) Cost() float64       { return 10.0 }
func (SimpleCoffee) Description() string { return "simple coffee" }

type condiment struct {
	base  Coffee
	name  string
	price float64
}

func (c condiment) Cost() float64       { return c.base.Cost() + c.price }
func (c condiment) Description() string { return c.base.Description() + ", " + c.name }

func WithMilk(c Coffee) Coffee    { return condiment{base: c, name: "milk", price: 2.0} }
func WithSugar(c Coffee) Coffee   { return condiment{base: c, name: "sugar", price: 1.0} }
func WithWhip(c Coffee) Coffee    { return condiment{base: c, name: "whip", price: 3.0} }
func WithVanilla(c Coffee) Coffee { return condiment{base: c, name: "vanilla", price: 1.5} }

// Brew applies the decorators to base in order.
func Brew(base Coffee, decorators ...func(Coffee) Coffee) Coffee {
	c := base
	for _, d := range decorators {
		c = d(c)
	}
	return c
}
