package strategy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/river-now/patterns/kit/colorlog"
	"github.com/river-now/patterns/kit/id"
	"github.com/river-now/patterns/kit/keyset"
	"github.com/river-now/patterns/singleton"
)

var Log = colorlog.New("strategy")

var (
	ErrInvalidAmount   = errors.New("amount must be a positive finite number")
	ErrNoStrategy      = errors.New("no payment strategy set")
	ErrUnknownStrategy = errors.New("unknown payment strategy")
	ErrBadSignature    = errors.New("receipt signature does not match")
)

const txnIDLen = 16

type Receipt struct {
	TransactionID string
	Method        string
	Amount        float64
	Message       string
	// Hex HMAC-SHA256, empty unless the Context has a signer.
	Signature string
}

type PaymentStrategy interface {
	Name() string
	Pay(amount float64) (Receipt, error)
}

type CreditCard struct{}
type PayPal struct{}
type WeChatPay struct{}

func (CreditCard) Name() string { return "credit card" }
func (PayPal) Name() string     { return "PayPal" }
func (WeChatPay) Name() string  { return "WeChat Pay" }

func (s CreditCard) Pay(amount float64) (Receipt, error) { return pay(s, amount) }
func (s PayPal) Pay(amount float64) (Receipt, error)     { return pay(s, amount) }
func (s WeChatPay) Pay(amount float64) (Receipt, error)  { return pay(s, amount) }

func pay(s PaymentStrategy, amount float64) (Receipt, error) {
	if err := validateAmount(amount); err != nil {
		return Receipt{}, err
	}
	txn, err := id.WithPrefix("txn", txnIDLen)
	if err != nil {
		return Receipt{}, fmt.Errorf("error generating transaction id: %w", err)
	}
	return Receipt{
		TransactionID: txn,
		Method:        s.Name(),
		Amount:        amount,
		Message:       fmt.Sprintf("%s payment succeeded: $%.2f", s.Name(), amount),
	}, nil
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return nil
}

var registry = map[string]PaymentStrategy{
	"credit_card": CreditCard{},
	"paypal":      PayPal{},
	"wechat":      WeChatPay{},
}

// ByName looks up a built-in strategy by its config name: credit_card,
// paypal or wechat.
func ByName(name string) (PaymentStrategy, error) {
	s, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

/////////////////////////////////////////////////////////////////////
/////// CONTEXT
/////////////////////////////////////////////////////////////////////

type Option func(*Context)

// WithCurrency replaces the "$" in receipt messages. Empty keeps "$".
func WithCurrency(symbol string) Option {
	return func(c *Context) {
		if symbol != "" {
			c.currency = symbol
		}
	}
}

// WithSigner signs every receipt with the first key of the source's keyset.
func WithSigner(keys keyset.Source) Option {
	return func(c *Context) { c.keys = keys }
}

// Context runs payments through a strategy that can be swapped at runtime.
type Context struct {
	mu       sync.RWMutex
	strategy PaymentStrategy
	currency string
	keys     keyset.Source
}

func NewContext(s PaymentStrategy, opts ...Option) *Context {
	c := &Context{strategy: s, currency: "$"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromSettings picks the strategy and currency named in the settings.
// Extra options are applied after those.
func FromSettings(s *singleton.Settings, opts ...Option) (*Context, error) {
	ps, err := ByName(s.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return NewContext(ps, append([]Option{WithCurrency(s.CurrencySymbol)}, opts...)...), nil
}

func (c *Context) SetStrategy(s PaymentStrategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategy = s
}

func (c *Context) Strategy() PaymentStrategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strategy
}

func (c *Context) ExecutePayment(amount float64) (Receipt, error) {
	s := c.Strategy()
	if s == nil {
		return Receipt{}, ErrNoStrategy
	}

	r, err := s.Pay(amount)
	if err != nil {
		Log.Warn("payment failed", "method", s.Name(), "amount", amount, "error", err)
		return Receipt{}, err
	}
	if c.currency != "$" {
		r.Message = strings.Replace(r.Message, "$", c.currency, 1)
	}
	if c.keys != nil {
		ks, err := c.keys.Get()
		if err != nil {
			return Receipt{}, fmt.Errorf("error loading receipt keys: %w", err)
		}
		k, err := ks.First()
		if err != nil {
			return Receipt{}, fmt.Errorf("error loading receipt keys: %w", err)
		}
		r.Signature = sign(k, r)
	}

	Log.Info("payment executed", "method", r.Method, "amount", r.Amount, "txn", r.TransactionID)
	return r, nil
}

// VerifyReceipt checks the signature against every key in the keyset, so
// receipts signed before a key rotation still verify. Every failure,
// including an empty keyset, matches ErrBadSignature.
func VerifyReceipt(ks keyset.Keyset, r Receipt) error {
	given, err := hex.DecodeString(r.Signature)
	if err != nil || len(given) == 0 {
		return ErrBadSignature
	}
	if len(ks) == 0 {
		return fmt.Errorf("%w: %w", ErrBadSignature, keyset.ErrEmpty)
	}
	_, err = keyset.Attempt(ks, func(k keyset.Key) (struct{}, error) {
		want, _ := hex.DecodeString(sign(k, r))
		if !hmac.Equal(given, want) {
			return struct{}{}, ErrBadSignature
		}
		return struct{}{}, nil
	})
	return err
}

func sign(k keyset.Key, r Receipt) string {
	mac := hmac.New(sha256.New, k[:])
	fmt.Fprintf(mac, "%s|%s|%.2f|%s", r.TransactionID, r.Method, r.Amount, r.Message)
	return hex.EncodeToString(mac.Sum(nil))
}
