package observer

import (
	"slices"
	"sync"

	"github.com/river-now/patterns/kit/colorlog"
)

var Log = colorlog.New("observer")

// Observers are compared with ==, so implementations should be pointers.
type Observer interface {
	Name() string
	Update(message string)
}

type Subject interface {
	// Attach reports whether o was newly attached.
	Attach(o Observer) bool
	// Detach reports whether o was attached.
	Detach(o Observer) bool
	Notify(message string)
}

// Channel is a publisher (think video channel) that notifies its
// subscribers, in subscription order, whenever it publishes.
type Channel struct {
	name string

	mu          sync.RWMutex
	subscribers []Observer
}

func NewChannel(name string) *Channel {
	return &Channel{name: name}
}

func (c *Channel) Name() string { return c.name }

func (c *Channel) Attach(o Observer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.subscribers, o) {
		return false
	}
	c.subscribers = append(c.subscribers, o)
	Log.Info("subscribed", "channel", c.name, "subscriber", o.Name())
	return true
}

func (c *Channel) Detach(o Observer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(c.subscribers, o)
	if i < 0 {
		return false
	}
	c.subscribers = slices.Delete(c.subscribers, i, i+1)
	Log.Info("unsubscribed", "channel", c.name, "subscriber", o.Name())
	return true
}

// Notify delivers message to a snapshot of the current subscribers.
// Observers may attach or detach from inside Update.
func (c *Channel) Notify(message string) {
	subs := c.Subscribers()
	Log.Debug("notifying", "channel", c.name, "message", message, "subscribers", len(subs))
	for _, o := range subs {
		o.Update(message)
	}
}

func (c *Channel) UploadVideo(title string) {
	c.Notify(title)
}

func (c *Channel) Subscribers() []Observer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.subscribers)
}

func (c *Channel) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscribers)
}

/////////////////////////////////////////////////////////////////////
/////// OBSERVERS
/////////////////////////////////////////////////////////////////////

// Subscriber keeps every message it is sent.
type Subscriber struct {
	name string

	mu    sync.Mutex
	inbox []string
}

func NewSubscriber(name string) *Subscriber {
	return &Subscriber{name: name}
}

func (s *Subscriber) Name() string { return s.name }

func (s *Subscriber) Update(message string) {
	s.mu.Lock()
	s.inbox = append(s.inbox, message)
	s.mu.Unlock()
	Log.Debug("received", "subscriber", s.name, "message", message)
}

func (s *Subscriber) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.inbox)
}

type funcObserver struct {
	name string
	fn   func(string)
}

func (f *funcObserver) Name() string          { return f.name }
func (f *funcObserver) Update(message string) { f.fn(message) }

// Func adapts fn to an Observer. Each call returns a distinct observer.
func Func(name string, fn func(message string)) Observer {
	return &funcObserver{name: name, fn: fn}
}
