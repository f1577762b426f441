package lazyshared

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type counter struct {
	mu    sync.Mutex
	value int
}

func (c *counter) set(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
}

func (c *counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func TestInstance(t *testing.T) {
	t.Run("ConcurrentFirstAccess", func(t *testing.T) {
		var constructions atomic.Int32
		inst := New(func() *counter {
			constructions.Add(1)
			time.Sleep(20 * time.Millisecond)
			return &counter{}
		})

		const callers = 10
		results := make([]*counter, callers)
		start := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(callers)
		for i := range callers {
			go func() {
				defer wg.Done()
				<-start
				results[i] = inst.Get()
			}()
		}
		close(start)
		wg.Wait()

		if n := constructions.Load(); n != 1 {
			t.Errorf("Expected 1 construction, got %d", n)
		}
		for i, r := range results {
			if r == nil {
				t.Fatalf("Expected result %d to be non-nil", i)
			}
			if r != results[0] {
				t.Errorf("Expected result %d to be the same instance as result 0", i)
			}
		}
	})

	t.Run("ConstructsOnceRegardlessOfVolume", func(t *testing.T) {
		var constructions atomic.Int32
		inst := New(func() int {
			constructions.Add(1)
			return 42
		})
		for range 1000 {
			if v := inst.Get(); v != 42 {
				t.Fatalf("Expected 42, got %d", v)
			}
		}
		if n := constructions.Load(); n != 1 {
			t.Errorf("Expected 1 construction, got %d", n)
		}
	})

	t.Run("MutationVisibleAcrossGoroutines", func(t *testing.T) {
		inst := New(func() *counter { return &counter{} })
		inst.Get().set(10)

		done := make(chan int)
		go func() { done <- inst.Get().get() }()
		if v := <-done; v != 10 {
			t.Errorf("Expected mutation to be visible, got %d", v)
		}

		inst.Get().set(20)
		if v := inst.Get().get(); v != 20 {
			t.Errorf("Expected 20, got %d", v)
		}
	})

	t.Run("StateTransitions", func(t *testing.T) {
		release := make(chan struct{})
		entered := make(chan struct{})
		inst := New(func() string {
			close(entered)
			<-release
			return "ready"
		})

		if s := inst.State(); s != Empty {
			t.Errorf("Expected %v, got %v", Empty, s)
		}
		if _, ok := inst.Peek(); ok {
			t.Error("Expected Peek to report no value before construction")
		}

		got := make(chan string)
		go func() { got <- inst.Get() }()
		<-entered
		if s := inst.State(); s != Constructing {
			t.Errorf("Expected %v, got %v", Constructing, s)
		}
		close(release)

		if v := <-got; v != "ready" {
			t.Errorf("Expected 'ready', got '%s'", v)
		}
		if s := inst.State(); s != Ready {
			t.Errorf("Expected %v, got %v", Ready, s)
		}
		if v, ok := inst.Peek(); !ok || v != "ready" {
			t.Errorf("Expected Peek to return 'ready', got '%s' (%v)", v, ok)
		}
	})

	t.Run("PeekDoesNotConstruct", func(t *testing.T) {
		var constructions atomic.Int32
		inst := New(func() int {
			constructions.Add(1)
			return 1
		})
		for range 5 {
			inst.Peek()
		}
		if n := constructions.Load(); n != 0 {
			t.Errorf("Expected Peek not to construct, got %d constructions", n)
		}
	})

	t.Run("PanicRepeats", func(t *testing.T) {
		inst := New(func() int { panic("boom") })
		for range 2 {
			func() {
				defer func() {
					if r := recover(); r != "boom" {
						t.Errorf("Expected panic 'boom', got %v", r)
					}
				}()
				inst.Get()
			}()
		}
		if s := inst.State(); s != Constructing {
			t.Errorf("Expected a panicking constructor to stay %v, got %v", Constructing, s)
		}
		if _, ok := inst.Peek(); ok {
			t.Error("Expected Peek to report no value after a panic")
		}
	})

	t.Run("NilConstructor", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("Expected New(nil) to panic")
			}
		}()
		New[int](nil)
	})
}

func TestInstanceAsGetter(t *testing.T) {
	var g Getter[*counter] = New(func() *counter { return &counter{value: 7} })
	if v := g.Get().get(); v != 7 {
		t.Errorf("Expected 7, got %d", v)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Empty:        "empty",
		Constructing: "constructing",
		Ready:        "ready",
		State(99):    "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Expected '%s', got '%s'", want, got)
		}
	}
}

func BenchmarkInstanceGetReady(b *testing.B) {
	inst := New(func() *counter { return &counter{} })
	inst.Get()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			inst.Get()
		}
	})
}
