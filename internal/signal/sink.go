package signal

import (
	"sync"

	"github.com/rxtech-lab/argo-execution/pkg/errors"
	"go.uber.org/multierr"
)

// Listener receives signals from a Sink.
type Listener interface {
	OnSignal(s Signal) error
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(s Signal) error

func (f ListenerFunc) OnSignal(s Signal) error {
	return f(s)
}

// Sink fans signals out to its listeners. A Sink may be shared by engines
// running on different goroutines; dispatch holds the lock for the whole
// fan-out so every listener sees the signals in the same order.
type Sink struct {
	mu        sync.Mutex
	listeners []Listener
}

func NewSink() *Sink {
	return &Sink{
		mu:        sync.Mutex{},
		listeners: nil,
	}
}

func (s *Sink) AddListener(listener Listener) {
	if listener == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, listener)
}

// HasListeners reports whether at least one listener is registered.
// A nil sink has none.
func (s *Sink) HasListeners() bool {
	if s == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.listeners) > 0
}

func (s *Sink) Len() int {
	if s == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.listeners)
}

// Dispatch delivers sig to every listener. All listeners are called even if
// some fail; their errors are combined.
func (s *Sink) Dispatch(sig Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error

	for _, listener := range s.listeners {
		err = multierr.Append(err, listener.OnSignal(sig))
	}

	if err != nil {
		return errors.Wrapf(errors.ErrCodeSignalDispatchFailed, err, "failed to dispatch signal %s", sig.Type)
	}

	return nil
}

// CollectingListener keeps every signal it receives.
type CollectingListener struct {
	mu      sync.Mutex
	signals []Signal
}

func NewCollectingListener() *CollectingListener {
	return &CollectingListener{
		mu:      sync.Mutex{},
		signals: nil,
	}
}

func (c *CollectingListener) OnSignal(s Signal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.signals = append(c.signals, s)

	return nil
}

// Signals returns a copy of the received signals in arrival order.
func (c *CollectingListener) Signals() []Signal {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Signal, len(c.signals))
	copy(out, c.signals)

	return out
}

func (c *CollectingListener) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.signals)
}
