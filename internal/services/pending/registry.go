package pending

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lockfit/internal/domain"
)

// Ticket is a single outstanding request.
type Ticket struct {
	ID      string
	Kind    domain.Kind
	Started time.Time

	once sync.Once
	done chan struct{}
	resp domain.Response
}

// Done is closed once the ticket is resolved.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Wait blocks until the wallet answers or ctx ends. The response's Err, if
// any, is also returned as the error.
func (t *Ticket) Wait(ctx context.Context) (domain.Response, error) {
	select {
	case <-t.done:
		return t.resp, t.resp.Err
	case <-ctx.Done():
		return domain.Response{Kind: t.Kind}, ctx.Err()
	}
}

func (t *Ticket) resolve(resp domain.Response) {
	t.once.Do(func() {
		resp.Kind = t.Kind
		t.resp = resp
		close(t.done)
	})
}

// Registry holds at most one ticket per kind.
type Registry struct {
	mu      sync.Mutex
	timeout time.Duration
	now     func() time.Time
	tickets map[domain.Kind]*Ticket
}

// NewRegistry returns a Registry. A ticket older than timeout no longer
// blocks a new request of its kind; zero disables expiry.
func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		timeout: timeout,
		now:     time.Now,
		tickets: make(map[domain.Kind]*Ticket),
	}
}

// Begin registers a new request of kind k.
func (r *Registry) Begin(k domain.Kind) (*Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.tickets[k]; ok {
		if !r.expired(prev) {
			return nil, domain.ErrRequestInFlight
		}
		log.Warn().Str("kind", k.String()).Str("ticket", prev.ID).Msg("Abandoning expired pending request")
		prev.resolve(domain.Response{Err: domain.ErrRequestExpired})
	}

	t := &Ticket{
		ID:      uuid.NewString(),
		Kind:    k,
		Started: r.now(),
		done:    make(chan struct{}),
	}
	r.tickets[k] = t
	return t, nil
}

// Pending reports whether a request of kind k is waiting.
func (r *Registry) Pending(k domain.Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tickets[k]
	return ok
}

// Resolve delivers resp to the waiting ticket of kind k and removes it.
// It reports false when nothing was waiting.
func (r *Registry) Resolve(k domain.Kind, resp domain.Response) (*Ticket, bool) {
	r.mu.Lock()
	t, ok := r.tickets[k]
	if ok {
		delete(r.tickets, k)
	}
	r.mu.Unlock()

	if !ok {
		return nil, false
	}
	t.resolve(resp)
	return t, true
}

// Cancel removes t if it is still the registered ticket for its kind and
// resolves it with err.
func (r *Registry) Cancel(t *Ticket, err error) {
	r.mu.Lock()
	if cur, ok := r.tickets[t.Kind]; ok && cur == t {
		delete(r.tickets, t.Kind)
	}
	r.mu.Unlock()
	t.resolve(domain.Response{Err: err})
}

// CancelAll resolves every outstanding ticket with err.
func (r *Registry) CancelAll(err error) {
	r.mu.Lock()
	tickets := r.tickets
	r.tickets = make(map[domain.Kind]*Ticket)
	r.mu.Unlock()

	for _, t := range tickets {
		t.resolve(domain.Response{Err: err})
	}
}

func (r *Registry) expired(t *Ticket) bool {
	return r.timeout > 0 && r.now().Sub(t.Started) > r.timeout
}
