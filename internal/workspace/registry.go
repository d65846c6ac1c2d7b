package workspace

import (
	"log/slog"
	"sync"
	"time"

	"github.com/garnizeh/interviewdesk/internal/metrics"
	"github.com/garnizeh/interviewdesk/internal/session"
)

// DefaultSweepInterval is how often Start drops workspaces of expired sessions.
const DefaultSweepInterval = time.Minute

type entry struct {
	ws      *Workspace
	expires time.Time
}

// Registry keeps one workspace per live session. A workspace is dropped when
// the session provider reports the session gone or when the session expires.
type Registry struct {
	deps  Deps
	now   func() time.Time
	every time.Duration

	mu          sync.Mutex
	byID        map[string]entry
	unsubscribe func()
	stop        chan struct{}
	done        chan struct{}
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps, now: time.Now, every: DefaultSweepInterval, byID: map[string]entry{}}
}

// SetClock replaces the clock used for expiry checks.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// SetSweepInterval changes the period of the background sweep. It takes
// effect on the next Start.
func (r *Registry) SetSweepInterval(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d > 0 {
		r.every = d
	}
}

// Start subscribes to p and begins the expiry sweep. Close undoes both.
func (r *Registry) Start(p session.Provider) {
	unsub := p.Subscribe(r.handle)
	r.mu.Lock()
	r.unsubscribe = unsub
	if r.stop == nil {
		r.stop = make(chan struct{})
		r.done = make(chan struct{})
		go r.sweepLoop(r.every, r.stop, r.done)
	}
	r.mu.Unlock()
}

// Close unsubscribes, stops the sweep and drops every workspace.
func (r *Registry) Close() {
	r.mu.Lock()
	unsub := r.unsubscribe
	r.unsubscribe = nil
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	r.byID = map[string]entry{}
	r.mu.Unlock()
	metrics.ActiveWorkspaces.Set(0)
	if unsub != nil {
		unsub()
	}
	if stop != nil {
		close(stop)
		<-done
	}
}

// For returns the workspace of s, creating it on first use. Expired
// workspaces are dropped on the way.
func (r *Registry) For(s *session.Session) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	if e, ok := r.byID[s.ID]; ok {
		return e.ws
	}
	w := New(s, r.deps)
	r.byID[s.ID] = entry{ws: w, expires: s.ExpiresAt}
	metrics.ActiveWorkspaces.Set(float64(len(r.byID)))
	return w
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Sweep drops the workspaces whose session has expired and returns how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

// sweepLocked expects r.mu held. A zero expiry never expires.
func (r *Registry) sweepLocked() int {
	now := r.now()
	dropped := 0
	for id, e := range r.byID {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(r.byID, id)
			dropped++
		}
	}
	if dropped > 0 {
		metrics.ActiveWorkspaces.Set(float64(len(r.byID)))
		if r.deps.Logger != nil {
			r.deps.Logger.Debug("expired workspaces dropped", slog.Int("count", dropped))
		}
	}
	return dropped
}

func (r *Registry) sweepLoop(every time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			r.Sweep()
		}
	}
}

func (r *Registry) handle(ev session.Event) {
	if ev.Kind != session.EventAbsent {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, e := range r.byID {
		if id == ev.SessionID || (ev.SessionID == "" && e.ws.Email() == ev.Email) {
			delete(r.byID, id)
			dropped++
		}
	}
	metrics.ActiveWorkspaces.Set(float64(len(r.byID)))
	if dropped > 0 && r.deps.Logger != nil {
		r.deps.Logger.Info("workspaces dropped", slog.String("email", ev.Email), slog.Int("count", dropped))
	}
}
