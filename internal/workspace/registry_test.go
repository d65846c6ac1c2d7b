package workspace_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/interviewdesk/internal/session"
	"github.com/garnizeh/interviewdesk/internal/workspace"
	"github.com/garnizeh/interviewdesk/pkg/repository/mock"
)

type fakeProvider struct {
	fn           func(session.Event)
	unsubscribed bool
}

func (p *fakeProvider) Current(ctx context.Context, token string) (*session.Session, error) {
	return nil, nil
}

func (p *fakeProvider) Subscribe(fn func(session.Event)) func() {
	p.fn = fn
	return func() { p.unsubscribed = true }
}

func (p *fakeProvider) BeginSignIn(state string) (string, error) { return "", nil }

func (p *fakeProvider) SignOutEverywhere(ctx context.Context, email string) error { return nil }

func TestRegistry(t *testing.T) {
	reg := workspace.NewRegistry(deps(mock.NewMocks()))
	p := &fakeProvider{}
	reg.Start(p)
	require.NotNil(t, p.fn)

	a := &session.Session{ID: "a", Email: owner}
	b := &session.Session{ID: "b", Email: owner}
	c := &session.Session{ID: "c", Email: "other@example.com"}

	wa := reg.For(a)
	assert.Same(t, wa, reg.For(a))
	reg.For(b)
	reg.For(c)
	assert.Equal(t, 3, reg.Len())

	p.fn(session.Event{Kind: session.EventPresent, SessionID: "a", Email: owner})
	assert.Equal(t, 3, reg.Len())

	p.fn(session.Event{Kind: session.EventAbsent, SessionID: "a", Email: owner})
	assert.Equal(t, 2, reg.Len())
	assert.NotSame(t, wa, reg.For(a), "a dropped workspace starts over")

	p.fn(session.Event{Kind: session.EventAbsent, Email: owner})
	assert.Equal(t, 1, reg.Len())

	reg.Close()
	assert.True(t, p.unsubscribed)
	assert.Equal(t, 0, reg.Len())
}

// clock is a settable time source for expiry checks.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestRegistry_DropsExpiredSessions(t *testing.T) {
	clk := &clock{t: time.UnixMilli(1_700_000_000_000)}
	reg := workspace.NewRegistry(deps(mock.NewMocks()))
	reg.SetClock(clk.Now)

	short := &session.Session{ID: "short", Email: owner, ExpiresAt: clk.Now().Add(time.Minute)}
	long := &session.Session{ID: "long", Email: owner, ExpiresAt: clk.Now().Add(time.Hour)}
	forever := &session.Session{ID: "forever", Email: owner}

	ws := reg.For(short)
	reg.For(long)
	reg.For(forever)
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, 0, reg.Sweep())

	clk.Advance(time.Minute)
	fresh := &session.Session{ID: "fresh", Email: owner, ExpiresAt: clk.Now().Add(time.Hour)}
	reg.For(fresh)
	assert.Equal(t, 3, reg.Len(), "the expired workspace goes when another is looked up")
	assert.NotSame(t, ws, reg.For(short))

	clk.Advance(2 * time.Hour)
	assert.Equal(t, 3, reg.Sweep())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_BackgroundSweep(t *testing.T) {
	clk := &clock{t: time.UnixMilli(1_700_000_000_000)}
	reg := workspace.NewRegistry(deps(mock.NewMocks()))
	reg.SetClock(clk.Now)
	reg.SetSweepInterval(5 * time.Millisecond)
	reg.Start(&fakeProvider{})
	t.Cleanup(reg.Close)

	reg.For(&session.Session{ID: "a", Email: owner, ExpiresAt: clk.Now().Add(time.Minute)})
	require.Equal(t, 1, reg.Len())

	clk.Advance(time.Minute)
	assert.Eventually(t, func() bool { return reg.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
}
