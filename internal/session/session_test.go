package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/pkg/repository/mock"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newManager(t *testing.T) (*Manager, *mock.Mocks, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	iss := NewIssuer("test-secret", time.Hour)
	iss.now = c.now
	store := NewMemoryStore()
	store.now = c.now
	m := mock.NewMocks()
	mgr := NewManager(m.UserRepo, iss, store, nil, nil)
	mgr.now = c.now
	return mgr, m, c
}

func TestSignUpThenSignIn(t *testing.T) {
	mgr, m, _ := newManager(t)
	ctx := context.Background()

	tok, s, err := mgr.SignUp(ctx, "Ana", " Ana@Example.com ", "Acme", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", s.Email)
	require.NotNil(t, m.UserRepo.Stored)
	assert.NotEqual(t, "hunter22", m.UserRepo.Stored.PasswordHash)
	assert.Equal(t, "Acme", m.UserRepo.Stored.Company)

	cur, err := mgr.Current(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, s.ID, cur.ID)

	_, s2, err := mgr.SignIn(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, s2.ID, "each sign-in is its own session")

	_, _, err = mgr.SignIn(ctx, "ana@example.com", "wrong")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	_, _, err = mgr.SignIn(ctx, "nobody@example.com", "hunter22")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestSignUp_Validation(t *testing.T) {
	mgr, m, _ := newManager(t)
	ctx := context.Background()

	_, _, err := mgr.SignUp(ctx, "", "ana@example.com", "", "pw")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, _, err = mgr.SignUp(ctx, "Ana", "not-an-email", "", "pw")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, _, err = mgr.SignUp(ctx, "Ana", "ana@example.com", "", "pw")
	require.NoError(t, err)
	_, _, err = mgr.SignUp(ctx, "Ana", "ANA@example.com", "", "pw")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	m.UserRepo.GetErr = errors.New("db down")
	_, _, err = mgr.SignUp(ctx, "Bo", "bo@example.com", "", "pw")
	assert.Equal(t, apperr.KindFetch, apperr.KindOf(err))
}

func TestSubscribe_DeliversPresentAndAbsent(t *testing.T) {
	mgr, _, _ := newManager(t)
	ctx := context.Background()

	var events []Event
	unsubscribe := mgr.Subscribe(func(ev Event) { events = append(events, ev) })

	tok, s, err := mgr.SignUp(ctx, "Ana", "ana@example.com", "", "pw")
	require.NoError(t, err)
	require.NoError(t, mgr.SignOut(ctx, tok))

	require.Len(t, events, 2)
	assert.Equal(t, EventPresent, events[0].Kind)
	assert.Equal(t, s.ID, events[0].Session.ID)
	assert.Equal(t, Event{Kind: EventAbsent, SessionID: s.ID, Email: "ana@example.com"}, events[1])

	_, err = mgr.Current(ctx, tok)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	unsubscribe()
	unsubscribe()
	_, _, err = mgr.SignIn(ctx, "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Len(t, events, 2, "no delivery after unsubscribe")
}

func TestSignOutEverywhere(t *testing.T) {
	mgr, _, c := newManager(t)
	ctx := context.Background()

	first, _, err := mgr.SignUp(ctx, "Ana", "ana@example.com", "", "pw")
	require.NoError(t, err)
	c.t = c.t.Add(time.Second)
	second, _, err := mgr.SignIn(ctx, "ana@example.com", "pw")
	require.NoError(t, err)

	var got []Event
	mgr.Subscribe(func(ev Event) { got = append(got, ev) })

	c.t = c.t.Add(time.Second)
	require.NoError(t, mgr.SignOutEverywhere(ctx, "Ana@example.com"))
	require.Len(t, got, 1)
	assert.Equal(t, Event{Kind: EventAbsent, Email: "ana@example.com"}, got[0])

	for _, tok := range []string{first, second} {
		_, err := mgr.Current(ctx, tok)
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	}

	c.t = c.t.Add(time.Millisecond)
	fresh, _, err := mgr.SignIn(ctx, "ana@example.com", "pw")
	require.NoError(t, err)
	_, err = mgr.Current(ctx, fresh)
	assert.NoError(t, err)
}

func TestCurrent_RejectsGarbage(t *testing.T) {
	mgr, _, _ := newManager(t)
	_, err := mgr.Current(context.Background(), "nope")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestBeginSignIn_Disabled(t *testing.T) {
	mgr, _, _ := newManager(t)
	_, err := mgr.BeginSignIn("state")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, _, err = mgr.CompleteSignIn(context.Background(), "code")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
