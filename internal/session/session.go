// Package session is the identity collaborator: it signs users in with a local
// password or an external identity provider, resolves bearer tokens to
// sessions and tells subscribers when sessions appear or go away.
package session

import (
	"context"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/interviewdesk/internal/apperr"
	"github.com/garnizeh/interviewdesk/internal/models"
	"github.com/garnizeh/interviewdesk/pkg/repository"
)

var (
	_ Store    = (*MemoryStore)(nil)
	_ Store    = (*RedisStore)(nil)
	_ Provider = (*Manager)(nil)
)

// Session is one signed-in browser session.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type EventKind string

const (
	EventPresent EventKind = "present"
	EventAbsent  EventKind = "absent"
)

// Event reports a session change. An absent event with an empty SessionID
// covers every session of Email.
type Event struct {
	Kind      EventKind
	SessionID string
	Email     string
	Session   *Session
}

// Provider is what the rest of the service needs from the identity layer.
type Provider interface {
	Current(ctx context.Context, token string) (*Session, error)
	Subscribe(fn func(Event)) (unsubscribe func())
	BeginSignIn(state string) (string, error)
	SignOutEverywhere(ctx context.Context, email string) error
}

// Manager implements Provider over the user repository.
type Manager struct {
	users  repository.UserRepo
	issuer *Issuer
	store  Store
	oauth  *OAuth
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	seq  int
	subs map[int]func(Event)
}

// NewManager wires a Manager. oauth may be nil when external sign-in is off.
func NewManager(users repository.UserRepo, issuer *Issuer, store Store, oauth *OAuth, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{
		users:  users,
		issuer: issuer,
		store:  store,
		oauth:  oauth,
		logger: logger,
		now:    time.Now,
		subs:   map[int]func(Event){},
	}
}

// Subscribe registers fn for session events. Events are delivered synchronously
// on the goroutine that caused them.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	m.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) emit(ev Event) {
	m.mu.Lock()
	fns := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// SignUp creates a local account and signs it in.
func (m *Manager) SignUp(ctx context.Context, name, email, company, password string) (string, *Session, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if name == "" || email == "" || password == "" {
		return "", nil, apperr.Validation("MISSING_FIELDS", "name, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", nil, apperr.Validation("BAD_EMAIL", "%q is not an email address", email)
	}

	existing, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, apperr.Wrap(err, apperr.KindFetch, "USER_LOOKUP_FAILED", "could not check the account")
	}
	if existing != nil {
		return "", nil, apperr.Validation("EMAIL_TAKEN", "an account for %s already exists", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, apperr.Wrap(err, apperr.KindInternal, "HASH_FAILED", "could not store the password")
	}
	u := &models.User{Email: email, Name: name, Company: strings.TrimSpace(company), PasswordHash: string(hash)}
	if _, err := m.users.CreateUser(ctx, u); err != nil {
		return "", nil, apperr.Wrap(err, apperr.KindWrite, "CREATE_USER_FAILED", "could not create the account")
	}
	return m.start(email, name)
}

// SignIn checks a local password.
func (m *Manager) SignIn(ctx context.Context, email, password string) (string, *Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, apperr.Validation("MISSING_FIELDS", "email and password are required")
	}
	u, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, apperr.Wrap(err, apperr.KindFetch, "USER_LOOKUP_FAILED", "could not check the account")
	}
	if u == nil || u.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, apperr.New(apperr.KindAuth, "BAD_CREDENTIALS", "credentials not found")
	}
	return m.start(u.Email, u.Name)
}

// BeginSignIn returns the identity provider URL the browser is sent to.
func (m *Manager) BeginSignIn(state string) (string, error) {
	if m.oauth == nil {
		return "", apperr.New(apperr.KindValidation, "OAUTH_DISABLED", "external sign-in is not configured")
	}
	return m.oauth.AuthCodeURL(state), nil
}

// CompleteSignIn finishes the external sign-in, creating the user on first visit.
func (m *Manager) CompleteSignIn(ctx context.Context, code string) (string, *Session, error) {
	if m.oauth == nil {
		return "", nil, apperr.New(apperr.KindValidation, "OAUTH_DISABLED", "external sign-in is not configured")
	}
	id, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		return "", nil, apperr.Wrap(err, apperr.KindAuth, "OAUTH_FAILED", "external sign-in failed")
	}
	u, err := m.users.GetByEmail(ctx, id.Email)
	if err != nil {
		return "", nil, apperr.Wrap(err, apperr.KindFetch, "USER_LOOKUP_FAILED", "could not check the account")
	}
	if u == nil {
		u = &models.User{Email: id.Email, Name: id.Name}
		if _, err := m.users.CreateUser(ctx, u); err != nil {
			return "", nil, apperr.Wrap(err, apperr.KindWrite, "CREATE_USER_FAILED", "could not create the account")
		}
		m.logger.Info("user created from external sign-in", slog.String("email", id.Email))
	}
	return m.start(u.Email, u.Name)
}

func (m *Manager) start(email, name string) (string, *Session, error) {
	tok, s, err := m.issuer.Issue(email, name)
	if err != nil {
		return "", nil, apperr.Wrap(err, apperr.KindInternal, "TOKEN_FAILED", "could not start the session")
	}
	m.emit(Event{Kind: EventPresent, SessionID: s.ID, Email: s.Email, Session: s})
	return tok, s, nil
}

// Current resolves token to a live session.
func (m *Manager) Current(ctx context.Context, token string) (*Session, error) {
	s, err := m.issuer.Parse(token)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindAuth, "INVALID_TOKEN", "invalid or expired token")
	}
	revoked, err := m.store.SessionRevoked(ctx, s.ID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "SESSION_LOOKUP_FAILED", "could not verify the session")
	}
	if revoked {
		return nil, apperr.New(apperr.KindAuth, "SESSION_ENDED", "session has been signed out")
	}
	cutoff, ok, err := m.store.UserCutoff(ctx, s.Email)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "SESSION_LOOKUP_FAILED", "could not verify the session")
	}
	if ok && !s.IssuedAt.After(cutoff) {
		return nil, apperr.New(apperr.KindAuth, "SESSION_ENDED", "session has been signed out")
	}
	return s, nil
}

// SignOut ends the session carried by token.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	s, err := m.Current(ctx, token)
	if err != nil {
		return err
	}
	ttl := s.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	if err := m.store.RevokeSession(ctx, s.ID, ttl); err != nil {
		return apperr.Wrap(err, apperr.KindWrite, "SIGN_OUT_FAILED", "could not sign out")
	}
	m.emit(Event{Kind: EventAbsent, SessionID: s.ID, Email: s.Email})
	return nil
}

// SignOutEverywhere ends every session of email issued so far.
func (m *Manager) SignOutEverywhere(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := m.store.RevokeUser(ctx, email, m.now(), m.issuer.TTL()); err != nil {
		return apperr.Wrap(err, apperr.KindWrite, "SIGN_OUT_FAILED", "could not sign out")
	}
	m.logger.Info("signed out everywhere", slog.String("email", email))
	m.emit(Event{Kind: EventAbsent, Email: email})
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
