package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/garnizeh/interviewdesk/api"
	"github.com/garnizeh/interviewdesk/internal/config"
	"github.com/garnizeh/interviewdesk/internal/invite"
	"github.com/garnizeh/interviewdesk/internal/session"
	"github.com/garnizeh/interviewdesk/internal/workspace"
	"github.com/garnizeh/interviewdesk/pkg/repository/mock"
)

const testSecret = "testsecret"

type nopQueue struct{ n int }

func (q *nopQueue) Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error) {
	q.n++
	return int64(q.n), nil
}

type testApp struct {
	router   *mux.Router
	mocks    *mock.Mocks
	sessions *session.Manager
	registry *workspace.Registry
	queue    *nopQueue
}

func newTestApp(t *testing.T, oauth *session.OAuth) *testApp {
	t.Helper()
	api.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	m := mock.NewMocks()
	mgr := session.NewManager(m.UserRepo, session.NewIssuer(testSecret, time.Hour), session.NewMemoryStore(), oauth, nil)
	q := &nopQueue{}
	reg := workspace.NewRegistry(workspace.Deps{
		Interviews: m.InterviewRepo,
		Tasks:      m.TaskRepo,
		Results:    m.ResultRepo,
		Invites:    invite.NewService(m.InvitationRepo, q, "https://app.example.com", nil),
	})
	reg.Start(mgr)
	t.Cleanup(reg.Close)

	cfg := &config.Config{PublicURL: "https://app.example.com"}
	r := api.SetupRoutes(cfg, "test", "now", api.Services{
		Sessions:   mgr,
		Registry:   reg,
		Interviews: m.InterviewRepo,
		Results:    m.ResultRepo,
	})
	return &testApp{router: r, mocks: m, sessions: mgr, registry: reg, queue: q}
}

// do sends a request with an optional JSON body and bearer token.
func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) signUp(t *testing.T, email string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{"name": "Test", "email": email, "password": "pw-123"})
	if w.Code != http.StatusOK {
		t.Fatalf("signup: expected 200 got %d: %s", w.Code, w.Body.String())
	}
	var ar struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ar); err != nil || ar.Token == "" {
		t.Fatalf("signup: bad body %s", w.Body.String())
	}
	return ar.Token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var eb struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeBody(t, w, &eb)
	return eb.Error.Code
}
