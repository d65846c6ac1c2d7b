package jobs_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"go.uber.org/goleak"

	dbfs "github.com/garnizeh/interviewdesk/db"
	"github.com/garnizeh/interviewdesk/internal/db"
	"github.com/garnizeh/interviewdesk/internal/jobs"
)

func TestMain(m *testing.M) {
	defer goleak.VerifyTestMain(m)
	os.Exit(m.Run())
}

func newRepo(t *testing.T) *jobs.Repository {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return jobs.NewRepository(d)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestBackoffDuration(t *testing.T) {
	cases := map[int]time.Duration{
		0:  time.Second,
		1:  2 * time.Second,
		3:  8 * time.Second,
		8:  256 * time.Second,
		9:  5 * time.Minute,
		64: 5 * time.Minute,
	}
	for attempt, want := range cases {
		if got := jobs.BackoffDuration(attempt); got != want {
			t.Fatalf("BackoffDuration(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestRepository_FetchOrder(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	low, err := repo.Enqueue(ctx, &jobs.Job{Type: "a", Payload: []byte(`{}`), Priority: 10})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	high, err := repo.Enqueue(ctx, &jobs.Job{Type: "b", Payload: []byte(`{}`), Priority: 1})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := repo.Enqueue(ctx, &jobs.Job{Type: "later", ScheduledAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	first, err := repo.FetchNext(ctx)
	if err != nil || first == nil {
		t.Fatalf("FetchNext: %v %v", first, err)
	}
	if first.ID != high || first.Status != jobs.StatusRunning {
		t.Fatalf("first job = %d/%s, want %d/running", first.ID, first.Status, high)
	}
	second, err := repo.FetchNext(ctx)
	if err != nil || second == nil || second.ID != low {
		t.Fatalf("second job = %+v, %v", second, err)
	}
	if second.MaxAttempts != jobs.DefaultMaxAttempts {
		t.Fatalf("max attempts = %d", second.MaxAttempts)
	}

	none, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("FetchNext: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no due job, got %+v", none)
	}
}

func TestEnqueueAndProcess(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	handled := make(chan string, 1)
	handlers := map[string]jobs.Handler{
		"test": func(ctx context.Context, j *jobs.Job) error {
			handled <- string(j.Payload)
			return nil
		},
	}
	pool := jobs.NewWorkerPool(repo, handlers, slog.Default(), 1)
	pool.SetPollInterval(10 * time.Millisecond)
	pool.Start(ctx)
	defer pool.Stop()

	id, err := pool.Enqueue(ctx, "test", map[string]string{"foo": "bar"}, 10, 3)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case payload := <-handled:
		if payload != `{"foo":"bar"}` {
			t.Fatalf("payload = %s", payload)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("handler was not called")
	}

	waitFor(t, "job done", func() bool {
		j, err := repo.Get(ctx, id)
		return err == nil && j != nil && j.Status == jobs.StatusDone
	})
}

func TestFailingJobIsRetriedThenDeadLettered(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	handlers := map[string]jobs.Handler{
		"flaky": func(ctx context.Context, j *jobs.Job) error { return errors.New("smtp unavailable") },
	}
	pool := jobs.NewWorkerPool(repo, handlers, slog.Default(), 1)
	pool.SetPollInterval(10 * time.Millisecond)
	pool.Start(ctx)

	retried, err := pool.Enqueue(ctx, "flaky", "r", 0, 3)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	waitFor(t, "retry scheduled", func() bool {
		j, err := repo.Get(ctx, retried)
		return err == nil && j != nil && j.Status == jobs.StatusRetry
	})
	j, _ := repo.Get(ctx, retried)
	if j.Attempts != 1 || j.LastError != "smtp unavailable" || j.NextTryAt == nil || !j.NextTryAt.After(time.Now()) {
		t.Fatalf("unexpected retry state: %+v", j)
	}

	dead, err := pool.Enqueue(ctx, "flaky", "d", 0, 1)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := pool.Enqueue(ctx, "unknown", "u", 0, 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitFor(t, "dead letters", func() bool {
		dl, err := repo.DeadLetters(ctx)
		return err == nil && len(dl) == 2
	})
	pool.Stop()

	dl, _ := repo.DeadLetters(ctx)
	if dl[0].JobID != dead || dl[0].LastError != "smtp unavailable" || dl[0].Attempts != 1 {
		t.Fatalf("unexpected dead letter: %+v", dl[0])
	}
	if dl[1].LastError != "no handler" {
		t.Fatalf("unexpected dead letter: %+v", dl[1])
	}
	if gone, _ := repo.Get(ctx, dead); gone != nil {
		t.Fatalf("dead-lettered job still queued")
	}
}

func TestStop_Idempotent(t *testing.T) {
	pool := jobs.NewWorkerPool(newRepo(t), nil, nil, 2)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()
}
