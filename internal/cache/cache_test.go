package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func TestMemoryStateStore_SingleUse(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStateStore()

	if err := s.Put(ctx, "abc", OAuthState{Provider: "google", LinkClientID: 7}, StateTTL); err != nil {
		t.Fatal(err)
	}

	st, err := s.Take(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if st.Provider != "google" || st.LinkClientID != 7 {
		t.Fatalf("state = %+v", st)
	}

	if _, err := s.Take(ctx, "abc"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("second take: %v", err)
	}
}

func TestMemoryStateStore_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStateStore()
	s.now = func() time.Time { return now }

	_ = s.Put(ctx, "abc", OAuthState{Provider: "facebook"}, StateTTL)
	now = now.Add(StateTTL + time.Second)

	if _, err := s.Take(ctx, "abc"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expired state returned: %v", err)
	}
}

func TestMemoryLoginLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLoginLimiter()
	l.now = func() time.Time { return now }

	for i := 0; i < MaxLoginFailures-1; i++ {
		_ = l.Fail(ctx, "ana@example.com")
	}
	if blocked, _ := l.Blocked(ctx, "ana@example.com"); blocked {
		t.Fatal("blocked before the limit")
	}

	_ = l.Fail(ctx, "ana@example.com")
	if blocked, _ := l.Blocked(ctx, "ana@example.com"); !blocked {
		t.Fatal("not blocked at the limit")
	}
	if blocked, _ := l.Blocked(ctx, "other@example.com"); blocked {
		t.Fatal("limit leaked across keys")
	}

	now = now.Add(LoginFailureWindow + time.Second)
	if blocked, _ := l.Blocked(ctx, "ana@example.com"); blocked {
		t.Fatal("still blocked after the window")
	}

	for i := 0; i < MaxLoginFailures; i++ {
		_ = l.Fail(ctx, "ana@example.com")
	}
	_ = l.Reset(ctx, "ana@example.com")
	if blocked, _ := l.Blocked(ctx, "ana@example.com"); blocked {
		t.Fatal("reset did not clear")
	}
}

// pipelineRecorder captures pipelined commands and stops them before any
// network I/O.
type pipelineRecorder struct {
	cmds []string
}

var errRecorded = errors.New("recorded")

func (r *pipelineRecorder) BeforeProcess(ctx context.Context, _ redis.Cmder) (context.Context, error) {
	return ctx, errRecorded
}

func (r *pipelineRecorder) AfterProcess(context.Context, redis.Cmder) error { return nil }

func (r *pipelineRecorder) BeforeProcessPipeline(ctx context.Context, cmds []redis.Cmder) (context.Context, error) {
	for _, c := range cmds {
		parts := make([]string, 0, len(c.Args()))
		for _, a := range c.Args() {
			parts = append(parts, fmt.Sprint(a))
		}
		r.cmds = append(r.cmds, strings.Join(parts, " "))
	}
	return ctx, errRecorded
}

func (r *pipelineRecorder) AfterProcessPipeline(context.Context, []redis.Cmder) error { return nil }

func TestRedisLoginLimiter_FailIsAtomic(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = rdb.Close() })

	rec := &pipelineRecorder{}
	rdb.AddHook(rec)

	err := NewRedisLoginLimiter(rdb).Fail(context.Background(), "login:client:7")
	if !errors.Is(err, errRecorded) {
		t.Fatalf("err = %v", err)
	}

	want := []string{
		"multi",
		"incr login:fail:login:client:7",
		fmt.Sprintf("expire login:fail:login:client:7 %d NX", int64(LoginFailureWindow/time.Second)),
		"exec",
	}
	if fmt.Sprint(rec.cmds) != fmt.Sprint(want) {
		t.Fatalf("pipeline = %q, want %q", rec.cmds, want)
	}
}
