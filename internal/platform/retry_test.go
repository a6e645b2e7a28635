package platform

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	old := sleep
	sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	t.Cleanup(func() { sleep = old })
	return &slept
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", errors.New(`Post "https://api.github.com": EOF`), true},
		{"timeout", errors.New("request timeout after 30s"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"no such host", errors.New("dial tcp: lookup api.github.com: no such host"), true},
		{"bad credentials", errors.New("HTTP 401: Bad credentials"), false},
		{"server error status", &StatusError{Op: "get", StatusCode: 502}, true},
		{"not found status", &StatusError{Op: "get", StatusCode: 404}, false},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	slept := noSleep(t)
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, "op", func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry returned %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if len(*slept) != 2 || (*slept)[0] != time.Second || (*slept)[1] != 2*time.Second {
		t.Fatalf("unexpected backoff sequence: %v", *slept)
	}
}

func TestRetry_PermanentErrorFailsFast(t *testing.T) {
	noSleep(t)
	calls := 0
	want := &StatusError{Op: "create", StatusCode: 422, Message: "reference already exists"}
	err := Retry(context.Background(), RetryPolicy{MaxRetries: 5, InitialDelay: time.Millisecond}, "op", func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	noSleep(t)
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond}, "op", func() error {
		calls++
		return errors.New("i/o timeout")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestPermissionLevel_CanWrite(t *testing.T) {
	for level, want := range map[PermissionLevel]bool{
		PermissionAdmin:  true,
		PermissionWrite:  true,
		"owner":          true,
		"WRITE":          true,
		PermissionTriage: false,
		PermissionRead:   false,
		PermissionNone:   false,
		"":               false,
	} {
		if got := level.CanWrite(); got != want {
			t.Errorf("%q.CanWrite() = %v, want %v", level, got, want)
		}
	}
}

func TestParseName(t *testing.T) {
	if n, err := ParseName(""); err != nil || n != GitHub {
		t.Fatalf("ParseName(\"\") = %q, %v", n, err)
	}
	if n, err := ParseName(" Gitea "); err != nil || n != Gitea {
		t.Fatalf("ParseName(Gitea) = %q, %v", n, err)
	}
	if _, err := ParseName("gitlab"); err == nil {
		t.Fatal("expected error for gitlab")
	}
}

func TestStatusError_IsNotFound(t *testing.T) {
	err := error(&StatusError{Op: "get comment", StatusCode: 404})
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("404 should match ErrNotFound")
	}
	if errors.Is(&StatusError{StatusCode: 500}, ErrNotFound) {
		t.Fatal("500 should not match ErrNotFound")
	}
}
