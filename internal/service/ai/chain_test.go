package ai

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/zhouzirui/judge-companion/backend/pkg/logger"
)

func TestChainStopsAtFirstSuccess(t *testing.T) {
	primary := &fakeProvider{name: "primary", reply: "first"}
	secondary := &fakeProvider{name: "secondary", reply: "second"}
	chain := NewChain([]Provider{primary, secondary}, time.Second, nil, logger.Discard())

	text, name, err := chain.Complete(context.Background(), "sys", "hi", ChatOptions)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "first" || name != "primary" {
		t.Fatalf("got %q from %q", text, name)
	}
	if secondary.callCount() != 0 {
		t.Fatalf("secondary should not be called, got %d calls", secondary.callCount())
	}
}

func TestChainFallsBackOnceWithoutRetry(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: fmt.Errorf("%w: quota", ErrProviderUnavailable)}
	secondary := &fakeProvider{name: "secondary", reply: "second"}
	recorder := &fakeRecorder{}
	chain := NewChain([]Provider{primary, secondary}, time.Second, recorder, logger.Discard())

	text, name, err := chain.Complete(context.Background(), "sys", "hi", ChatOptions)
	if err != nil || text != "second" || name != "secondary" {
		t.Fatalf("got %q from %q, err=%v", text, name, err)
	}
	if primary.callCount() != 1 || secondary.callCount() != 1 {
		t.Fatalf("expected one call each, got %d/%d", primary.callCount(), secondary.callCount())
	}
	want := []string{"primary:chat:error", "secondary:chat:success"}
	if !reflect.DeepEqual(recorder.statuses, want) {
		t.Fatalf("recorded %v, want %v", recorder.statuses, want)
	}
}

func TestChainTimeoutCountsAsFailure(t *testing.T) {
	slow := &fakeProvider{name: "slow", reply: "late", delay: time.Second}
	fast := &fakeProvider{name: "fast", reply: "quick"}
	recorder := &fakeRecorder{}
	chain := NewChain([]Provider{slow, fast}, 20*time.Millisecond, recorder, logger.Discard())

	text, name, err := chain.Complete(context.Background(), "sys", "hi", ChatOptions)
	if err != nil || name != "fast" || text != "quick" {
		t.Fatalf("expected fallback after timeout, got %q from %q err=%v", text, name, err)
	}
	if recorder.statuses[0] != "slow:chat:timeout" {
		t.Fatalf("expected timeout status, got %v", recorder.statuses)
	}
}

func TestChainAllFailed(t *testing.T) {
	chain := NewChain([]Provider{
		&fakeProvider{name: "a", err: errors.New("boom")},
		&fakeProvider{name: "b", reply: ""},
	}, time.Second, nil, logger.Discard())

	_, _, err := chain.Complete(context.Background(), "sys", "hi", ChatOptions)
	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("expected ChainError, got %v", err)
	}
	if len(chainErr.Failures) != 2 {
		t.Fatalf("expected two failures, got %d", len(chainErr.Failures))
	}
	if chainErr.AllEmpty() {
		t.Fatal("mixed failures are not all empty")
	}
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatal("expected errors.Is to see the empty completion")
	}
}

func TestChainKeepsNonEmptyReplyAsIs(t *testing.T) {
	first := &fakeProvider{name: "first", reply: "not json"}
	second := &fakeProvider{name: "second", reply: "{}"}
	chain := NewChain([]Provider{first, second}, time.Second, nil, logger.Discard())

	text, name, err := chain.Complete(context.Background(), "sys", "hi", AnalyticsOptions)
	if err != nil || text != "not json" || name != "first" {
		t.Fatalf("got %q from %q err=%v", text, name, err)
	}
	if second.calls != 0 {
		t.Fatalf("second provider should not be called, got %d calls", second.calls)
	}
}

func TestChainWithoutProviders(t *testing.T) {
	chain := NewChain(nil, 0, nil, nil)
	if chain.Configured() {
		t.Fatal("empty chain should not be configured")
	}
	if chain.Timeout() != 30*time.Second {
		t.Fatalf("expected default timeout, got %s", chain.Timeout())
	}
	if _, _, err := chain.Complete(context.Background(), "s", "u", ChatOptions); !errors.Is(err, ErrNoProviders) {
		t.Fatalf("expected ErrNoProviders, got %v", err)
	}
}
