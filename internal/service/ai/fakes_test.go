package ai

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zhouzirui/judge-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/judge-companion/backend/internal/model/analytics"
	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
)

type fakeProvider struct {
	name  string
	reply string
	err   error
	delay time.Duration

	calls  int32
	mu     sync.Mutex
	system string
	opts   CompletionOptions
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.system = system
	f.opts = opts
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.reply, f.err
}

func (f *fakeProvider) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

type fakeSynthesizer struct {
	audio string
	err   error
	panic bool
	label emotion.Label
	lang  chat.Language
}

func (f *fakeSynthesizer) SynthesizeBase64(ctx context.Context, text string, lang chat.Language, label emotion.Label) (string, error) {
	if f.panic {
		panic("tts client crashed")
	}
	f.label = label
	f.lang = lang
	return f.audio, f.err
}

type fakeAnalyzer struct {
	result *analytics.CaseAnalysis
	panic  bool
	calls  int32
}

func (f *fakeAnalyzer) MaybeAnalyze(ctx context.Context, userText, reply string) *analytics.CaseAnalysis {
	atomic.AddInt32(&f.calls, 1)
	if f.panic {
		panic("analytics parser crashed")
	}
	return f.result
}

type fakeRecorder struct {
	mu       sync.Mutex
	statuses []string
}

func (r *fakeRecorder) RecordProviderCall(provider, purpose, status string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, provider+":"+purpose+":"+status)
}
