package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zhouzirui/judge-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/judge-companion/backend/internal/i18n"
	"github.com/zhouzirui/judge-companion/backend/internal/model/analytics"
	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
	"github.com/zhouzirui/judge-companion/backend/pkg/logger"
)

func newTestService(providers []Provider, opts Options) *Service {
	opts.Logger = logger.Discard()
	chain := NewChain(providers, time.Second, nil, opts.Logger)
	return NewService(chain, i18n.MustNew(), opts)
}

func TestGenerateNotConfigured(t *testing.T) {
	svc := newTestService(nil, Options{})
	messages := i18n.MustNew()

	for _, lang := range []chat.Language{chat.LanguageEnglish, chat.LanguageChinese} {
		resp, err := svc.Generate(context.Background(), "hello", lang)
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if resp.Message != messages.NotConfigured(lang) {
			t.Fatalf("expected not-configured text for %s, got %q", lang, resp.Message)
		}
		if resp.Emotion != emotion.Idle || resp.Analytics != nil {
			t.Fatalf("expected idle without analytics, got %+v", resp)
		}
	}
}

func TestGenerateAllProvidersFailReturnsApology(t *testing.T) {
	analyzer := &fakeAnalyzer{result: &analytics.CaseAnalysis{CaseStrength: 50}}
	svc := newTestService([]Provider{
		&fakeProvider{name: "openai", err: errors.New("network down")},
		&fakeProvider{name: "ark", err: errors.New("unauthorized")},
	}, Options{Analyzer: analyzer})

	resp, err := svc.Generate(context.Background(), "I had a fight", chat.LanguageChinese)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp.Message != "哎呀！处理时出了点小错误。您能再试一次吗？" {
		t.Fatalf("expected chinese apology, got %q", resp.Message)
	}
	if resp.Emotion != emotion.Idle || resp.Analytics != nil || resp.Provider != "" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if analyzer.calls != 0 {
		t.Fatal("analytics must not run after a failed turn")
	}
}

func TestGenerateAllEmptyReturnsBusy(t *testing.T) {
	svc := newTestService([]Provider{
		&fakeProvider{name: "openai", reply: "   "},
	}, Options{})

	resp, err := svc.Generate(context.Background(), "hi", chat.LanguageEnglish)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp.Message != "Oops! My response circuits are a bit busy. Could you try again?" {
		t.Fatalf("expected busy text, got %q", resp.Message)
	}
}

func TestGenerateSuccessUsesSecondaryAndEnrichments(t *testing.T) {
	primary := &fakeProvider{name: "openai", err: errors.New("429")}
	secondary := &fakeProvider{name: "ark", reply: "Unfortunately tax evasion is a serious risk. Gather your documents."}
	speech := &fakeSynthesizer{audio: "QUJD"}
	want := &analytics.CaseAnalysis{CaseStrength: 40, SuccessProbability: 30, RiskLevel: analytics.RiskHigh, KeyFactors: []string{"a", "b", "c"}, Precedents: 12}
	analyzer := &fakeAnalyzer{result: want}

	svc := newTestService([]Provider{primary, secondary}, Options{Speech: speech, Analyzer: analyzer})
	resp, err := svc.Generate(context.Background(), "I evaded taxes last year", chat.LanguageEnglish)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if resp.Message != secondary.reply || resp.Provider != "ark" {
		t.Fatalf("unexpected reply %q from %q", resp.Message, resp.Provider)
	}
	if resp.Emotion != emotion.Concerned {
		t.Fatalf("expected concerned, got %s", resp.Emotion)
	}
	if resp.AudioBase64 != "QUJD" || speech.label != emotion.Concerned || speech.lang != chat.LanguageEnglish {
		t.Fatalf("speech not wired: audio=%q label=%s lang=%s", resp.AudioBase64, speech.label, speech.lang)
	}
	if resp.Analytics != want {
		t.Fatalf("expected analytics from analyzer, got %+v", resp.Analytics)
	}
	if !strings.Contains(secondary.system, "You MUST respond in English") {
		t.Fatal("secondary should receive the same language instruction")
	}
	if secondary.opts.MaxTokens != 200 || secondary.opts.Temperature != 0.8 {
		t.Fatalf("unexpected chat budget %+v", secondary.opts)
	}
}

func TestGenerateSpeechFailureOmitsAudio(t *testing.T) {
	svc := newTestService([]Provider{&fakeProvider{name: "openai", reply: "Hello."}},
		Options{Speech: &fakeSynthesizer{err: errors.New("tts down")}})

	resp, err := svc.Generate(context.Background(), "hi", chat.LanguageEnglish)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp.Message != "Hello." || resp.AudioBase64 != "" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestGeneratePanickingEnrichmentsAreOmitted(t *testing.T) {
	svc := newTestService([]Provider{&fakeProvider{name: "openai", reply: "Hello."}},
		Options{
			Speech:   &fakeSynthesizer{panic: true},
			Analyzer: &fakeAnalyzer{panic: true},
		})

	resp, err := svc.Generate(context.Background(), "I was sued", chat.LanguageEnglish)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp.Message != "Hello." || resp.Provider != "openai" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.AudioBase64 != "" || resp.Analytics != nil {
		t.Fatalf("expected audio and analytics to be omitted, got %+v", resp)
	}
}

func TestGenerateCancelledContext(t *testing.T) {
	svc := newTestService([]Provider{&fakeProvider{name: "openai", reply: "x"}}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Generate(ctx, "hi", chat.LanguageEnglish); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildSystemPromptLanguage(t *testing.T) {
	zh := BuildSystemPrompt(chat.LanguageChinese)
	if !strings.Contains(zh, "You MUST respond in Chinese (中文)") {
		t.Fatal("chinese prompt missing language instruction")
	}
	en := BuildSystemPrompt(chat.LanguageEnglish)
	if !strings.Contains(en, "You MUST respond in English") || strings.Contains(en, "%LANGUAGE%") {
		t.Fatal("english prompt malformed")
	}
	if !strings.Contains(en, "For non-legal topics, briefly redirect to legal matters") {
		t.Fatal("prompt should keep the redirect guideline")
	}
}
