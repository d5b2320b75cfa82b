package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/zhouzirui/judge-companion/backend/internal/analysis/emotion"
	"github.com/zhouzirui/judge-companion/backend/internal/config"
	"github.com/zhouzirui/judge-companion/backend/internal/model/chat"
	"github.com/zhouzirui/judge-companion/backend/pkg/logger"
)

type statusRecorder struct {
	statuses []string
}

func (r *statusRecorder) RecordSpeech(status string) {
	r.statuses = append(r.statuses, status)
}

func TestComputeEmotionParameters(t *testing.T) {
	emo := "en_male_glen_emo_v2_mars_bigtts"
	tests := []struct {
		name     string
		voice    string
		decision emotion.Decision
		enable   bool
		label    string
		scale    float32
	}{
		{"concerned", emo, emotion.Decision{Emotion: emotion.Concerned, Score: 2}, true, "comfort", 4},
		{"approving clamps", emo, emotion.Decision{Emotion: emotion.Approving, Score: 9}, true, "happy", 5},
		{"gavel tap", emo, emotion.Decision{Emotion: emotion.GavelTap, Score: 1}, true, "magnetic", 3},
		{"analyzing keeps default tone", emo, emotion.Decision{Emotion: emotion.Analyzing, Score: 3}, false, "", 0},
		{"idle", emo, emotion.Decision{Emotion: emotion.Idle}, false, "", 0},
		{"voice without emotion", "zh_male_M392_conversation_wvae_bigtts", emotion.Decision{Emotion: emotion.Concerned, Score: 2}, false, "", 0},
	}
	for _, tt := range tests {
		enable, label, scale := ComputeEmotionParameters(tt.voice, tt.decision)
		if enable != tt.enable || label != tt.label || scale != tt.scale {
			t.Errorf("%s: got (%v, %q, %v), want (%v, %q, %v)", tt.name, enable, label, scale, tt.enable, tt.label, tt.scale)
		}
	}
}

func TestVoiceFor(t *testing.T) {
	if got := VoiceFor(chat.LanguageEnglish, "zh", "en"); got != "en" {
		t.Fatalf("english voice = %q", got)
	}
	if got := VoiceFor(chat.LanguageChinese, "zh", "en"); got != "zh" {
		t.Fatalf("chinese voice = %q", got)
	}
	if got := VoiceFor(chat.LanguageEnglish, "zh", ""); got != "zh" {
		t.Fatalf("english fallback = %q", got)
	}
}

func TestSynthesizeBase64(t *testing.T) {
	fake := &ttsServer{t: t}
	fake.handler = func(conn *websocket.Conn, _ *http.Request, _ map[string]any) {
		writeFrame(t, conn, audioFrame([]byte("audio")))
		writeFrame(t, conn, finishFrame())
	}
	server := httptest.NewServer(fake)
	defer server.Close()

	recorder := &statusRecorder{}
	svc := NewService(testSpeechConfig(wsURL(server)), recorder, logger.Discard())

	reply := "**Unfortunately** this is a serious risk."
	got, err := svc.SynthesizeBase64(context.Background(), reply, chat.LanguageEnglish, emotion.Concerned)
	if err != nil {
		t.Fatalf("SynthesizeBase64 returned error: %v", err)
	}
	if got != base64.StdEncoding.EncodeToString([]byte("audio")) {
		t.Fatalf("unexpected audio %q", got)
	}

	fake.mu.Lock()
	params := fake.payloads[0]["req_params"].(map[string]any)
	fake.mu.Unlock()
	if params["text"] != "Unfortunately this is a serious risk." {
		t.Fatalf("markdown should be stripped, got %q", params["text"])
	}
	audio := params["audio_params"].(map[string]any)
	if audio["emotion"] != "comfort" || audio["emotion_scale"] != float64(5) {
		t.Fatalf("unexpected emotion params %v", audio)
	}
	if len(recorder.statuses) != 1 || recorder.statuses[0] != "success" {
		t.Fatalf("unexpected statuses %v", recorder.statuses)
	}
}

func TestSynthesizeBase64Disabled(t *testing.T) {
	recorder := &statusRecorder{}
	svc := NewService(config.SpeechConfig{}, recorder, logger.Discard())
	if svc.Enabled() {
		t.Fatal("expected disabled service")
	}
	if _, err := svc.SynthesizeBase64(context.Background(), "hi", chat.LanguageEnglish, emotion.Idle); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if recorder.statuses[0] != "disabled" {
		t.Fatalf("unexpected statuses %v", recorder.statuses)
	}
}
