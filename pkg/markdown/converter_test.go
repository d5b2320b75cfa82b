package markdown

import (
	"strings"
	"testing"
)

func TestToSpeechTextStripsEmphasis(t *testing.T) {
	if got := ToSpeechText("Hello **world**, this is *fine*."); got != "Hello world, this is fine." {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestToSpeechTextStripsListsAndHeadings(t *testing.T) {
	input := "## Next steps\n\n- Keep **receipts**\n- Call a `lawyer`\n\n1. File the claim"
	got := ToSpeechText(input)

	for _, markup := range []string{"#", "**", "`", "- "} {
		if strings.Contains(got, markup) {
			t.Fatalf("markup %q left in %q", markup, got)
		}
	}
	for _, word := range []string{"Next steps", "Keep receipts", "Call a lawyer", "File the claim"} {
		if !strings.Contains(got, word) {
			t.Fatalf("expected %q in %q", word, got)
		}
	}
	if strings.Contains(got, "\n\n") {
		t.Fatalf("expected blank lines collapsed, got %q", got)
	}
}

func TestToSpeechTextEmpty(t *testing.T) {
	if got := ToSpeechText("   "); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestToSpeechTextKeepsChinese(t *testing.T) {
	if got := ToSpeechText("**建议**：先收集证据。"); got != "建议：先收集证据。" {
		t.Fatalf("unexpected text %q", got)
	}
}
