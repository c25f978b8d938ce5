package llm

import (
	"testing"

	"github.com/kyamadi/ai-chat-service/internal/interfaces"
)

func TestConvertMessagesToClaude(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You recommend AI services."},
		{Role: "user", Content: "What can generate images?"},
		{Role: "assistant", Content: "Try a diffusion model."},
		{Role: "user", Content: "Which one is free?"},
	}

	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if systemText != "You recommend AI services." {
		t.Errorf("unexpected system text: %q", systemText)
	}
	if len(claudeMessages) != 3 {
		t.Fatalf("expected 3 messages after system extraction, got %d", len(claudeMessages))
	}
}

func TestConvertMessagesToClaude_RequiresUser(t *testing.T) {
	_, _, err := convertMessagesToClaude([]interfaces.Message{
		{Role: "system", Content: "persona"},
		{Role: "assistant", Content: "hello"},
	})
	if err == nil {
		t.Fatal("expected error when no user message present")
	}
}

func TestConvertMessagesToGemini(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You recommend AI services."},
		{Role: "user", Content: "What can generate images?"},
		{Role: "assistant", Content: "Try a diffusion model."},
	}

	contents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if systemText != "You recommend AI services." {
		t.Errorf("unexpected system text: %q", systemText)
	}
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents after system extraction, got %d", len(contents))
	}
	if contents[0].Role != "user" {
		t.Errorf("expected role user, got %s", contents[0].Role)
	}
	if contents[1].Role != "model" {
		t.Errorf("expected role model, got %s", contents[1].Role)
	}
}

func TestConvertMessagesToGemini_Empty(t *testing.T) {
	if _, _, err := convertMessagesToGemini(nil); err == nil {
		t.Fatal("expected error for empty messages")
	}
}
