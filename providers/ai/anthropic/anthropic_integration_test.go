//go:build integration

package anthropic

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/replicator/providers/ai"
)

func TestIntegration_Complete(t *testing.T) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	p := New(ai.Config{Kind: ai.KindAnthropic, APIKey: key, Model: os.Getenv("ANTHROPIC_TEST_MODEL")})
	got, err := p.Complete(ctx, ai.CompletionRequest{
		Prompt:    `Reply with a JSON object {"answer": <number>} for 2+2.`,
		MaxTokens: 64,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.HasPrefix(got.Text, "{") || !strings.Contains(got.Text, "4") {
		t.Errorf("unexpected reply %q", got.Text)
	}
}
