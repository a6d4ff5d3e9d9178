package appfactory

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leofalp/replicator/core/client"
	"github.com/leofalp/replicator/providers/ai"
)

// scriptedProvider answers every prompt through reply and records prompts.
type scriptedProvider struct {
	reply func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (s *scriptedProvider) Complete(_ context.Context, request ai.CompletionRequest) (*ai.RawCompletion, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, request.Prompt)
	s.mu.Unlock()

	text, err := s.reply(request.Prompt)
	if err != nil {
		return nil, err
	}
	return &ai.RawCompletion{Text: text, Provider: ai.KindGoogle, Model: "scripted"}, nil
}

func (s *scriptedProvider) Kind() ai.Kind { return ai.KindGoogle }
func (s *scriptedProvider) Model() string { return "scripted" }

func (s *scriptedProvider) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

var fileLine = regexp.MustCompile(`File to generate: (\S+)`)

// targetFile returns the path an engineer prompt asks for.
func targetFile(prompt string) string {
	m := fileLine.FindStringSubmatch(prompt)
	if m == nil {
		return ""
	}
	return m[1]
}

func codeReply(code string) string {
	data, _ := json.Marshal(CodeResponse{Code: code})
	return string(data)
}

func newBaseClient(t *testing.T, provider ai.Provider, opts ...func(*client.ClientOptions)) *client.Client {
	t.Helper()
	c, err := client.New(ai.Config{Kind: ai.KindGoogle}, append([]func(*client.ClientOptions){client.WithProvider(provider)}, opts...)...)
	require.NoError(t, err)
	return c
}

func sampleSpec() *AppSpec {
	return &AppSpec{
		Name:        "todo-app",
		Description: "A small todo list",
		Pages: []FileSpec{
			{Path: "app/page.tsx", Description: "Home page"},
			{Path: "app/about/page.tsx", Description: "About page"},
		},
		Components: []FileSpec{
			{Path: "components/TodoList.tsx", Description: "The list"},
		},
		ThemeColor: DefaultThemeColor,
	}
}
