package appfactory

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEngineer_Build_Sequential(t *testing.T) {
	provider := &scriptedProvider{reply: func(prompt string) (string, error) {
		return codeReply("// " + targetFile(prompt)), nil
	}}
	engineer, err := NewEngineer(newBaseClient(t, provider))
	require.NoError(t, err)

	spec := sampleSpec()
	built, err := engineer.Build(context.Background(), spec)
	require.NoError(t, err)
	assert.Same(t, spec, built)

	for _, f := range spec.Files() {
		assert.Equal(t, "// "+f.Path, f.Code)
	}

	var order []string
	for _, p := range provider.recorded() {
		order = append(order, targetFile(p))
	}
	assert.Equal(t, []string{"app/page.tsx", "app/about/page.tsx", "components/TodoList.tsx"}, order)
}

func TestEngineer_PromptListsContext(t *testing.T) {
	spec := sampleSpec()
	prompt := engineerRequest(spec, &spec.Components[0])

	assert.Contains(t, prompt, "App Name: todo-app")
	assert.Contains(t, prompt, "App Description: A small todo list")
	assert.Contains(t, prompt, "File to generate: components/TodoList.tsx")
	assert.Contains(t, prompt, "File Description: The list")
	assert.Contains(t, prompt, "Pages: app/page.tsx, app/about/page.tsx")
	assert.Contains(t, prompt, "Components: components/TodoList.tsx")
}

func TestEngineer_Build_Concurrent(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	provider := &scriptedProvider{reply: func(prompt string) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return codeReply(targetFile(prompt)), nil
	}}
	engineer, err := NewEngineer(newBaseClient(t, provider), WithConcurrency(3))
	require.NoError(t, err)

	spec := &AppSpec{Name: "many"}
	for _, p := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		spec.Components = append(spec.Components, FileSpec{Path: "components/" + p + ".tsx"})
	}

	_, err = engineer.Build(context.Background(), spec)
	require.NoError(t, err)
	for _, f := range spec.Files() {
		assert.Equal(t, f.Path, f.Code)
	}
	assert.LessOrEqual(t, maxInFlight.Load(), int32(3))
	assert.Greater(t, maxInFlight.Load(), int32(1))
}

func TestEngineer_Build_Failure(t *testing.T) {
	failing := func(prompt string) (string, error) {
		if targetFile(prompt) == "app/about/page.tsx" {
			return "I'd rather not.", nil
		}
		return codeReply("ok"), nil
	}

	t.Run("fails fast", func(t *testing.T) {
		engineer, err := NewEngineer(newBaseClient(t, &scriptedProvider{reply: failing}))
		require.NoError(t, err)

		_, err = engineer.Build(context.Background(), sampleSpec())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "app/about/page.tsx")
	})

	t.Run("skips failed", func(t *testing.T) {
		engineer, err := NewEngineer(newBaseClient(t, &scriptedProvider{reply: failing}), WithSkipFailed())
		require.NoError(t, err)

		spec := sampleSpec()
		_, err = engineer.Build(context.Background(), spec)
		require.NoError(t, err)
		assert.Equal(t, "ok", spec.Pages[0].Code)
		assert.Empty(t, spec.Pages[1].Code)
		assert.Equal(t, "ok", spec.Components[0].Code)
	})
}

func TestEngineer_Build_Canceled(t *testing.T) {
	provider := &scriptedProvider{reply: func(string) (string, error) {
		return codeReply("x"), nil
	}}
	engineer, err := NewEngineer(newBaseClient(t, provider), WithRateLimit(0.001))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// The first token is available immediately, the second never within the deadline.
	_, err = engineer.Build(ctx, sampleSpec())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "rate: Wait"), err.Error())
}

func TestEngineer_RateLimit(t *testing.T) {
	provider := &scriptedProvider{reply: func(string) (string, error) {
		return codeReply("x"), nil
	}}
	engineer, err := NewEngineer(newBaseClient(t, provider), WithConcurrency(3), WithRateLimit(20))
	require.NoError(t, err)

	start := time.Now()
	_, err = engineer.Build(context.Background(), sampleSpec())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
