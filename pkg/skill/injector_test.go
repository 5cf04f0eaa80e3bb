package skill

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInjector_ExecutesAllowedCommand(t *testing.T) {
	inj := NewInjector([]string{"bash"}, nil)
	inj.Runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		assert.Equal(t, "echo", name)
		assert.Equal(t, []string{"hi"}, args)
		return []byte("hi\n"), nil
	}
	out := inj.Inject(context.Background(), "Result: !`echo hi`")
	assert.Equal(t, "Result: hi", out)
}

func TestInjector_BlocksForbiddenTokens(t *testing.T) {
	cases := []string{
		"!`ls; rm -rf /`",
		"!`echo a && echo b`",
		"!`echo a | grep a`",
		"!`echo a > out.txt`",
		"!`cat $(whoami)`",
		"!`echo a\nrm -rf /`",
	}
	for _, body := range cases {
		inj := NewInjector([]string{"bash"}, nil)
		inj.Runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			t.Fatalf("runner should not be invoked for blocked command: %s", body)
			return nil, nil
		}
		out := inj.Inject(context.Background(), body)
		assert.Contains(t, out, "blocked by security policy", "case: %s", body)
	}
}

func TestInjector_BlocksPathTraversal(t *testing.T) {
	inj := NewInjector([]string{"bash"}, nil)
	inj.Runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatal("runner should not be invoked")
		return nil, nil
	}
	out := inj.Inject(context.Background(), "!`cat ../../etc/passwd`")
	assert.Contains(t, out, "blocked by security policy")
}

func TestInjector_BlocksAbsolutePathBaseCommand(t *testing.T) {
	inj := NewInjector([]string{"bash"}, nil)
	inj.Runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatal("runner should not be invoked")
		return nil, nil
	}
	out := inj.Inject(context.Background(), "!`/bin/cat secret.txt`")
	assert.Contains(t, out, "blocked by security policy")
}

func TestInjector_BlocksCommandNotInAllowList(t *testing.T) {
	inj := NewInjector([]string{"bash(git:*)"}, nil)
	inj.Runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatal("runner should not be invoked")
		return nil, nil
	}
	out := inj.Inject(context.Background(), "!`curl http://example.com`")
	assert.Contains(t, out, "blocked by security policy")
}

func TestInjector_AllowsScopedPrefixMatch(t *testing.T) {
	inj := NewInjector([]string{"bash(git:*)"}, nil)
	ran := false
	inj.Runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		ran = true
		return []byte("clean\n"), nil
	}
	out := inj.Inject(context.Background(), "!`git status`")
	assert.True(t, ran)
	assert.Equal(t, "clean", out)
}

func TestInjector_PermitsWhenNoAllowListConfigured(t *testing.T) {
	inj := NewInjector(nil, nil)
	ran := false
	inj.Runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		ran = true
		return []byte("ok\n"), nil
	}
	out := inj.Inject(context.Background(), "!`whoami`")
	assert.True(t, ran)
	assert.Equal(t, "ok", out)
}

func TestInjector_RuntimeFailureProducesFailedMarker(t *testing.T) {
	inj := NewInjector([]string{"bash"}, nil)
	inj.Runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}
	out := inj.Inject(context.Background(), "!`false`")
	assert.Contains(t, out, "[Command failed:")
}

func TestInjector_TruncatesOversizedOutput(t *testing.T) {
	inj := NewInjector([]string{"bash"}, nil)
	inj.MaxOutput = 8
	inj.Runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("0123456789abcdef"), nil
	}
	out := inj.Inject(context.Background(), "!`dump`")
	assert.Contains(t, out, "...[truncated]")
}

func TestInjector_RejectsUnclosedQuote(t *testing.T) {
	inj := NewInjector([]string{"bash"}, nil)
	inj.Runner = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatal("runner should not be invoked")
		return nil, nil
	}
	out := inj.Inject(context.Background(), "!`echo \"unterminated`")
	assert.Contains(t, out, "blocked by security policy")
}
