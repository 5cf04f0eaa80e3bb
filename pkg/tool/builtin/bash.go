package builtin

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/relaycortex/agentcore/pkg/chain"
	"github.com/relaycortex/agentcore/pkg/tool"
)

// BashTool runs a shell command and returns its combined stdout/stderr.
type BashTool struct {
	TimeoutMS int
	Shell     string // defaults to "/bin/sh"
}

func (t *BashTool) Definition() tool.Definition {
	timeout := t.TimeoutMS
	if timeout == 0 {
		timeout = 30_000
	}
	return tool.Definition{
		Name:        "bash",
		Type:        chain.ToolOther,
		Description: "Run a shell command and return its output.",
		Parameters: []tool.Parameter{
			{Name: "command", Type: tool.ParamString, Required: true, Description: "Shell command to run."},
		},
		Visibility: tool.VisibilityDefault{Level: chain.VisibilitySummary},
		TimeoutMS:  timeout,
		RetryConfig: tool.RetryConfig{
			MaxRetries: 0, // shell commands are not safely idempotent to retry by default
		},
	}
}

func (t *BashTool) ValidateArguments(args map[string]any) error {
	return tool.ValidateArguments(t.Definition(), args)
}

func (t *BashTool) Execute(ctx context.Context, _ tool.CallContext, args map[string]any) (tool.Result, error) {
	command, _ := args["command"].(string)
	if strings.TrimSpace(command) == "" {
		return tool.Result{}, tool.NewExecutionError("ValidationError", "command must not be empty")
	}

	shell := t.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return tool.Result{Success: false, Error: err.Error(), Result: out.String()}, nil
	}
	return tool.Result{Success: true, Result: out.String()}, nil
}
