// Package builtin provides a small illustrative set of concrete tools
// (Read, Write, Bash, LLM) exercising the abstract tool.Tool contract.
// Spec §1 treats concrete tool implementations as external collaborators;
// these exist to give the ReAct driver and skill restriction machinery
// something real to drive in tests.
package builtin

import (
	"context"
	"os"

	"github.com/relaycortex/agentcore/pkg/chain"
	"github.com/relaycortex/agentcore/pkg/tool"
)

// ReadTool reads a file from the local filesystem.
type ReadTool struct {
	TimeoutMS int
}

func (t *ReadTool) Definition() tool.Definition {
	timeout := t.TimeoutMS
	if timeout == 0 {
		timeout = 10_000
	}
	return tool.Definition{
		Name:        "read",
		Type:        chain.ToolFileSystem,
		Description: "Read the contents of a file at the given path.",
		Parameters: []tool.Parameter{
			{Name: "file_path", Type: tool.ParamString, Required: true, Description: "Absolute path to read."},
		},
		Visibility:  tool.VisibilityDefault{Level: chain.VisibilityFull},
		TimeoutMS:   timeout,
		RetryConfig: tool.RetryConfig{MaxRetries: 1, BackoffMS: 100, BackoffMultiplier: 2},
	}
}

func (t *ReadTool) ValidateArguments(args map[string]any) error {
	return tool.ValidateArguments(t.Definition(), args)
}

func (t *ReadTool) Execute(ctx context.Context, _ tool.CallContext, args map[string]any) (tool.Result, error) {
	path, _ := args["file_path"].(string)
	data, err := os.ReadFile(path)
	if err != nil {
		return tool.Result{}, tool.NewExecutionError("IOError", err.Error())
	}
	return tool.Result{Success: true, Result: string(data)}, nil
}
