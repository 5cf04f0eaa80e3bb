package builtin

import (
	"context"
	"os"

	"github.com/relaycortex/agentcore/pkg/chain"
	"github.com/relaycortex/agentcore/pkg/tool"
)

// WriteTool writes content to a file on the local filesystem, creating it
// if necessary.
type WriteTool struct {
	TimeoutMS int
}

func (t *WriteTool) Definition() tool.Definition {
	timeout := t.TimeoutMS
	if timeout == 0 {
		timeout = 10_000
	}
	return tool.Definition{
		Name:        "write",
		Type:        chain.ToolFileSystem,
		Description: "Write content to a file at the given path, overwriting it.",
		Parameters: []tool.Parameter{
			{Name: "file_path", Type: tool.ParamString, Required: true, Description: "Absolute path to write."},
			{Name: "content", Type: tool.ParamString, Required: true, Description: "Content to write."},
		},
		Visibility:  tool.VisibilityDefault{Level: chain.VisibilitySummary},
		TimeoutMS:   timeout,
		RetryConfig: tool.RetryConfig{MaxRetries: 1, BackoffMS: 100, BackoffMultiplier: 2},
	}
}

func (t *WriteTool) ValidateArguments(args map[string]any) error {
	return tool.ValidateArguments(t.Definition(), args)
}

func (t *WriteTool) Execute(ctx context.Context, _ tool.CallContext, args map[string]any) (tool.Result, error) {
	path, _ := args["file_path"].(string)
	content, _ := args["content"].(string)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return tool.Result{}, tool.NewExecutionError("IOError", err.Error())
	}
	return tool.Result{Success: true, Result: map[string]any{"bytes_written": len(content)}}, nil
}
