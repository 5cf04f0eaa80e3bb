package react

import (
	"context"
	"fmt"
	"strings"

	"github.com/relaycortex/agentcore/pkg/agenterr"
	"github.com/relaycortex/agentcore/pkg/reasoning"
)

// SupportingFile is one entry in a skill's progressive-disclosure file
// index (spec §4.5 ContextLoader): a reference the prompt builder lists
// so the model can pull it in on demand via the read tool, rather than
// paying for its content on every turn.
type SupportingFile struct {
	Name        string
	Description string
}

// SkillPrompt is the narrow view of an activated skill the driver needs
// to build a system prompt, declared here so this package does not import
// pkg/skill. *skill.Context has the same Name, Description, Body and
// AllowedTool methods, but its SupportingFiles returns
// []skill.FileReference, so it does not satisfy SkillPrompt as is.
type SkillPrompt interface {
	Name() string
	Description() string
	Body() string
	SupportingFiles() []SupportingFile
	AllowedTool(name string) bool // true if unrestricted or explicitly allowed
}

// Disposition is the terminal outcome of one Run.
type Disposition string

const (
	DispositionSuccess       Disposition = "success"
	DispositionInputRequired Disposition = "input_required"
	DispositionFailed        Disposition = "failed"
)

// Result is what Run returns once the loop reaches a terminal state.
type Result struct {
	Disposition           Disposition
	FinalAnswer           string
	ClarificationQuestion string
	Iterations            int
	Err                   error
}

const defaultMaxIterations = 15

// Driver runs the bounded ReAct loop over a reasoning engine (spec §4.3):
// build prompt, call the model, parse its response, dispatch to a
// terminal disposition or execute the requested tool and continue.
type Driver struct {
	Engine        *reasoning.Engine
	MaxIterations int // 0 means defaultMaxIterations
}

// New builds a Driver with the given iteration cap (0 uses the default
// of 15).
func New(engine *reasoning.Engine, maxIterations int) *Driver {
	return &Driver{Engine: engine, MaxIterations: maxIterations}
}

// Run drives the loop for one user message against an (optionally nil)
// active skill, returning once a terminal disposition is reached or the
// iteration cap is exhausted.
func (d *Driver) Run(ctx context.Context, skill SkillPrompt, userMessage string) (Result, error) {
	max := d.MaxIterations
	if max <= 0 {
		max = defaultMaxIterations
	}

	var transcript strings.Builder
	transcript.WriteString(userMessage)

	for iteration := 1; iteration <= max; iteration++ {
		systemPrompt := d.buildSystemPrompt(skill, iteration, max)

		outcome, err := d.Engine.CallLLM(ctx, reasoning.LLMArgs{
			System: systemPrompt,
			Prompt: transcript.String(),
		})
		if err != nil {
			return Result{Disposition: DispositionFailed, Iterations: iteration, Err: err}, err
		}

		raw, _ := outcome.Value.(string)
		parsed := Parse(raw)

		if parsed.Thought != nil {
			if _, err := d.Engine.AddThinking(*parsed.Thought, nil); err != nil {
				return Result{Disposition: DispositionFailed, Iterations: iteration, Err: err}, err
			}
		}

		switch {
		case parsed.IsFinal:
			answer := ""
			if parsed.FinalAnswer != nil {
				answer = *parsed.FinalAnswer
			}
			return Result{Disposition: DispositionSuccess, FinalAnswer: answer, Iterations: iteration}, nil

		case parsed.IsClarification:
			question := ""
			if parsed.ClarificationQuestion != nil {
				question = *parsed.ClarificationQuestion
			}
			return Result{Disposition: DispositionInputRequired, ClarificationQuestion: question, Iterations: iteration}, nil

		case parsed.Action != nil:
			observation := d.executeAction(ctx, *parsed.Action, parsed.ActionInput)
			fmt.Fprintf(&transcript, "\n\nAction: %s\nObservation: %s", *parsed.Action, observation)

		default:
			// Malformed or action-less turn: spec §4.3 step 3 still counts
			// this iteration and continues rather than aborting the loop.
			fmt.Fprintf(&transcript, "\n\n(no action taken this turn; respond with an action, a final answer, or a clarification question)")
		}
	}

	err := agenterr.IterationLimitExceeded(max)
	return Result{Disposition: DispositionFailed, Iterations: max, Err: err}, err
}

func (d *Driver) executeAction(ctx context.Context, toolName string, args map[string]any) string {
	outcome, err := d.Engine.CallTool(ctx, toolName, args, nil)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	if !outcome.Success {
		return fmt.Sprintf("error: %s", outcome.Error)
	}
	return fmt.Sprintf("%v", outcome.Value)
}

func (d *Driver) buildSystemPrompt(skill SkillPrompt, iteration, max int) string {
	var b strings.Builder

	if skill != nil {
		fmt.Fprintf(&b, "# %s\n\n%s\n\n%s\n\n", skill.Name(), skill.Description(), skill.Body())
	}

	b.WriteString("## Available tools\n\n")
	for _, def := range d.Engine.GetAvailableTools(toolFilterOf(skill)) {
		fmt.Fprintf(&b, "- %s: %s\n", def.Name, def.Description)
	}

	if skill != nil {
		if files := skill.SupportingFiles(); len(files) > 0 {
			b.WriteString("\n## Available supporting files\n\n")
			b.WriteString("Use the read tool to open any of these on demand:\n\n")
			for _, f := range files {
				fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Description)
			}
		}
	}

	fmt.Fprintf(&b, "\n## Iteration %d of %d\n\n", iteration, max)
	b.WriteString("Respond with a single JSON object with fields: thought, action, action_input, " +
		"is_final, final_answer, clarification_question.")

	return b.String()
}

func toolFilterOf(skill SkillPrompt) func(name string) bool {
	if skill == nil {
		return nil
	}
	return skill.AllowedTool
}
