package skill

import (
	"strings"

	"github.com/relaycortex/agentcore/pkg/agenterr"
)

// Context is the scoped-acquisition object created from a Skill at
// activation time (spec §4.5 SkillContext). It implements the narrow
// SkillRestriction interface pkg/tool's Executor enforces against. It does
// not satisfy pkg/react's SkillPrompt: its SupportingFiles returns
// []FileReference rather than []react.SupportingFile.
type Context struct {
	skill          Skill
	allowed        []string // lowercased allowed-tools entries, or empty for "no restriction"
	hookScriptPaths []string
	files          []FileReference
}

// NewContext builds a Context for an activated skill. hookScriptPaths
// are absolute paths the skill's own hook scripts live at; a Read-class
// tool call targeting one of them is blocked (skills may not read their
// own scripts, spec §4.4 step 3).
func NewContext(s Skill, hookScriptPaths []string, files []FileReference) *Context {
	var allowed []string
	if s.Metadata.AllowedTools != "" {
		for _, t := range strings.Split(s.Metadata.AllowedTools, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				allowed = append(allowed, strings.ToLower(t))
			}
		}
	}
	return &Context{skill: s, allowed: allowed, hookScriptPaths: hookScriptPaths, files: files}
}

// Name is the activated skill's name, used as the activation stack key.
func (c *Context) Name() string { return c.skill.Metadata.Name }

// Description is the skill's frontmatter description.
func (c *Context) Description() string { return c.skill.Metadata.Description }

// Body is the (already substituted) skill body.
func (c *Context) Body() string { return c.skill.Body }

// SupportingFiles is the progressive-disclosure file index.
func (c *Context) SupportingFiles() []FileReference { return c.files }

// AllowedTool reports whether the given tool name passes this skill's
// allow-list. An empty allow-list means unrestricted.
func (c *Context) AllowedTool(name string) bool {
	if len(c.allowed) == 0 {
		return true
	}
	name = strings.ToLower(name)
	for _, a := range c.allowed {
		if a == name || scopedAllowMatchesTool(a, name) {
			return true
		}
	}
	return false
}

// scopedAllowMatchesTool handles a scoped entry like "bash(git:*)"
// authorizing the bare tool name it scopes ("bash").
func scopedAllowMatchesTool(allowEntry, toolName string) bool {
	idx := strings.IndexByte(allowEntry, '(')
	if idx < 0 {
		return false
	}
	return allowEntry[:idx] == toolName
}

// CheckToolAllowed implements tool.SkillRestriction: case-insensitive
// match against allowed_tools.
func (c *Context) CheckToolAllowed(toolName string) error {
	if !c.AllowedTool(toolName) {
		return agenterr.SkillToolNotAllowed(toolName, c.Name())
	}
	return nil
}

// CheckToolArguments implements tool.SkillRestriction: a Read-class
// tool's file_path must not equal any of the active skill's own hook
// script paths (spec §4.4 step 3 — context-efficiency policy, skills may
// not read their own scripts).
func (c *Context) CheckToolArguments(toolName string, args map[string]any) error {
	if !strings.EqualFold(toolName, "read") {
		return nil
	}
	path, _ := args["file_path"].(string)
	if path == "" {
		return nil
	}
	for _, hookPath := range c.hookScriptPaths {
		if path == hookPath {
			return agenterr.SkillScriptReadAttempt(path)
		}
	}
	return nil
}
