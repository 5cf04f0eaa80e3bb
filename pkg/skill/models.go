// Package skill implements the skill subsystem: loading/validating
// SKILL.md files from layered storage roots, the scoped activation
// context the tool executor enforces restrictions through, progressive
// disclosure of supporting files, $VAR string substitution, and the
// sandboxed command-injection preprocessor (spec §4.5).
package skill

// Metadata is a SKILL.md file's parsed YAML frontmatter.
type Metadata struct {
	Name        string
	Description string
	AllowedTools string // raw comma-separated frontmatter value
	Hooks       string
	License     string
	Version     string
	Model       string
	Mode        string
}

// Skill is one loaded, validated skill: its metadata, body, and the
// directory it was loaded from (used to resolve {baseDir} references and
// progressive-disclosure file lookups).
type Skill struct {
	Metadata  Metadata
	Body      string
	BaseDir   string
	SourceTier string // "project", "personal", or "enterprise"
}

// ValidationResult accumulates validator errors/warnings the way
// SkillValidator.validate does: a skill can be invalid (errors present)
// while still returning any warnings collected along the way.
type ValidationResult struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

func (r *ValidationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// NewValidationResult starts a result in the valid state; AddError flips
// it.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

// FileReference is one entry in a skill's progressive-disclosure index
// (spec §4.5 ContextLoader).
type FileReference struct {
	Name        string
	Description string
	LineCount   int // 0 when not parsed from the reference text
}
