package skill

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubVars carries the values a skill body's $VAR/${VAR} references
// resolve against (spec §4.5 StringSubstitutor). CustomVars overrides
// any standard variable of the same name.
type SubVars struct {
	Arguments      string
	SessionID      string
	ClaudeSessionID string
	SkillDir       string
	Workspace      string
	User           string
	Date           string
	CustomVars     map[string]string
}

// SubstitutedContent is the result of one Substitute call.
type SubstitutedContent struct {
	Content           string
	SubstitutionsMade int
	UndefinedVars     []string
}

// braced matches ${VAR}; simple matches bare $VAR. There is no default form.
// Brace forms are tried first since they're a superset of the plain
// form's character class and must not be double-matched.
var (
	bracedVarPattern = regexp.MustCompile(`\$\{([A-Z][A-Z0-9_]*)\}`)
	simpleVarPattern = regexp.MustCompile(`\$([A-Z][A-Z0-9_]*)\b`)
)

// Substitutor replaces $VAR/${VAR} references in skill content with
// values from a SubVars before the body enters the first prompt.
type Substitutor struct {
	Logger *slog.Logger

	warnedOnce map[string]bool
}

// NewSubstitutor builds a Substitutor; logger defaults to slog.Default.
func NewSubstitutor(logger *slog.Logger) *Substitutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Substitutor{Logger: logger, warnedOnce: map[string]bool{}}
}

// BuildContext assembles a SubVars, generating a session id when none is
// supplied (mirrors StringSubstitutor.build_context). workspace, user and
// date are used exactly as passed; empty values are not filled in from the
// process environment.
func (s *Substitutor) BuildContext(arguments, sessionID, skillDir, workspace, user, date string, customVars map[string]string) SubVars {
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	return SubVars{
		Arguments:  arguments,
		SessionID:  sessionID,
		SkillDir:   skillDir,
		Workspace:  workspace,
		User:       user,
		Date:       date,
		CustomVars: customVars,
	}
}

func generateSessionID() string {
	return fmt.Sprintf("session-%s-%s", time.Now().UTC().Format("20060102"), uuid.New().String()[:8])
}

// Substitute replaces every $VAR/${VAR} occurrence it recognizes,
// logs each unique undefined variable once at WARNING, and optionally
// appends "\n\nARGUMENTS: <value>" when ctx.Arguments is non-empty and
// not already referenced anywhere in content (spec §4.5).
func (s *Substitutor) Substitute(content string, ctx SubVars, autoAppendArguments bool) SubstitutedContent {
	values := standardValues(ctx)
	for k, v := range ctx.CustomVars {
		values[k] = v
	}

	count := 0
	undefinedSeen := map[string]bool{}
	var undefined []string

	resolve := func(name, original string) string {
		if v, ok := values[name]; ok {
			count++
			return v
		}
		if !undefinedSeen[name] {
			undefinedSeen[name] = true
			undefined = append(undefined, name)
			if !s.warnedOnce[name] {
				s.warnedOnce[name] = true
				s.Logger.Warn(fmt.Sprintf("Undefined variable '%s'", name))
			}
		}
		return original
	}

	result := bracedVarPattern.ReplaceAllStringFunc(content, func(m string) string {
		name := bracedVarPattern.FindStringSubmatch(m)[1]
		return resolve(name, m)
	})
	result = simpleVarPattern.ReplaceAllStringFunc(result, func(m string) string {
		name := simpleVarPattern.FindStringSubmatch(m)[1]
		return resolve(name, m)
	})

	if autoAppendArguments && ctx.Arguments != "" {
		if !strings.Contains(content, "$ARGUMENTS") && !strings.Contains(content, "${ARGUMENTS}") {
			result += fmt.Sprintf("\n\nARGUMENTS: %s", ctx.Arguments)
		}
	}

	return SubstitutedContent{Content: result, SubstitutionsMade: count, UndefinedVars: undefined}
}

func standardValues(ctx SubVars) map[string]string {
	return map[string]string{
		"ARGUMENTS":         ctx.Arguments,
		"SESSION_ID":        ctx.SessionID,
		"CLAUDE_SESSION_ID": ctx.ClaudeSessionID,
		"SKILL_DIR":         ctx.SkillDir,
		"WORKSPACE":         ctx.Workspace,
		"USER":              ctx.User,
		"DATE":              ctx.Date,
	}
}
