// Package agentconfig resolves the environment-driven configuration named
// in spec §6: tenancy defaults, the (core-external) intent classifier
// settings callers may wire downstream, and the three layered skill
// storage roots.
package agentconfig

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Env variable names honoured by the core (spec §6).
const (
	EnvTenantID          = "OMNIFORGE_TENANT_ID"
	EnvIntentModel       = "OMNIFORGE_INTENT_MODEL"
	EnvIntentTimeoutSec  = "OMNIFORGE_INTENT_TIMEOUT_SEC"
	EnvLLMDefaultModel   = "OMNIFORGE_LLM_DEFAULT_MODEL"
	EnvSkillRootProject  = "OMNIFORGE_SKILLS_PROJECT"
	EnvSkillRootPersonal = "OMNIFORGE_SKILLS_PERSONAL"
	EnvSkillRootEnterp   = "OMNIFORGE_SKILLS_ENTERPRISE"

	defaultTenantID = "default"
)

// LoadDotEnv loads a .env file into the process environment if present,
// silently doing nothing when the file is absent (mirrors the teacher's
// optional godotenv.Load in cmd/hector).
func LoadDotEnv(path string) {
	_ = godotenv.Load(path)
}

// Config is the resolved set of environment-driven settings.
type Config struct {
	TenantID          string
	IntentModel       string
	IntentTimeoutSec  int
	LLMDefaultModel   string
	SkillRootProject  string
	SkillRootPersonal string
	SkillRootEnterp   string
}

// FromEnvironment resolves Config from process environment variables,
// applying the documented defaults.
func FromEnvironment() Config {
	timeout, err := strconv.Atoi(strings.TrimSpace(os.Getenv(EnvIntentTimeoutSec)))
	if err != nil {
		timeout = 0
	}
	return Config{
		TenantID:          orDefault(os.Getenv(EnvTenantID), defaultTenantID),
		IntentModel:       os.Getenv(EnvIntentModel),
		IntentTimeoutSec:  timeout,
		LLMDefaultModel:   os.Getenv(EnvLLMDefaultModel),
		SkillRootProject:  os.Getenv(EnvSkillRootProject),
		SkillRootPersonal: os.Getenv(EnvSkillRootPersonal),
		SkillRootEnterp:   os.Getenv(EnvSkillRootEnterp),
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Variable expansion patterns: a "${VAR:-default}" form, a braced "${VAR}"
// form, and a bare "$VAR" form, applied in that precedence order. pkg/skill's
// Substitutor has its own braced and bare patterns and no default form.
var (
	withDefaultPattern = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*):-(.*?)\}`)
	bracedPattern      = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	simplePattern      = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
)

// ExpandEnv replaces $VAR / ${VAR} / ${VAR:-default} references in s using
// the process environment. Undefined variables without a default are left
// untouched rather than replaced with an empty string, so misconfiguration
// is visible instead of silently erased.
func ExpandEnv(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	s = withDefaultPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := withDefaultPattern.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(parts[1]); ok && val != "" {
			return val
		}
		return parts[2]
	})

	s = bracedPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := bracedPattern.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(parts[1]); ok {
			return val
		}
		return match
	})

	s = simplePattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := simplePattern.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(parts[1]); ok {
			return val
		}
		return match
	})

	return s
}
