package skill

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/relaycortex/agentcore/pkg/agenterr"
)

// Loader indexes three layered storage roots (spec §4.5): project beats
// personal beats enterprise for a given skill name.
type Loader struct {
	ProjectDir    string
	PersonalDir   string
	EnterpriseDir string
}

// NewLoader builds a Loader over the three precedence roots. Any root
// may be empty to disable that tier.
func NewLoader(projectDir, personalDir, enterpriseDir string) *Loader {
	return &Loader{ProjectDir: projectDir, PersonalDir: personalDir, EnterpriseDir: enterpriseDir}
}

// tiers returns the roots in precedence order: project, then personal,
// then enterprise.
func (l *Loader) tiers() []struct {
	dir  string
	name string
} {
	return []struct {
		dir  string
		name string
	}{
		{l.ProjectDir, "project"},
		{l.PersonalDir, "personal"},
		{l.EnterpriseDir, "enterprise"},
	}
}

// Load finds and validates the named skill, checking roots in precedence
// order. Returns *agenterr.Error(SkillNotFound) if no root has a
// directory for it.
func (l *Loader) Load(name string) (Skill, *ValidationResult, error) {
	for _, tier := range l.tiers() {
		if tier.dir == "" {
			continue
		}
		skillDir := filepath.Join(tier.dir, name)
		skillFile := filepath.Join(skillDir, "SKILL.md")
		data, err := os.ReadFile(skillFile)
		if err != nil {
			continue
		}

		content := string(data)
		result := Validate(content, name)

		meta, body := splitForLoad(content)
		meta.Name = name
		s := Skill{Metadata: meta, Body: body, BaseDir: skillDir, SourceTier: tier.name}
		return s, result, nil
	}
	return Skill{}, nil, agenterr.SkillNotFound(name)
}

// ListNames enumerates skill names visible across all configured roots,
// de-duplicated in precedence order (a name present in more than one
// tier is listed once, resolving to the highest-precedence tier).
func (l *Loader) ListNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, tier := range l.tiers() {
		if tier.dir == "" {
			continue
		}
		entries, err := os.ReadDir(tier.dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || seen[e.Name()] {
				continue
			}
			if _, err := os.Stat(filepath.Join(tier.dir, e.Name(), "SKILL.md")); err != nil {
				continue
			}
			seen[e.Name()] = true
			names = append(names, e.Name())
		}
	}
	return names
}

// splitForLoad re-parses just enough of the frontmatter to populate
// Metadata for a successfully-loaded skill (validation already ran
// Validate above; this is a lighter, error-tolerant second pass since a
// skill that failed validation can still be loaded for inspection).
func splitForLoad(content string) (Metadata, string) {
	loc := frontmatterDelim.FindStringSubmatchIndex(content)
	if loc == nil {
		return Metadata{}, content
	}
	yamlText := content[loc[2]:loc[3]]
	body := content[loc[1]:]

	var raw map[string]any
	_ = yaml.Unmarshal([]byte(yamlText), &raw)

	get := func(k string) string {
		s, _ := raw[k].(string)
		return s
	}
	version := ""
	if v, ok := raw["version"]; ok {
		version = fmt.Sprint(v)
	}
	return Metadata{
		Description:  get("description"),
		AllowedTools: get("allowed-tools"),
		Hooks:        get("hooks"),
		License:      get("license"),
		Version:      version,
		Model:        get("model"),
		Mode:         get("mode"),
	}, body
}
