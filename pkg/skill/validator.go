package skill

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// nameFormat matches a kebab-case skill name: lowercase letter start,
// lowercase letters/digits/hyphens only.
var nameFormat = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

var reservedNames = map[string]bool{
	"skill": true, "agent": true, "tool": true, "system": true, "admin": true, "root": true,
}

var imperativeStarts = map[string]bool{
	"format": true, "create": true, "build": true, "process": true, "handle": true,
	"generate": true, "convert": true, "extract": true, "analyze": true, "transform": true,
	"validate": true, "parse": true, "execute": true, "run": true, "compile": true, "deploy": true,
}

var timeSensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b20\d{2}\b`),
	regexp.MustCompile(`(?i)\bcurrently\b`),
	regexp.MustCompile(`(?i)\bas of\b`),
	regexp.MustCompile(`(?i)\btoday\b`),
	regexp.MustCompile(`(?i)\bnow\b`),
	regexp.MustCompile(`(?i)\brecent\b`),
	regexp.MustCompile(`(?i)\blatest\b`),
	regexp.MustCompile(`(?i)\bthis (year|month|week)\b`),
}

var hardcodedPathPatterns = []struct {
	re   *regexp.Regexp
	desc string
}{
	{regexp.MustCompile(`/home/\S+`), "Unix home directory"},
	{regexp.MustCompile(`/Users/\S+`), "Mac home directory"},
	{regexp.MustCompile(`C:\\\S+`), "Windows absolute path"},
	{regexp.MustCompile(`/(?:usr|var|opt|etc)/\S+`), "Unix system path"},
	{regexp.MustCompile(`(?:[^}])/(?:scripts|references|assets)/\S+`), "skill resource path without {baseDir}"},
}

var bashScopePattern = regexp.MustCompile(`^Bash\([^)]+:\*\)$`)

var validToolNames = map[string]bool{
	"Read": true, "Write": true, "Edit": true, "Grep": true, "Glob": true,
	"Bash": true, "Task": true, "WebSearch": true, "WebFetch": true,
}

// contractionPattern flags a single-quoted string containing an
// apostrophe-driven contraction/possessive, which breaks naive
// single-quote parsing (e.g. 'I'd like...').
var contractionPattern = regexp.MustCompile(`'[^']*\b\w+'[tdslmre]\b[^']*'`)

var frontmatterDelim = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---\s*\n`)

const (
	maxNameLen        = 64
	maxDescriptionLen = 1024
	maxBodyLines      = 500
	maxBodyWords      = 5000
	warnBodyWords     = 4500
)

// Validate checks SKILL.md content against the frontmatter/name/
// description/body rules (spec §4.5), mirroring SkillValidator.validate.
func Validate(content, expectedName string) *ValidationResult {
	result := NewValidationResult()

	frontmatter, body, ok := parseFrontmatter(content, result)
	if !ok {
		return result
	}

	for _, err := range validateFrontmatterFields(frontmatter) {
		result.AddError(err)
	}

	name, _ := frontmatter["name"].(string)
	if name == "" {
		result.AddError("Frontmatter missing required field: 'name'")
	} else {
		for _, err := range validateName(name) {
			result.AddError(err)
		}
		if name != expectedName {
			result.AddError(fmt.Sprintf("Frontmatter name %q does not match expected name %q", name, expectedName))
		}
	}

	description, _ := frontmatter["description"].(string)
	if description == "" {
		result.AddError("Frontmatter missing required field: 'description'")
	} else {
		for _, err := range validateDescription(description) {
			result.AddError(err)
		}
	}

	if allowedTools, _ := frontmatter["allowed-tools"].(string); allowedTools != "" {
		for _, err := range validateAllowedTools(allowedTools) {
			result.AddError(err)
		}
	}

	if strings.TrimSpace(body) != "" {
		for _, err := range validateBodyLength(body) {
			result.AddError(err)
		}
		errs, warnings := validateWordCount(body)
		for _, e := range errs {
			result.AddError(e)
		}
		for _, w := range warnings {
			result.AddWarning(w)
		}
		for _, err := range checkHardcodedPaths(content) {
			result.AddError(err)
		}
		for _, w := range checkTimeSensitiveContent(content) {
			result.AddWarning(w)
		}
		for _, err := range checkBrokenSingleQuotes(body) {
			result.AddError(err)
		}
	} else {
		result.AddError("Skill body is empty. Body must contain skill instructions.")
	}

	return result
}

func validateFrontmatterFields(frontmatter map[string]any) []string {
	required := map[string]bool{"name": true, "description": true}
	optional := map[string]bool{
		"allowed-tools": true, "hooks": true, "license": true, "version": true, "model": true,
		"mode": true, "disable-model-invocation": true,
	}

	var unauthorized, missing []string
	actual := map[string]bool{}
	for k := range frontmatter {
		actual[k] = true
	}
	for k := range actual {
		if !required[k] && !optional[k] {
			unauthorized = append(unauthorized, k)
		}
	}
	for k := range required {
		if !actual[k] {
			missing = append(missing, k)
		}
	}
	sort.Strings(unauthorized)
	sort.Strings(missing)

	var errs []string
	if len(unauthorized) > 0 {
		errs = append(errs, fmt.Sprintf("Frontmatter contains unauthorized fields: %v", unauthorized))
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("Frontmatter missing required fields: %v. Both 'name' and 'description' are required.", missing))
	}
	return errs
}

func validateName(name string) []string {
	var errs []string
	if len(name) > maxNameLen {
		errs = append(errs, fmt.Sprintf("Skill name exceeds %d character limit (got %d characters)", maxNameLen, len(name)))
	}
	if !nameFormat.MatchString(name) {
		errs = append(errs, "Skill name must be kebab-case: start with lowercase letter, "+
			"contain only lowercase letters, numbers, and hyphens")
	}
	if reservedNames[strings.ToLower(name)] {
		errs = append(errs, fmt.Sprintf("Skill name %q is reserved", name))
	}
	return errs
}

func validateDescription(description string) []string {
	var errs []string
	if len(description) > maxDescriptionLen {
		errs = append(errs, fmt.Sprintf("Description exceeds %d character limit (got %d characters)", maxDescriptionLen, len(description)))
	}
	fields := strings.Fields(description)
	if len(fields) > 0 {
		firstWord := strings.ToLower(fields[0])
		if imperativeStarts[firstWord] {
			errs = append(errs, fmt.Sprintf(
				"Description appears to be in imperative form (starts with %q). "+
					"Use third person instead (e.g., 'Formats...' -> 'A skill that formats...')", firstWord))
		}
	}
	return errs
}

func validateBodyLength(body string) []string {
	lines := strings.Split(body, "\n")
	if len(lines) > maxBodyLines {
		return []string{fmt.Sprintf("Skill body exceeds %d line limit (got %d lines). "+
			"Consider breaking into multiple skills or condensing content.", maxBodyLines, len(lines))}
	}
	return nil
}

func validateWordCount(body string) (errs, warnings []string) {
	count := len(strings.Fields(body))
	switch {
	case count > maxBodyWords:
		errs = append(errs, fmt.Sprintf("Skill body exceeds %d word limit (got %d words). "+
			"Consider moving detailed content to references/ directory for progressive disclosure.", maxBodyWords, count))
	case count > warnBodyWords:
		warnings = append(warnings, fmt.Sprintf("Skill body approaching %d word limit (currently %d words). "+
			"Consider condensing content or moving details to references/ directory.", maxBodyWords, count))
	}
	return errs, warnings
}

func validateAllowedTools(allowedTools string) []string {
	var errs []string
	for _, t := range strings.Split(allowedTools, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if validToolNames[t] {
			continue
		}
		if bashScopePattern.MatchString(t) {
			if strings.Contains(t, "/") && !strings.Contains(t, "{baseDir}") {
				errs = append(errs, fmt.Sprintf("Scoped tool %q should use {baseDir} placeholder for paths", t))
			}
			continue
		}
		names := make([]string, 0, len(validToolNames))
		for n := range validToolNames {
			names = append(names, n)
		}
		sort.Strings(names)
		errs = append(errs, fmt.Sprintf("Invalid tool specification: %q. Must be a valid tool name (%s) "+
			"or scoped Bash command like 'Bash(git:*)'", t, strings.Join(names, ", ")))
	}
	return errs
}

func checkHardcodedPaths(content string) []string {
	var errs []string
	for _, p := range hardcodedPathPatterns {
		matches := p.re.FindAllString(content, 3)
		if len(matches) > 0 {
			errs = append(errs, fmt.Sprintf("Hardcoded %s detected: %s. "+
				"Use {baseDir} placeholder for portability (e.g., {baseDir}/scripts/file.py)",
				p.desc, strings.Join(matches, ", ")))
		}
	}
	return errs
}

func checkBrokenSingleQuotes(body string) []string {
	var errs []string
	for i, line := range strings.Split(body, "\n") {
		if contractionPattern.MatchString(line) {
			errs = append(errs, fmt.Sprintf("Line %d: single-quoted string contains an apostrophe/contraction "+
				"which breaks string parsing. Use double quotes for strings that contain apostrophes "+
				"(e.g., \"I'd\" instead of 'I\\'d').", i+1))
		}
	}
	return errs
}

func checkTimeSensitiveContent(content string) []string {
	for _, p := range timeSensitivePatterns {
		if p.MatchString(content) {
			return []string{fmt.Sprintf("Content may contain time-sensitive information (pattern: %q). "+
				"Consider using timeless language to avoid outdated content.", p.String())}
		}
	}
	return nil
}

func parseFrontmatter(content string, result *ValidationResult) (map[string]any, string, bool) {
	loc := frontmatterDelim.FindStringSubmatchIndex(content)
	if loc == nil {
		result.AddError("Missing YAML frontmatter. File must start with '---' delimiter and end with '---' delimiter.")
		return nil, "", false
	}

	yamlText := content[loc[2]:loc[3]]
	body := content[loc[1]:]

	var frontmatter map[string]any
	if err := yaml.Unmarshal([]byte(yamlText), &frontmatter); err != nil {
		result.AddError(fmt.Sprintf("Invalid YAML frontmatter: %v", err))
		return nil, "", false
	}
	if frontmatter == nil {
		result.AddError("Frontmatter must be a YAML dictionary")
		return nil, "", false
	}

	return frontmatter, body, true
}
