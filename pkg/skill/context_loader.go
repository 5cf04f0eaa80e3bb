package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var allowedReferenceExt = map[string]bool{
	".md": true, ".txt": true, ".json": true, ".yaml": true, ".yml": true,
}

// bulletRefPattern matches "- file.md: description (N lines)".
var bulletRefPattern = regexp.MustCompile(`(?m)^\s*-\s+([\w.\-/]+\.\w+)\s*:\s*([^(\n]*?)\s*(?:\((\d+)\s*lines?\))?\s*$`)

// boldRefPattern matches "**file.md**: description".
var boldRefPattern = regexp.MustCompile(`\*\*([\w.\-/]+\.\w+)\*\*\s*:\s*([^\n]+)`)

// inlineRefPattern matches "See foo.md for ...".
var inlineRefPattern = regexp.MustCompile(`(?i)\bsee\s+([\w.\-/]+\.\w+)\s+for\s+([^.\n]+)`)

// LoadReferences parses a skill body for the three progressive-disclosure
// reference patterns spec §4.5's ContextLoader recognizes, returning a
// de-duplicated index of files that exist under baseDir with an allowed
// extension.
func LoadReferences(body, baseDir string) []FileReference {
	seen := map[string]bool{}
	var out []FileReference

	add := func(name, description string, lineCount int) {
		ext := strings.ToLower(filepath.Ext(name))
		if !allowedReferenceExt[ext] {
			return
		}
		if seen[name] {
			return
		}
		if baseDir != "" {
			if _, err := os.Stat(filepath.Join(baseDir, name)); err != nil {
				return
			}
		}
		seen[name] = true
		out = append(out, FileReference{Name: name, Description: strings.TrimSpace(description), LineCount: lineCount})
	}

	for _, m := range bulletRefPattern.FindAllStringSubmatch(body, -1) {
		lines, _ := strconv.Atoi(m[3])
		add(m[1], m[2], lines)
	}
	for _, m := range boldRefPattern.FindAllStringSubmatch(body, -1) {
		add(m[1], m[2], 0)
	}
	for _, m := range inlineRefPattern.FindAllStringSubmatch(body, -1) {
		add(m[1], m[2], 0)
	}

	return out
}

// PromptSection renders the "available supporting files" section the
// ReAct prompt builder includes, instructing the model to use the read
// tool to open any one on demand.
func PromptSection(files []FileReference) string {
	if len(files) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Available supporting files (use the read tool to open on demand):\n")
	for _, f := range files {
		if f.LineCount > 0 {
			fmt.Fprintf(&b, "- %s: %s (%d lines)\n", f.Name, f.Description, f.LineCount)
		} else {
			fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Description)
		}
	}
	return b.String()
}
