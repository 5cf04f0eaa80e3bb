// Package react drives the bounded ReAct loop: build a system prompt,
// ask the model for the next move, parse its JSON response, and dispatch
// to one of three terminal dispositions or continue iterating (spec
// §4.3). The parser tolerates the messy shapes real models actually
// produce — code fences, leading prose, primitive/array/null
// action_input — rather than demanding a clean JSON-only reply.
package react

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParsedResponse is the decoded shape of one model turn. Exactly the
// fields relevant to the chosen disposition are populated; callers should
// check IsFinal, then IsClarification, before falling back to Action.
type ParsedResponse struct {
	Thought               *string
	IsFinal               bool
	FinalAnswer           *string
	Action                *string
	ActionInput           map[string]any
	IsClarification       bool
	ClarificationQuestion *string
}

// Parse extracts and decodes the model's JSON response. A response with
// no JSON object at all but non-blank text records a diagnostic in
// Thought ("Parse error: ..."); a blank or whitespace-only response
// returns a zero ParsedResponse without an error (there is nothing to
// report a parse failure about).
func Parse(raw string) ParsedResponse {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ParsedResponse{}
	}

	jsonText, found := extractJSONObject(trimmed)
	if !found {
		msg := "Parse error: no JSON object found in response"
		return ParsedResponse{Thought: &msg}
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(jsonText), &m); err != nil {
		msg := fmt.Sprintf("Parse error: %v", err)
		return ParsedResponse{Thought: &msg}
	}

	parsed := ParsedResponse{
		Thought:               optString(m["thought"]),
		IsFinal:               optBool(m["is_final"]),
		FinalAnswer:           optString(m["final_answer"]),
		Action:                optString(m["action"]),
		ActionInput:           actionInputOf(m["action_input"]),
		ClarificationQuestion: optString(m["clarification_question"]),
	}

	switch {
	case parsed.IsFinal:
		parsed.Action = nil
		parsed.ActionInput = nil
		parsed.ClarificationQuestion = nil
	case parsed.ClarificationQuestion != nil:
		parsed.IsClarification = true
		parsed.Action = nil
		parsed.ActionInput = nil
	}

	return parsed
}

// optString trims a JSON field's string value and returns nil if the
// field was absent, non-string, or empty after trimming (spec §4.3
// "empty ... treated as absent").
func optString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// actionInputOf normalizes action_input into a map: an object passes
// through (including an empty one), an array is wrapped as {"items":
// [...]}, a primitive is wrapped as {"value": ...}, and a missing or null
// value is treated as absent.
func actionInputOf(v any) map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return t
	case []any:
		return map[string]any{"items": t}
	default:
		return map[string]any{"value": t}
	}
}

// extractJSONObject finds the first balanced {...} span in s, tracking
// quoted strings (with escape handling) so braces inside string values
// don't throw off the depth count. This is what lets the parser recover
// a JSON object from code-fenced or prose-prefixed model output without
// needing separate fence-stripping logic — fence markers contain no
// braces, so they simply fall outside the matched span.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
