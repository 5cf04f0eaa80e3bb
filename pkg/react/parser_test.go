package react

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_StandardFormat(t *testing.T) {
	resp := `
{
  "thought": "I need to search for information about Python",
  "action": "search",
  "action_input": {"query": "Python programming"},
  "is_final": false
}
`
	p := Parse(resp)
	require.NotNil(t, p.Thought)
	assert.Equal(t, "I need to search for information about Python", *p.Thought)
	require.NotNil(t, p.Action)
	assert.Equal(t, "search", *p.Action)
	assert.Equal(t, map[string]any{"query": "Python programming"}, p.ActionInput)
	assert.False(t, p.IsFinal)
	assert.Nil(t, p.FinalAnswer)
}

func TestParse_FinalAnswer(t *testing.T) {
	resp := `
{
  "thought": "I have all the information needed",
  "final_answer": "Python is a high-level programming language",
  "is_final": true
}
`
	p := Parse(resp)
	assert.True(t, p.IsFinal)
	require.NotNil(t, p.FinalAnswer)
	assert.Equal(t, "Python is a high-level programming language", *p.FinalAnswer)
	assert.Nil(t, p.Action)
	assert.Nil(t, p.ActionInput)
}

func TestParse_JSONArrayActionInput(t *testing.T) {
	resp := `{"thought":"t","action":"batch","action_input":["item1","item2","item3"],"is_final":false}`
	p := Parse(resp)
	assert.Equal(t, map[string]any{"items": []any{"item1", "item2", "item3"}}, p.ActionInput)
}

func TestParse_MalformedJSON(t *testing.T) {
	p := Parse("{invalid json here}")
	require.NotNil(t, p.Thought)
	assert.Contains(t, *p.Thought, "Parse error")
	assert.Nil(t, p.Action)
	assert.Nil(t, p.ActionInput)
	assert.False(t, p.IsFinal)
}

func TestParse_EmptyActionInputObject(t *testing.T) {
	resp := `{"thought":"t","action":"no_args","action_input":{},"is_final":false}`
	p := Parse(resp)
	assert.Equal(t, map[string]any{}, p.ActionInput)
}

func TestParse_NoAction(t *testing.T) {
	resp := `{"thought":"Just thinking, no action yet","is_final":false}`
	p := Parse(resp)
	require.NotNil(t, p.Thought)
	assert.Equal(t, "Just thinking, no action yet", *p.Thought)
	assert.Nil(t, p.Action)
	assert.Nil(t, p.ActionInput)
}

func TestParse_ExtraWhitespaceTrimmed(t *testing.T) {
	resp := `
{
  "thought": "     Lots of spaces here     ",
  "action": "   search   ",
  "action_input": {"query": "test"},
  "is_final": false
}
`
	p := Parse(resp)
	assert.Equal(t, "Lots of spaces here", *p.Thought)
	assert.Equal(t, "search", *p.Action)
}

func TestParse_EmptyString(t *testing.T) {
	p := Parse("")
	assert.Nil(t, p.Thought)
	assert.Nil(t, p.Action)
	assert.Nil(t, p.ActionInput)
	assert.False(t, p.IsFinal)
}

func TestParse_WhitespaceOnly(t *testing.T) {
	p := Parse("   \n\n  \t  ")
	assert.Nil(t, p.Thought)
	assert.Nil(t, p.Action)
	assert.Nil(t, p.ActionInput)
}

func TestParse_FinalAnswerTakesPrecedence(t *testing.T) {
	resp := `
{
  "thought": "This is the final step",
  "action": "search",
  "action_input": {"query": "ignored"},
  "final_answer": "The actual answer",
  "is_final": true
}
`
	p := Parse(resp)
	assert.True(t, p.IsFinal)
	assert.Equal(t, "The actual answer", *p.FinalAnswer)
	assert.Nil(t, p.Action)
	assert.Nil(t, p.ActionInput)
}

func TestParse_MarkdownCodeBlock(t *testing.T) {
	resp := "```json\n{\n  \"thought\": \"Testing markdown format\",\n  \"action\": \"search\",\n  \"action_input\": {\"query\": \"test\"},\n  \"is_final\": false\n}\n```"
	p := Parse(resp)
	assert.Equal(t, "Testing markdown format", *p.Thought)
	assert.Equal(t, "search", *p.Action)
	assert.Equal(t, map[string]any{"query": "test"}, p.ActionInput)
}

func TestParse_RealisticComplexExample(t *testing.T) {
	resp := `
{
  "thought": "Based on the user's question, I need to search. The search should cover:\n- Framework features",
  "action": "web_search",
  "action_input": {
    "query": "popular Python web frameworks comparison",
    "filters": {
      "recency": "last_year",
      "domains": ["python.org", "realpython.com"]
    },
    "max_results": 5
  },
  "is_final": false
}
`
	p := Parse(resp)
	assert.Contains(t, *p.Thought, "- Framework features")
	assert.Equal(t, "web_search", *p.Action)
	assert.Equal(t, "popular Python web frameworks comparison", p.ActionInput["query"])
	filters := p.ActionInput["filters"].(map[string]any)
	assert.Equal(t, "last_year", filters["recency"])
	assert.Equal(t, float64(5), p.ActionInput["max_results"])
}

func TestParse_PrimitiveActionInput(t *testing.T) {
	stringResp := `{"thought":"t","action":"a","action_input":"just a string","is_final":false}`
	p := Parse(stringResp)
	assert.Equal(t, map[string]any{"value": "just a string"}, p.ActionInput)

	numberResp := `{"thought":"t","action":"a","action_input":42,"is_final":false}`
	p = Parse(numberResp)
	assert.Equal(t, map[string]any{"value": float64(42)}, p.ActionInput)
}

func TestParse_IsFinalDefaultsToFalse(t *testing.T) {
	resp := `{"thought":"t","action":"search","action_input":{"query":"test"}}`
	p := Parse(resp)
	assert.False(t, p.IsFinal)
}

func TestParse_NullActionInput(t *testing.T) {
	resp := `{"thought":"t","action":"simple_tool","action_input":null,"is_final":false}`
	p := Parse(resp)
	assert.Equal(t, "simple_tool", *p.Action)
	assert.Nil(t, p.ActionInput)
}

func TestParse_EmptyStringsTreatedAsAbsent(t *testing.T) {
	resp := `{"thought":"","action":"search","action_input":{"query":"test"},"is_final":false}`
	p := Parse(resp)
	assert.Nil(t, p.Thought)
	assert.Equal(t, "search", *p.Action)
}

func TestParse_TextBeforeJSON(t *testing.T) {
	resp := `Let me call the calculator tool to solve this problem.

{
  "thought": "I need to calculate 5 + 3",
  "action": "calculator",
  "action_input": {"expression": "5 + 3"},
  "is_final": false
}`
	p := Parse(resp)
	assert.Equal(t, "I need to calculate 5 + 3", *p.Thought)
	assert.Equal(t, "calculator", *p.Action)
	assert.Equal(t, map[string]any{"expression": "5 + 3"}, p.ActionInput)
}

func TestParse_IsFinalWithoutFinalAnswer(t *testing.T) {
	resp := `{"thought":"I have completed the task","is_final":true}`
	p := Parse(resp)
	assert.True(t, p.IsFinal)
	assert.Nil(t, p.FinalAnswer)
	assert.Nil(t, p.Action)
	assert.Nil(t, p.ActionInput)
}

func TestParse_IsFinalWithEmptyFinalAnswer(t *testing.T) {
	resp := `{"thought":"Task done","final_answer":"","is_final":true}`
	p := Parse(resp)
	assert.True(t, p.IsFinal)
	assert.Nil(t, p.FinalAnswer)
}

func TestParse_ClarificationFormat(t *testing.T) {
	resp := `{"thought":"I need to know the target directory","clarification_question":"Which directory should I search in?","is_final":false}`
	p := Parse(resp)
	assert.True(t, p.IsClarification)
	assert.Equal(t, "Which directory should I search in?", *p.ClarificationQuestion)
	assert.False(t, p.IsFinal)
	assert.Nil(t, p.Action)
	assert.Nil(t, p.FinalAnswer)
}

func TestParse_ClarificationNotSetForAction(t *testing.T) {
	resp := `{"thought":"I'll use bash","action":"bash","action_input":{"command":"ls"},"is_final":false}`
	p := Parse(resp)
	assert.False(t, p.IsClarification)
	assert.Nil(t, p.ClarificationQuestion)
	assert.Equal(t, "bash", *p.Action)
}

func TestParse_ClarificationEmptyQuestionIgnored(t *testing.T) {
	resp := `{"thought":"hm","clarification_question":"","is_final":false}`
	p := Parse(resp)
	assert.False(t, p.IsClarification)
	assert.Nil(t, p.ClarificationQuestion)
}
