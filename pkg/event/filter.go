package event

import (
	"regexp"
	"strings"

	"github.com/relaycortex/agentcore/pkg/chain"
)

// Role is a consumer of the event stream. END_USER and DEVELOPER are the
// two roles spec §4.7 names explicitly; AUDITOR and OPERATOR are
// implementation extensions of the same minimum-visibility table.
type Role string

const (
	RoleEndUser  Role = "end_user"
	RoleDeveloper Role = "developer"
	RoleAuditor  Role = "auditor"
	RoleOperator Role = "operator"
)

// minVisibility is the most detailed VisibilityLevel a role may see. HIDDEN
// events are never forwarded to any role entry in this table.
var minVisibility = map[Role]chain.VisibilityLevel{
	RoleEndUser:   chain.VisibilitySummary,
	RoleDeveloper: chain.VisibilityFull,
	RoleAuditor:   chain.VisibilityFull,
	RoleOperator:  chain.VisibilitySummary,
}

// rankOf orders visibility levels from least to most detailed, so a
// role's minimum can be compared against an event's actual level.
var rankOf = map[chain.VisibilityLevel]int{
	chain.VisibilityHidden:  0,
	chain.VisibilitySummary: 1,
	chain.VisibilityFull:    2,
}

// visibleTo reports whether an event at the given level should reach
// role. A role's minVisibility entry is the highest rank it may receive;
// HIDDEN is always excluded regardless of role.
func visibleTo(role Role, level chain.VisibilityLevel) bool {
	if level == chain.VisibilityHidden {
		return false
	}
	min, ok := minVisibility[role]
	if !ok {
		min = chain.VisibilitySummary
	}
	return rankOf[level] <= rankOf[min]
}

// sensitivePattern matches "key=value" and "authorization: value" forms
// the redaction pass rewrites to "...=[REDACTED]" (spec §4.7).
var sensitivePattern = regexp.MustCompile(`(?i)(api_key|password|token|secret)=([^\s,;]+)|(authorization):\s*([^,;\n]+)`)

// Redact rewrites every sensitive-value occurrence in s to "...=[REDACTED]".
func Redact(s string) string {
	return sensitivePattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := sensitivePattern.FindStringSubmatch(m)
		key := sub[1]
		if key == "" {
			key = sub[3]
		}
		return strings.ToLower(key) + "=[REDACTED]"
	})
}

// FilterStream applies the per-role visibility filter and sensitive-value
// redaction to a channel of events, returning a channel the caller
// should range over in place of the original. TaskDoneEvents always pass
// through unmodified, regardless of role (spec §4.7).
func FilterStream(in <-chan Event, role Role) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for ev := range in {
			if ev.Kind == KindDone {
				out <- ev
				continue
			}
			if !visibleTo(role, ev.Visibility()) {
				continue
			}
			out <- redactEvent(ev)
		}
	}()
	return out
}

func redactEvent(ev Event) Event {
	if ev.Kind != KindMessage || len(ev.MessageParts) == 0 {
		return ev
	}
	redacted := make([]MessagePart, len(ev.MessageParts))
	for i, p := range ev.MessageParts {
		redacted[i] = MessagePart{Text: Redact(p.Text)}
	}
	ev.MessageParts = redacted
	return ev
}
