package notifier

import (
	"fmt"
	"strings"
	"sync"
)

// Variables maps placeholder names to values supplied by the caller.
// Non-string values are coerced to their display string at render time.
type Variables map[string]interface{}

// segment is one piece of a tokenized template: either literal text or a
// placeholder name to substitute.
type segment struct {
	text        string
	placeholder bool
}

// segmentCache memoizes tokenization per template text. Stored overrides
// change rarely relative to how often they render, and identical text always
// tokenizes identically. Purged on Refresh so edited override texts do not
// accrete entries for the process lifetime.
var segmentCache sync.Map // string -> []segment

// resetSegmentCache drops every memoized tokenization. Concurrent renders
// simply re-tokenize on their next cache miss.
func resetSegmentCache() {
	segmentCache.Range(func(key, _ interface{}) bool {
		segmentCache.Delete(key)
		return true
	})
}

// tokenize splits a template into literal and placeholder segments in a
// single scan. Placeholders are {{name}}; an unterminated "{{" is kept as
// literal text.
func tokenize(tmpl string) []segment {
	if cached, ok := segmentCache.Load(tmpl); ok {
		return cached.([]segment)
	}

	var segs []segment
	rest := tmpl
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(rest[start+2:], "}}")
		if end == -1 {
			break
		}
		if start > 0 {
			segs = append(segs, segment{text: rest[:start]})
		}
		name := strings.TrimSpace(rest[start+2 : start+2+end])
		segs = append(segs, segment{text: name, placeholder: true})
		rest = rest[start+2+end+2:]
	}
	if rest != "" {
		segs = append(segs, segment{text: rest})
	}

	segmentCache.Store(tmpl, segs)
	return segs
}

// substitute renders one tokenized template against the merged variable set.
// Unknown placeholders become the empty string. Substituted values are never
// re-scanned, so administrator-controlled content cannot expand recursively.
func substitute(tmpl string, vars Variables) string {
	var b strings.Builder
	for _, seg := range tokenize(tmpl) {
		if !seg.placeholder {
			b.WriteString(seg.text)
			continue
		}
		if v, ok := vars[seg.text]; ok {
			b.WriteString(coerce(v))
		}
	}
	return b.String()
}

// coerce converts a variable value to its display string.
func coerce(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Render substitutes variables into a resolved template. Identity defaults
// (company name, support email, login URL) are injected for placeholders the
// caller did not supply; caller values always win on conflict.
func Render(tmpl Template, vars Variables, identity OrganizationIdentity) Template {
	merged := make(Variables, len(vars)+3)
	merged["companyName"] = identity.CompanyName
	merged["supportEmail"] = identity.SupportEmail
	merged["loginUrl"] = identity.LoginURL
	for k, v := range vars {
		merged[k] = v
	}

	return Template{
		Subject: substitute(tmpl.Subject, merged),
		Body:    substitute(tmpl.Body, merged),
	}
}
