package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testIdentity() OrganizationIdentity {
	return OrganizationIdentity{
		CompanyName:  "Acme Corp",
		SupportEmail: "help@acme.test",
		LoginURL:     "https://acme.test/login",
	}
}

func TestRenderSubstitutesVariables(t *testing.T) {
	tmpl := Template{
		Subject: "Welcome to {{companyName}}",
		Body:    "<p>Hello {{employeeName}}, sign in at {{loginUrl}}</p>",
	}

	out := Render(tmpl, Variables{"employeeName": "Dana"}, testIdentity())

	assert.Equal(t, "Welcome to Acme Corp", out.Subject)
	assert.Equal(t, "<p>Hello Dana, sign in at https://acme.test/login</p>", out.Body)
}

func TestRenderUnknownPlaceholderBecomesEmpty(t *testing.T) {
	tmpl := Template{Subject: "Hi {{nobody}}!", Body: "{{alsoNobody}}done"}

	out := Render(tmpl, nil, testIdentity())

	assert.Equal(t, "Hi !", out.Subject)
	assert.Equal(t, "done", out.Body)
}

func TestRenderCallerVariablesWinOverIdentity(t *testing.T) {
	tmpl := Template{Subject: "{{companyName}}", Body: "{{supportEmail}}"}

	out := Render(tmpl, Variables{
		"companyName":  "Override Inc",
		"supportEmail": "other@override.test",
	}, testIdentity())

	assert.Equal(t, "Override Inc", out.Subject)
	assert.Equal(t, "other@override.test", out.Body)
}

func TestRenderDoesNotExpandSubstitutedValues(t *testing.T) {
	// A variable value containing placeholder syntax must land verbatim:
	// substituted content is never re-scanned.
	tmpl := Template{Subject: "s", Body: "<div>{{customBody}}</div>"}

	out := Render(tmpl, Variables{
		"customBody":   "see {{employeeName}} and {{loginUrl}}",
		"employeeName": "should-not-appear",
	}, testIdentity())

	assert.Equal(t, "<div>see {{employeeName}} and {{loginUrl}}</div>", out.Body)
}

func TestRenderIsIdempotentForPlainOutput(t *testing.T) {
	tmpl := Template{Subject: "Hi {{employeeName}}", Body: "on {{date}}"}
	vars := Variables{"employeeName": "Lee", "date": "2026-02-14"}

	first := Render(tmpl, vars, testIdentity())
	second := Render(Template{Subject: first.Subject, Body: first.Body}, vars, testIdentity())

	assert.Equal(t, first, second)
}

func TestRenderCoercesNonStringValues(t *testing.T) {
	tmpl := Template{Subject: "expires in {{expiryHours}}h", Body: "flag={{enabled}} n={{count}} nil={{gone}}"}

	out := Render(tmpl, Variables{
		"expiryHours": 24,
		"enabled":     true,
		"count":       3.5,
		"gone":        nil,
	}, testIdentity())

	assert.Equal(t, "expires in 24h", out.Subject)
	assert.Equal(t, "flag=true n=3.5 nil=", out.Body)
}

func TestTokenizeUnterminatedPlaceholderStaysLiteral(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"unterminated open", "Hello {{name", "Hello {{name"},
		{"lone braces", "a }} b {{", "a }} b {{"},
		{"empty template", "", ""},
		{"only placeholder", "{{x}}", "X"},
		{"whitespace inside braces", "{{ x }}", "X"},
		{"adjacent placeholders", "{{x}}{{x}}", "XX"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := substitute(tc.in, Variables{"x": "X"})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTokenizeCachesSegments(t *testing.T) {
	const tmpl = "cached {{value}} template"

	substitute(tmpl, Variables{"value": "one"})
	cached, ok := segmentCache.Load(tmpl)
	assert.True(t, ok)

	substitute(tmpl, Variables{"value": "two"})
	again, _ := segmentCache.Load(tmpl)
	assert.Equal(t, cached, again)
}
