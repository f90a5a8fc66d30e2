package notifier

import "strings"

// classifyRule maps a known transport error fragment to a user-facing
// explanation. Rules are checked in order; the first match wins.
type classifyRule struct {
	fragment string
	message  string
}

// classifyRules covers the failure modes administrators actually hit:
// provider quotas, bad credentials, unreachable or slow servers, and
// rejected recipients. Fragments include both the upstream provider texts
// and the Go net package equivalents.
var classifyRules = []classifyRule{
	{
		fragment: "daily user sending quota exceeded",
		message:  "The daily email sending limit has been exceeded. Try again tomorrow or switch to a provider with a higher quota.",
	},
	{
		fragment: "sending limit exceeded",
		message:  "The daily email sending limit has been exceeded. Try again tomorrow or switch to a provider with a higher quota.",
	},
	{
		fragment: "invalid login",
		message:  "Email authentication failed. Check the configured mail username and password.",
	},
	{
		fragment: "authentication failed",
		message:  "Email authentication failed. Check the configured mail username and password.",
	},
	{
		fragment: "invalid credentials",
		message:  "The mail server rejected the configured credentials. Update the mail settings with valid credentials.",
	},
	{
		fragment: "etimedout",
		message:  "The connection to the mail server timed out. Verify the host and port in the mail settings.",
	},
	{
		fragment: "i/o timeout",
		message:  "The connection to the mail server timed out. Verify the host and port in the mail settings.",
	},
	{
		fragment: "context deadline exceeded",
		message:  "The connection to the mail server timed out. Verify the host and port in the mail settings.",
	},
	{
		fragment: "econnrefused",
		message:  "The mail server refused the connection. Verify the host and port in the mail settings.",
	},
	{
		fragment: "connection refused",
		message:  "The mail server refused the connection. Verify the host and port in the mail settings.",
	},
	{
		fragment: "recipient address rejected",
		message:  "The mail server rejected the recipient address. Verify the recipient email address.",
	},
}

// Classify maps a raw transport error to a user-facing message. Unrecognized
// errors pass through with their original text so nothing is swallowed.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	raw := err.Error()
	lowered := strings.ToLower(raw)
	for _, rule := range classifyRules {
		if strings.Contains(lowered, rule.fragment) {
			return rule.message
		}
	}
	return raw
}
