package notifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryCatalogEntryHasADefaultTemplate(t *testing.T) {
	for _, entry := range ListTypes() {
		tmpl, ok := DefaultTemplate(entry.StorageKey)
		require.True(t, ok, "no default for %s", entry.StorageKey)
		assert.NotEmpty(t, tmpl.Subject, entry.StorageKey)
		assert.NotEmpty(t, tmpl.Body, entry.StorageKey)
	}
}

func TestDefaultTemplatesOnlyUseDeclaredVariables(t *testing.T) {
	for _, entry := range ListTypes() {
		tmpl, ok := DefaultTemplate(entry.StorageKey)
		require.True(t, ok)

		declared := make(map[string]bool, len(entry.Variables))
		for _, v := range entry.Variables {
			declared[v] = true
		}

		for _, seg := range tokenize(tmpl.Subject + tmpl.Body) {
			if seg.placeholder {
				assert.True(t, declared[seg.text],
					"%s uses undeclared variable %q", entry.StorageKey, seg.text)
			}
		}
	}
}

func TestLookupKnownAndUnknownTypes(t *testing.T) {
	entry, ok := Lookup(TypePasswordReset)
	require.True(t, ok)
	assert.Equal(t, "password_reset_email_template", entry.StorageKey)

	_, ok = Lookup(Type("sms"))
	assert.False(t, ok)
}

func TestListTypesReturnsACopy(t *testing.T) {
	first := ListTypes()
	first[0].Name = "mutated"

	second := ListTypes()
	assert.NotEqual(t, "mutated", second[0].Name)
}

func TestCustomDefaultSubjectIsBarePlaceholder(t *testing.T) {
	tmpl, ok := DefaultTemplate("custom_email_template")
	require.True(t, ok)

	// The caller-supplied subject passes through unchanged.
	assert.Equal(t, "{{customSubject}}", tmpl.Subject)
	assert.True(t, strings.Contains(tmpl.Body, "{{customBody}}"))
}
