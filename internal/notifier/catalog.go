// Package notifier implements the notification templating and delivery
// engine: template resolution with administrator overrides, variable
// rendering, transport lifecycle and failure classification.
package notifier

// Type identifies one kind of outbound notification.
type Type string

const (
	TypeWelcome            Type = "welcome"
	TypePasswordReset      Type = "passwordReset"
	TypeAttendanceReminder Type = "attendanceReminder"
	TypeAbsenceAlert       Type = "absenceAlert"
	TypeCustom             Type = "custom"
)

// Template is a subject/body pair. Body is HTML.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CatalogEntry describes one notification type: the settings key an override
// is stored under, a display name for the admin UI, and the placeholder
// variables its template is expected to use.
type CatalogEntry struct {
	Type        Type     `json:"type"`
	StorageKey  string   `json:"storageKey"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Variables   []string `json:"variables"`
}

// catalog is the static registry of notification types. Entries are never
// created or removed at runtime.
var catalog = []CatalogEntry{
	{
		Type:        TypeWelcome,
		StorageKey:  "welcome_email_template",
		Name:        "Welcome Email",
		Description: "Sent to a new employee when their account is created",
		Variables:   []string{"employeeName", "email", "temporaryPassword", "loginUrl", "companyName", "supportEmail"},
	},
	{
		Type:        TypePasswordReset,
		StorageKey:  "password_reset_email_template",
		Name:        "Password Reset",
		Description: "Sent when an employee requests a password reset",
		Variables:   []string{"employeeName", "resetLink", "expiryHours", "companyName", "supportEmail"},
	},
	{
		Type:        TypeAttendanceReminder,
		StorageKey:  "attendance_reminder_email_template",
		Name:        "Attendance Reminder",
		Description: "Reminds an employee who has not checked in for the day",
		Variables:   []string{"employeeName", "date", "loginUrl", "companyName"},
	},
	{
		Type:        TypeAbsenceAlert,
		StorageKey:  "absence_alert_email_template",
		Name:        "Absence Alert",
		Description: "Notifies an employee that an absence was recorded",
		Variables:   []string{"employeeName", "date", "managerName", "companyName", "supportEmail"},
	},
	{
		Type:        TypeCustom,
		StorageKey:  "custom_email_template",
		Name:        "Custom Message",
		Description: "Free-form message with caller-supplied subject and body",
		Variables:   []string{"customSubject", "customBody", "companyName"},
	},
}

var catalogByType = func() map[Type]CatalogEntry {
	m := make(map[Type]CatalogEntry, len(catalog))
	for _, e := range catalog {
		m[e.Type] = e
	}
	return m
}()

// ListTypes returns the catalog in registration order. The returned slice is
// a copy; callers may not mutate the registry.
func ListTypes() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for a notification type.
func Lookup(t Type) (CatalogEntry, bool) {
	e, ok := catalogByType[t]
	return e, ok
}
