package notifier

// defaultTemplates holds the built-in subject/body pair for every catalog
// entry, keyed by storage key. Every notification type has exactly one
// default, so dispatch can never fail purely for lack of configuration.
var defaultTemplates = map[string]Template{
	"welcome_email_template": {
		Subject: "Welcome to {{companyName}}",
		Body: `<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2>Welcome aboard, {{employeeName}}!</h2>
  <p>Your account at {{companyName}} has been created.</p>
  <p><strong>Login email:</strong> {{email}}<br/>
  <strong>Temporary password:</strong> {{temporaryPassword}}</p>
  <p>Please sign in at <a href="{{loginUrl}}">{{loginUrl}}</a> and change your password on first login.</p>
  <p>Questions? Contact us at {{supportEmail}}.</p>
</div>`,
	},
	"password_reset_email_template": {
		Subject: "Password Reset Request",
		Body: `<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2>Password Reset</h2>
  <p>Hi {{employeeName}},</p>
  <p>We received a request to reset your password. Click the link below to choose a new one:</p>
  <p><a href="{{resetLink}}">Reset my password</a></p>
  <p>This link expires in {{expiryHours}} hours. If you did not request a reset, you can ignore this email.</p>
  <p>— {{companyName}} ({{supportEmail}})</p>
</div>`,
	},
	"attendance_reminder_email_template": {
		Subject: "Attendance Reminder - {{date}}",
		Body: `<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2>Don't forget to check in</h2>
  <p>Hi {{employeeName}},</p>
  <p>We noticed you haven't recorded your attendance for {{date}} yet.</p>
  <p>Please check in at <a href="{{loginUrl}}">{{loginUrl}}</a>.</p>
  <p>— {{companyName}}</p>
</div>`,
	},
	"absence_alert_email_template": {
		Subject: "Absence Recorded - {{date}}",
		Body: `<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2>Absence Recorded</h2>
  <p>Hi {{employeeName}},</p>
  <p>An absence was recorded for you on {{date}} by {{managerName}}.</p>
  <p>If you believe this is incorrect, please contact {{supportEmail}}.</p>
  <p>— {{companyName}}</p>
</div>`,
	},
	"custom_email_template": {
		Subject: "{{customSubject}}",
		Body: `<div style="font-family: Arial, sans-serif; max-width: 600px;">
{{customBody}}
</div>`,
	},
}

// DefaultTemplate returns the built-in template for a storage key.
func DefaultTemplate(storageKey string) (Template, bool) {
	t, ok := defaultTemplates[storageKey]
	return t, ok
}
