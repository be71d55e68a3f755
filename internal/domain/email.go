package domain

import "context"

// Mailer sends an email. Implementations may use SES, SMTP, or a no-op.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named email template to subject, html,
// and text bodies.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData is the data for the invitation notification template.
type InvitationEmailData struct {
	Email       string
	InviteeName string
	InviterName string
	EventTitle  string
	StartsAt    string
	ExpiresAt   string
}

// EmailService sends engine notification emails. Delivery is best-effort:
// the scheduling outcome never depends on it.
type EmailService interface {
	SendInvitationNotice(ctx context.Context, data *InvitationEmailData) error
}
