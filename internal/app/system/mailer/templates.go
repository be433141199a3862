// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// RegistrationEmailData holds data for the registration-received email.
type RegistrationEmailData struct {
	SiteName string
	FullName string
}

// BuildRegistrationEmail creates the email sent right after registration.
func BuildRegistrationEmail(data RegistrationEmailData) Email {
	return Email{
		Subject: fmt.Sprintf("Welcome to %s - registration received", data.SiteName),
		TextBody: fmt.Sprintf(
			"Kia ora %s,\n\nYour registration with %s has been received and is pending verification.\n"+
				"A kaitiaki will review your citizenship document. You will receive another email once your account is verified.\n\n"+
				"Ngā mihi,\n%s\n",
			data.FullName, data.SiteName, data.SiteName),
		HTMLBody: renderHTML(statusHTMLTemplate, statusEmailVM{
			SiteName: data.SiteName,
			FullName: data.FullName,
			Heading:  "Registration received",
			Body:     "Your registration is pending verification. A kaitiaki will review your citizenship document and you will be emailed once your account is verified.",
		}),
	}
}

// VerificationResultEmailData holds data for the verify/reject decision email.
type VerificationResultEmailData struct {
	SiteName string
	FullName string
	Verified bool
	LoginURL string
}

// BuildVerificationResultEmail creates the email sent when an admin or
// hapū leader decides on a pending registration.
func BuildVerificationResultEmail(data VerificationResultEmailData) Email {
	if data.Verified {
		return Email{
			Subject: fmt.Sprintf("Your %s account has been verified", data.SiteName),
			TextBody: fmt.Sprintf(
				"Kia ora %s,\n\nYour account has been verified. You can now sign in:\n%s\n\nNgā mihi,\n%s\n",
				data.FullName, data.LoginURL, data.SiteName),
			HTMLBody: renderHTML(statusHTMLTemplate, statusEmailVM{
				SiteName: data.SiteName,
				FullName: data.FullName,
				Heading:  "Account verified",
				Body:     "Your account has been verified and you can now sign in to the portal.",
				LinkURL:  data.LoginURL,
				LinkText: "Sign in",
			}),
		}
	}
	return Email{
		Subject: fmt.Sprintf("Your %s registration was not approved", data.SiteName),
		TextBody: fmt.Sprintf(
			"Kia ora %s,\n\nWe were unable to verify your registration. "+
				"If you believe this is a mistake, please contact your hapū leadership.\n\nNgā mihi,\n%s\n",
			data.FullName, data.SiteName),
		HTMLBody: renderHTML(statusHTMLTemplate, statusEmailVM{
			SiteName: data.SiteName,
			FullName: data.FullName,
			Heading:  "Registration not approved",
			Body:     "We were unable to verify your registration. If you believe this is a mistake, please contact your hapū leadership.",
		}),
	}
}

// PasswordResetEmailData holds data for the password reset email.
type PasswordResetEmailData struct {
	SiteName  string
	FullName  string
	ResetLink string
	ExpiresIn string // e.g., "1 hour"
}

// BuildPasswordResetEmail creates the reset-link email.
func BuildPasswordResetEmail(data PasswordResetEmailData) Email {
	return Email{
		Subject: fmt.Sprintf("Reset your %s password", data.SiteName),
		TextBody: fmt.Sprintf(
			"Kia ora %s,\n\nClick the link below to reset your password:\n%s\n\n"+
				"This link expires in %s. If you did not request a reset, you can safely ignore this email.\n",
			data.FullName, data.ResetLink, data.ExpiresIn),
		HTMLBody: renderHTML(statusHTMLTemplate, statusEmailVM{
			SiteName: data.SiteName,
			FullName: data.FullName,
			Heading:  "Password reset",
			Body:     fmt.Sprintf("Click the button below to reset your password. The link expires in %s.", data.ExpiresIn),
			LinkURL:  data.ResetLink,
			LinkText: "Reset password",
		}),
	}
}

// ConsultationEmailData holds data for the new-consultation notification.
type ConsultationEmailData struct {
	SiteName  string
	Title     string
	DetailURL string
}

// BuildConsultationEmail creates the notification sent to eligible
// members when a consultation opens.
func BuildConsultationEmail(data ConsultationEmailData) Email {
	return Email{
		Subject: fmt.Sprintf("New consultation: %s", data.Title),
		TextBody: fmt.Sprintf(
			"Kia ora,\n\nA new consultation is open for your voice:\n\n%s\n%s\n\nNgā mihi,\n%s\n",
			data.Title, data.DetailURL, data.SiteName),
		HTMLBody: renderHTML(statusHTMLTemplate, statusEmailVM{
			SiteName: data.SiteName,
			Heading:  "New consultation",
			Body:     fmt.Sprintf("A new consultation is open for your voice: %s", data.Title),
			LinkURL:  data.DetailURL,
			LinkText: "View consultation",
		}),
	}
}

type statusEmailVM struct {
	SiteName string
	FullName string
	Heading  string
	Body     string
	LinkURL  string
	LinkText string
}

func renderHTML(tmpl *template.Template, vm statusEmailVM) string {
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, vm)
	return buf.String()
}

var statusHTMLTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Heading}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 22px; font-weight: 600; color: #166534;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              {{if .FullName}}<p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Kia ora {{.FullName}},</p>{{end}}
              <h2 style="margin: 0 0 16px; font-size: 18px; color: #1f2937;">{{.Heading}}</h2>
              <p style="margin: 0 0 24px; font-size: 15px; color: #374151; line-height: 1.5;">{{.Body}}</p>
              {{if .LinkURL}}
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.LinkURL}}" style="display: inline-block; padding: 12px 28px; background-color: #166534; color: #ffffff; text-decoration: none; font-size: 15px; border-radius: 6px;">{{.LinkText}}</a>
                  </td>
                </tr>
              </table>
              {{end}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))
