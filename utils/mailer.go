package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/badoux/checkmail"
	"gopkg.in/gomail.v2"

	"renovision/config"
	"renovision/models"
)

type EmailData struct {
	Subject  string
	To       []string
	Template string
	Data     interface{}
}

// Embedded email templates
var emailTemplates = map[string]string{
	"customer_confirmation": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .ref-code { font-size: 24px; font-weight: bold; color: #3498db; margin: 20px 0; text-align: center; }
        .button { display: inline-block; padding: 10px 20px; background-color: #3498db; color: white; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Thanks for your enquiry, {{.CustomerName}}!</h2>
    </div>

    <div class="content">
        <p>{{.CompanyName}} has received your renovation enquiry and will be in touch shortly.</p>

        <p>Your reference code:</p>
        <div class="ref-code">{{.ReferenceCode}}</div>

        {{if .GeneratedImage}}
        <p style="text-align: center;">
            <a href="{{.GeneratedImage}}" class="button">View your renovation preview</a>
        </p>
        {{end}}

        <p>Keep this reference handy when speaking to {{.CompanyName}}.</p>
    </div>

    <div class="footer">
        <p>© {{.Year}} RenoVision. All rights reserved.</p>
    </div>
</body>
</html>`,

	"company_alert": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .lead-details { background: #f8f9fa; border-radius: 4px; padding: 15px; margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>🎉 New lead: {{.CustomerName}}</h2>
    </div>

    <div class="content">
        <p>A homeowner just used your RenoVision widget. Get in touch while it's hot!</p>

        <div class="lead-details">
            <p><strong>Name:</strong> {{.CustomerName}}</p>
            <p><strong>Email:</strong> {{.CustomerEmail}}</p>
            <p><strong>Phone:</strong> {{.CustomerPhone}}</p>
            {{if .Postcode}}<p><strong>Postcode:</strong> {{.Postcode}}</p>{{end}}
            {{if .ProjectBudget}}<p><strong>Budget:</strong> {{.ProjectBudget}}</p>{{end}}
            {{if .Notes}}<p><strong>Notes:</strong> {{.Notes}}</p>{{end}}
            <p><strong>Reference:</strong> {{.ReferenceCode}}</p>
        </div>

        <p>Leads contacted within an hour convert best.</p>
    </div>

    <div class="footer">
        <p>© {{.Year}} RenoVision. All rights reserved.</p>
    </div>
</body>
</html>`,

	"follow_up_1": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Still thinking about your renovation?</h2>
    </div>

    <div class="content">
        <p>Hi {{.CustomerName}},</p>
        <p>A few days ago you asked {{.CompanyName}} about a renovation (reference {{.ReferenceCode}}).</p>
        <p>They'd still love to help — just reply to this email or give them a call on {{.CompanyPhone}}.</p>
    </div>

    <div class="footer">
        <p>© {{.Year}} RenoVision. All rights reserved.</p>
    </div>
</body>
</html>`,

	"follow_up_2": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Last chance to grab your quote</h2>
    </div>

    <div class="content">
        <p>Hi {{.CustomerName}},</p>
        <p>{{.CompanyName}} still has your renovation preview on file (reference {{.ReferenceCode}}), but spots in their schedule are filling up.</p>
        <p>Reply now to lock in a free, no-obligation quote.</p>
    </div>

    <div class="footer">
        <p>© {{.Year}} RenoVision. All rights reserved.</p>
    </div>
</body>
</html>`,

	"follow_up_3": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>We're closing out your enquiry</h2>
    </div>

    <div class="content">
        <p>Hi {{.CustomerName}},</p>
        <p>We haven't heard back, so we're closing your enquiry with {{.CompanyName}} (reference {{.ReferenceCode}}).</p>
        <p>If you change your mind, you can always start a fresh design on their website.</p>
    </div>

    <div class="footer">
        <p>© {{.Year}} RenoVision. All rights reserved.</p>
    </div>
</body>
</html>`,
}

var followUpSubjects = map[int]string{
	1: "Still interested in your renovation?",
	2: "Last chance for your free quote",
	3: "We're closing out your enquiry",
}

func renderTemplate(name string, data interface{}) (string, error) {
	tmplContent, ok := emailTemplates[name]
	if !ok {
		return "", fmt.Errorf("template '%s' not found", name)
	}

	tmpl, err := template.New("email").Parse(tmplContent)
	if err != nil {
		return "", fmt.Errorf("error parsing template: %v", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("error executing template: %v", err)
	}

	return body.String(), nil
}

// Mailer sends the transactional emails for a lead's lifecycle. It holds no
// per-send state and is safe for concurrent use.
type Mailer struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	fromName  string
}

func NewMailer(cfg config.Config) *Mailer {
	return &Mailer{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (m *Mailer) Send(data EmailData) error {
	if len(data.To) == 0 {
		return fmt.Errorf("no recipients")
	}
	for _, to := range data.To {
		if err := checkmail.ValidateFormat(to); err != nil {
			return fmt.Errorf("invalid recipient %q: %w", to, err)
		}
	}

	body, err := renderTemplate(data.Template, data.Data)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail))
	msg.SetHeader("To", data.To...)
	msg.SetHeader("Subject", data.Subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}

	return nil
}

// SendCustomerConfirmation emails the homeowner their reference code and,
// when present, a link to the generated preview.
func (m *Mailer) SendCustomerConfirmation(lead *models.Lead, company *models.Company) error {
	subject := fmt.Sprintf("Your renovation enquiry with %s", company.Name)
	return m.Send(EmailData{
		Subject:  subject,
		To:       []string{lead.Email},
		Template: "customer_confirmation",
		Data: struct {
			Subject        string
			CustomerName   string
			CompanyName    string
			ReferenceCode  string
			GeneratedImage string
			Year           int
		}{
			Subject:        subject,
			CustomerName:   lead.CustomerName,
			CompanyName:    company.Name,
			ReferenceCode:  lead.ReferenceCode,
			GeneratedImage: lead.GeneratedImage,
			Year:           time.Now().Year(),
		},
	})
}

// SendCompanyAlert emails the owning company the new lead's contact details.
func (m *Mailer) SendCompanyAlert(lead *models.Lead, company *models.Company) error {
	subject := fmt.Sprintf("New lead: %s (%s)", lead.CustomerName, lead.ReferenceCode)
	return m.Send(EmailData{
		Subject:  subject,
		To:       []string{company.Email},
		Template: "company_alert",
		Data: struct {
			Subject       string
			CustomerName  string
			CustomerEmail string
			CustomerPhone string
			Postcode      string
			ProjectBudget string
			Notes         string
			ReferenceCode string
			Year          int
		}{
			Subject:       subject,
			CustomerName:  lead.CustomerName,
			CustomerEmail: lead.Email,
			CustomerPhone: lead.Phone,
			Postcode:      lead.Postcode,
			ProjectBudget: lead.ProjectBudget,
			Notes:         lead.Notes,
			ReferenceCode: lead.ReferenceCode,
			Year:          time.Now().Year(),
		},
	})
}

// SendFollowUp emails follow-up stage 1, 2 or 3 to the homeowner.
func (m *Mailer) SendFollowUp(stage int, lead *models.Lead, company *models.Company) error {
	subject, ok := followUpSubjects[stage]
	if !ok {
		return fmt.Errorf("unknown follow-up stage %d", stage)
	}
	return m.Send(EmailData{
		Subject:  subject,
		To:       []string{lead.Email},
		Template: fmt.Sprintf("follow_up_%d", stage),
		Data: struct {
			Subject       string
			CustomerName  string
			CompanyName   string
			CompanyPhone  string
			ReferenceCode string
			Year          int
		}{
			Subject:       subject,
			CustomerName:  lead.CustomerName,
			CompanyName:   company.Name,
			CompanyPhone:  company.Phone,
			ReferenceCode: lead.ReferenceCode,
			Year:          time.Now().Year(),
		},
	})
}
