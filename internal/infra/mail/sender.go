package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/naass/lead-api/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from, adminEmail string) *EmailSender {
	if from == "" {
		from = user
	}
	if adminEmail == "" {
		adminEmail = from
	}
	return &EmailSender{
		Host:       host,
		Port:       port,
		User:       user,
		Password:   password,
		From:       from,
		AdminEmail: adminEmail,
		dialer:     gomail.NewDialer(host, port, user, password),
	}
}

// Enabled reports whether SMTP credentials were configured.
func (s *EmailSender) Enabled() bool {
	return s != nil && s.Host != "" && s.User != "" && s.Password != ""
}

// NotifyLeadCreated sends the admin alert and the customer thank-you.
func (s *EmailSender) NotifyLeadCreated(_ context.Context, lead *entity.Lead) error {
	return s.SendLeadEmails(LeadEmailData{
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Company:   lead.Company,
		Service:   lead.Service,
		Message:   lead.Message,
		IPAddress: lead.IPAddress,
	})
}

func (s *EmailSender) SendLeadEmails(data LeadEmailData) error {
	if !s.Enabled() {
		return nil
	}

	admin, err := s.message(s.AdminEmail, "New Lead from NAASS Website - "+data.Name, "lead_admin.html", data)
	if err != nil {
		return err
	}
	customer, err := s.message(data.Email, "Thank you for contacting NAASS", "lead_thanks.html", data)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(admin, customer); err != nil {
		return fmt.Errorf("send smtp: %w", err)
	}
	return nil
}

func (s *EmailSender) message(to, subject, tmpl string, data LeadEmailData) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", tmpl, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())
	return m, nil
}
