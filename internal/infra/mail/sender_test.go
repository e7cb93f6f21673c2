package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/naass/lead-api/internal/entity"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func newTestSender(d dialer) *EmailSender {
	s := NewEmailSender("smtp.example.com", 587, "bot@example.com", "pw", "", "sales@example.com")
	s.dialer = d
	return s
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestNotifyLeadCreatedSendsBothEmails(t *testing.T) {
	d := &recordingDialer{}
	s := newTestSender(d)

	err := s.NotifyLeadCreated(context.Background(), &entity.Lead{
		Name: "Jane", Email: "jane@example.com", Service: "seo", IPAddress: "203.0.113.9",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 2)

	assert.Equal(t, []string{"sales@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"bot@example.com"}, d.sent[0].GetHeader("From"))
	admin := render(t, d.sent[0])
	assert.Contains(t, admin, "Not provided")
	assert.Contains(t, admin, "203.0.113.9")

	assert.Equal(t, []string{"jane@example.com"}, d.sent[1].GetHeader("To"))
	assert.Contains(t, render(t, d.sent[1]), "seo")
}

func TestTemplatesEscapeInput(t *testing.T) {
	d := &recordingDialer{}
	s := newTestSender(d)

	require.NoError(t, s.SendLeadEmails(LeadEmailData{Name: "<script>x</script>", Email: "a@b.co", Service: "ppc"}))
	assert.NotContains(t, render(t, d.sent[0]), "<script>")
}

func TestSendLeadEmailsDisabledWithoutCredentials(t *testing.T) {
	d := &recordingDialer{}
	s := NewEmailSender("", 0, "", "", "", "")
	s.dialer = d

	require.NoError(t, s.SendLeadEmails(LeadEmailData{Email: "a@b.co"}))
	assert.Empty(t, d.sent)
}

func TestSendLeadEmailsWrapsSMTPError(t *testing.T) {
	s := newTestSender(&recordingDialer{err: errors.New("auth failed")})

	err := s.SendLeadEmails(LeadEmailData{Name: "A", Email: "a@b.co", Service: "ppc"})
	assert.ErrorContains(t, err, "send smtp")
}
