package mail

// LeadEmailData feeds both lead templates.
type LeadEmailData struct {
	Name      string
	Email     string
	Phone     string
	Company   string
	Service   string
	Message   string
	IPAddress string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// AdminEmail receives new-lead alerts; defaults to From.
	AdminEmail string

	dialer dialer
}
