package domain

import "errors"

type TemplateType string

const (
	TypeSMS    TemplateType = "sms"
	TypeEmail  TemplateType = "email"
	TypeLetter TemplateType = "letter"
)

// Template is an immutable snapshot of a message definition, fetched from the
// notification API per request. Content may contain ((placeholder)) markers.
type Template struct {
	ID        string       `json:"id"`
	ServiceID string       `json:"service_id"`
	Type      TemplateType `json:"template_type"`
	Name      string       `json:"name"`
	Content   string       `json:"content"`
	Subject   string       `json:"subject,omitempty"`
	Redacted  bool         `json:"redact_personalisation,omitempty"`
	Version   int          `json:"version,omitempty"`
}

// Service carries the sending policy the admin app enforces before creating
// a job: trial mode, daily message limit and international SMS permission.
type Service struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	TrialMode        bool     `json:"restricted"`
	MessageLimit     int      `json:"message_limit"`
	InternationalSMS bool     `json:"can_send_international_sms"`
	Permissions      []string `json:"permissions"`
}

// CanSend reports whether the service has the sending permission for the
// given template type ("sms" -> "send_texts" and so on).
func (s Service) CanSend(t TemplateType) bool {
	var want string
	switch t {
	case TypeSMS:
		want = "send_texts"
	case TypeEmail:
		want = "send_emails"
	case TypeLetter:
		want = "send_letters"
	default:
		return false
	}
	for _, p := range s.Permissions {
		if p == want {
			return true
		}
	}
	return false
}

// TeamMember is a user of the service; in trial mode only team members'
// verified phone numbers and email addresses may receive messages.
type TeamMember struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	EmailAddress string `json:"email_address"`
	MobileNumber string `json:"mobile_number"`
}

// Job is a batch send owned by the remote API; the admin app only requests
// creation and polls status.
type Job struct {
	ID                string `json:"id"`
	ServiceID         string `json:"service"`
	TemplateID        string `json:"template"`
	OriginalFileName  string `json:"original_file_name"`
	NotificationCount int    `json:"notification_count"`
	Status            string `json:"job_status"`
	ScheduledFor      string `json:"scheduled_for,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
}

type Notification struct {
	ID         string       `json:"id"`
	ServiceID  string       `json:"service_id"`
	TemplateID string       `json:"template_id"`
	Type       TemplateType `json:"notification_type"`
	To         string       `json:"to"`
	Status     string       `json:"status"`
	CreatedAt  string       `json:"created_at,omitempty"`
}

// ChannelStats is the requested/delivered/failed triple the API reports per
// channel for the current day.
type ChannelStats struct {
	Requested int `json:"requested"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

type DailyStats struct {
	SMS    ChannelStats `json:"sms"`
	Email  ChannelStats `json:"email"`
	Letter ChannelStats `json:"letter"`
}

func (d DailyStats) Requested(t TemplateType) int {
	switch t {
	case TypeSMS:
		return d.SMS.Requested
	case TypeEmail:
		return d.Email.Requested
	case TypeLetter:
		return d.Letter.Requested
	}
	return 0
}

var ErrUnknownTemplateType = errors.New("unknown template type")
