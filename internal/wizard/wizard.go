package wizard

import (
	"notifyadmin/internal/domain"
	"notifyadmin/internal/session"
)

// Flow is a step-indexed run through a template's fields. The one-off flow
// asks for the recipient as its first step; the send-test flow pre-fills the
// recipient from the current user and only walks the placeholders. Letters
// collect the address block either way.
type Flow struct {
	Template       domain.Template
	AskRecipient   bool
	recipientField string
}

// NewFlow builds the flow for a template. askRecipient is true for the
// one-off entry point.
func NewFlow(t domain.Template, askRecipient bool) Flow {
	f := Flow{Template: t, AskRecipient: askRecipient}
	switch t.Type {
	case domain.TypeSMS:
		f.recipientField = "phone number"
	case domain.TypeEmail:
		f.recipientField = "email address"
	}
	return f
}

// Fields lists the wizard fields in step order.
func (f Flow) Fields() []string {
	var fields []string
	if f.AskRecipient && f.recipientField != "" {
		fields = append(fields, f.recipientField)
	}
	fields = append(fields, f.Template.WizardFields()...)
	return fields
}

// Step is one screen of the send flow: a single field to fill in.
type Step struct {
	Index    int
	Field    string
	Optional bool
	Value    string // pre-populated from the session, if present
}

// At returns the step at index i, pre-populated from state. ok is false when
// i is out of range, in which case the caller redirects to the canonical
// entry point rather than erroring.
func (f Flow) At(state *session.State, i int) (Step, bool) {
	fields := f.Fields()
	if i < 0 || i >= len(fields) {
		return Step{}, false
	}
	field := fields[i]
	s := Step{
		Index:    i,
		Field:    field,
		Optional: domain.OptionalColumn(f.Template.Type, field),
	}
	if f.isRecipientField(field) {
		s.Value = state.Recipient
	} else {
		s.Value = state.Placeholders[domain.NormalizeColumn(field)]
	}
	return s, true
}

// Store records a submitted value under its placeholder key; the recipient
// field lands in the session's recipient slot instead.
func (f Flow) Store(state *session.State, i int, value string) bool {
	fields := f.Fields()
	if i < 0 || i >= len(fields) {
		return false
	}
	field := fields[i]
	if f.isRecipientField(field) {
		state.Recipient = value
		state.RecipientSet = true
		return true
	}
	if state.Placeholders == nil {
		state.Placeholders = map[string]string{}
	}
	state.Placeholders[domain.NormalizeColumn(field)] = value
	return true
}

// Done reports whether step i was the last one, i.e. the flow should move on
// to preview and confirmation.
func (f Flow) Done(i int) bool {
	return i+1 >= len(f.Fields())
}

// Ready reports whether the session holds everything needed to preview and
// send: a recipient and a value for every non-optional field.
func (f Flow) Ready(state *session.State) bool {
	if !state.RecipientSet || state.Placeholders == nil {
		return false
	}
	if f.Template.Type != domain.TypeLetter && state.Recipient == "" {
		return false
	}
	for _, field := range f.Template.WizardFields() {
		if domain.OptionalColumn(f.Template.Type, field) {
			continue
		}
		if _, ok := state.Placeholders[domain.NormalizeColumn(field)]; !ok {
			return false
		}
	}
	return true
}

// Values returns the collected placeholder values keyed by field name, for
// rendering and submission. The recipient is not part of the
// personalisation.
func (f Flow) Values(state *session.State) map[string]string {
	out := make(map[string]string)
	for _, field := range f.Template.WizardFields() {
		if v, ok := state.Placeholders[domain.NormalizeColumn(field)]; ok {
			out[field] = v
		}
	}
	return out
}

func (f Flow) isRecipientField(field string) bool {
	return f.recipientField != "" && domain.NormalizeColumn(field) == domain.NormalizeColumn(f.recipientField)
}
