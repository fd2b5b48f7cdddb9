package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"notifyadmin/internal/domain"
)

func TestNormalizeColumn(t *testing.T) {
	t.Parallel()

	require.Equal(t, "phonenumber", domain.NormalizeColumn("Phone Number"))
	require.Equal(t, "phonenumber", domain.NormalizeColumn("phone_number"))
	require.Equal(t, "phonenumber", domain.NormalizeColumn("phone-number"))
	require.Equal(t, "phonenumber", domain.NormalizeColumn(" PHONENUMBER "))
	require.Equal(t, "addressline1", domain.NormalizeColumn("Address Line 1"))
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	t.Run("in order of first appearance, deduplicated", func(t *testing.T) {
		t.Parallel()

		tpl := domain.Template{Content: "Hi ((name)), your code is ((code)). Bye ((Name))"}
		require.Equal(t, []string{"name", "code"}, tpl.Placeholders())
	})

	t.Run("subject placeholders count for emails", func(t *testing.T) {
		t.Parallel()

		tpl := domain.Template{
			Type:    domain.TypeEmail,
			Subject: "((thing)) is ready",
			Content: "Hello ((name))",
		}
		require.Equal(t, []string{"name", "thing"}, tpl.Placeholders())
	})

	t.Run("nested or unbalanced brackets are not placeholders", func(t *testing.T) {
		t.Parallel()

		tpl := domain.Template{Content: "((a(b)) and (not one)"}
		require.Empty(t, tpl.Placeholders())
	})
}

func TestRender(t *testing.T) {
	t.Parallel()

	tpl := domain.Template{Content: "Hi ((name)), see ((Phone Number))"}
	out := tpl.Render(map[string]string{"name": "Jo", "phone_number": "07700 900000"})
	require.Equal(t, "Hi Jo, see 07700 900000", out)

	t.Run("unmatched markers stay verbatim", func(t *testing.T) {
		t.Parallel()

		out := tpl.Render(map[string]string{"name": "Jo"})
		require.Equal(t, "Hi Jo, see ((Phone Number))", out)
	})

	t.Run("subject lines substitute too", func(t *testing.T) {
		t.Parallel()

		tpl := domain.Template{Subject: "Reminder for ((name))", Content: "Hi ((name))"}
		require.Equal(t, "Reminder for Jo", tpl.RenderSubject(map[string]string{"name": "Jo"}))
	})
}

func TestRequiredColumns(t *testing.T) {
	t.Parallel()

	t.Run("sms is the phone column plus placeholders", func(t *testing.T) {
		t.Parallel()

		tpl := domain.Template{Type: domain.TypeSMS, Content: "((name))"}
		require.Equal(t, []string{"phone number", "name"}, tpl.RequiredColumns())
	})

	t.Run("letter omits the optional address lines", func(t *testing.T) {
		t.Parallel()

		tpl := domain.Template{Type: domain.TypeLetter, Content: "Dear ((name))"}
		require.Equal(t,
			[]string{"address line 1", "address line 2", "postcode", "name"},
			tpl.RequiredColumns())
	})

	t.Run("a placeholder naming a recipient column is not doubled", func(t *testing.T) {
		t.Parallel()

		tpl := domain.Template{Type: domain.TypeSMS, Content: "((phone_number)) ((name))"}
		require.Equal(t, []string{"phone number", "name"}, tpl.RequiredColumns())
	})
}

func TestWizardFields(t *testing.T) {
	t.Parallel()

	tpl := domain.Template{Type: domain.TypeLetter, Content: "Dear ((name))"}
	fields := tpl.WizardFields()
	require.Equal(t, "address line 1", fields[0])
	require.Equal(t, "postcode", fields[6])
	require.Equal(t, "name", fields[7])

	require.True(t, domain.OptionalColumn(domain.TypeLetter, "address line 4"))
	require.False(t, domain.OptionalColumn(domain.TypeLetter, "address line 2"))
	require.False(t, domain.OptionalColumn(domain.TypeSMS, "address line 4"))
}

func TestCanSend(t *testing.T) {
	t.Parallel()

	svc := domain.Service{Permissions: []string{"send_texts", "send_letters"}}
	require.True(t, svc.CanSend(domain.TypeSMS))
	require.False(t, svc.CanSend(domain.TypeEmail))
	require.True(t, svc.CanSend(domain.TypeLetter))
	require.False(t, svc.CanSend(domain.TemplateType("broadcast")))
}
