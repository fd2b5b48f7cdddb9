package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"notifyadmin/internal/domain"
	"notifyadmin/internal/session"
	"notifyadmin/internal/wizard"
)

var smsTemplate = domain.Template{Type: domain.TypeSMS, Content: "Hi ((name)), code ((code))"}

func TestFields(t *testing.T) {
	t.Parallel()

	t.Run("one-off asks for the recipient first", func(t *testing.T) {
		t.Parallel()

		f := wizard.NewFlow(smsTemplate, true)
		require.Equal(t, []string{"phone number", "name", "code"}, f.Fields())
	})

	t.Run("send-test skips the recipient", func(t *testing.T) {
		t.Parallel()

		f := wizard.NewFlow(smsTemplate, false)
		require.Equal(t, []string{"name", "code"}, f.Fields())
	})

	t.Run("letters collect the address block either way", func(t *testing.T) {
		t.Parallel()

		letter := domain.Template{Type: domain.TypeLetter, Content: "Dear ((name))"}
		f := wizard.NewFlow(letter, true)
		fields := f.Fields()
		require.Equal(t, "address line 1", fields[0])
		require.Equal(t, "name", fields[len(fields)-1])
		require.Equal(t, f.Fields(), wizard.NewFlow(letter, false).Fields())
	})
}

func TestStepsAndStore(t *testing.T) {
	t.Parallel()

	f := wizard.NewFlow(smsTemplate, true)
	st := &session.State{}
	st.StartWizard("")

	step, ok := f.At(st, 0)
	require.True(t, ok)
	require.Equal(t, "phone number", step.Field)
	require.False(t, step.Optional)

	_, ok = f.At(st, 3)
	require.False(t, ok)
	_, ok = f.At(st, -1)
	require.False(t, ok)

	require.True(t, f.Store(st, 0, "07700 900321"))
	require.True(t, f.Store(st, 1, "Jo"))
	require.Equal(t, "07700 900321", st.Recipient)
	require.Equal(t, "Jo", st.Placeholders["name"])

	// revisiting a step shows the stored value
	step, _ = f.At(st, 1)
	require.Equal(t, "Jo", step.Value)

	require.False(t, f.Done(1))
	require.True(t, f.Done(2))
}

func TestReady(t *testing.T) {
	t.Parallel()

	t.Run("needs a recipient and every placeholder", func(t *testing.T) {
		t.Parallel()

		f := wizard.NewFlow(smsTemplate, true)
		st := &session.State{}
		require.False(t, f.Ready(st))

		st.StartWizard("")
		require.False(t, f.Ready(st))

		f.Store(st, 0, "07700 900321")
		f.Store(st, 1, "Jo")
		require.False(t, f.Ready(st))

		f.Store(st, 2, "1234")
		require.True(t, f.Ready(st))
	})

	t.Run("optional address lines may stay empty", func(t *testing.T) {
		t.Parallel()

		letter := domain.Template{Type: domain.TypeLetter}
		f := wizard.NewFlow(letter, false)
		st := &session.State{}
		st.StartWizard("")
		for i, field := range f.Fields() {
			if domain.OptionalColumn(domain.TypeLetter, field) {
				continue
			}
			f.Store(st, i, "value")
		}
		require.True(t, f.Ready(st))
	})
}

func TestValues(t *testing.T) {
	t.Parallel()

	f := wizard.NewFlow(smsTemplate, true)
	st := &session.State{}
	st.StartWizard("")
	f.Store(st, 0, "07700 900321")
	f.Store(st, 1, "Jo")
	f.Store(st, 2, "1234")

	// the recipient is not part of the personalisation
	require.Equal(t, map[string]string{"name": "Jo", "code": "1234"}, f.Values(st))
}
