package recipients

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"notifyadmin/internal/domain"
)

var smsTemplate = domain.Template{Type: domain.TypeSMS, Content: "Hi ((name))"}

func smsRecords(rows ...[]string) [][]string {
	return append([][]string{{"phone number", "name"}}, rows...)
}

func openService() domain.Service {
	return domain.Service{MessageLimit: 1000, Permissions: []string{"send_texts", "send_emails", "send_letters"}}
}

func TestTableValid(t *testing.T) {
	t.Parallel()

	table := NewTable(smsRecords(
		[]string{"07700 900321", "Jo"},
		[]string{"07700 900322", "Sam"},
	), Options{Template: smsTemplate})

	require.NoError(t, table.Verdict(Policy{Service: openService()}))
	require.Len(t, table.Rows, 2)
	require.Equal(t, 2, table.Rows[0].Index)
	require.Equal(t, 3, table.Rows[1].Index)
	require.Equal(t, "Jo", table.Rows[0].Get("name"))
}

func TestHeaderErrors(t *testing.T) {
	t.Parallel()

	t.Run("no data rows", func(t *testing.T) {
		t.Parallel()

		table := NewTable([][]string{{"phone number", "name"}}, Options{Template: smsTemplate})
		verdict := table.Verdict(Policy{Service: openService()})
		require.IsType(t, MissingRowsError{}, verdict)
		require.Equal(t, []string{"phone number", "name"}, verdict.(MissingRowsError).Required)
	})

	t.Run("missing rows beats missing columns", func(t *testing.T) {
		t.Parallel()

		table := NewTable(nil, Options{Template: smsTemplate})
		require.IsType(t, MissingRowsError{}, table.Verdict(Policy{Service: openService()}))
	})

	t.Run("missing recipient column", func(t *testing.T) {
		t.Parallel()

		table := NewTable([][]string{{"name"}, {"Jo"}}, Options{Template: smsTemplate})
		verdict := table.Verdict(Policy{Service: openService()})
		require.IsType(t, MissingRecipientColumnsError{}, verdict)
		e := verdict.(MissingRecipientColumnsError)
		require.Equal(t, []string{"phone number"}, e.Missing)
		require.Equal(t, []string{"name"}, e.Present)
	})

	t.Run("missing recipient column beats missing placeholders", func(t *testing.T) {
		t.Parallel()

		table := NewTable([][]string{{"nickname"}, {"Jo"}}, Options{Template: smsTemplate})
		require.IsType(t, MissingRecipientColumnsError{}, table.Verdict(Policy{Service: openService()}))
	})

	t.Run("missing placeholder column", func(t *testing.T) {
		t.Parallel()

		table := NewTable([][]string{{"phone number"}, {"07700 900321"}}, Options{Template: smsTemplate})
		verdict := table.Verdict(Policy{Service: openService()})
		require.IsType(t, MissingPlaceholderColumnsError{}, verdict)
		require.Equal(t, []string{"name"}, verdict.(MissingPlaceholderColumnsError).Missing)
	})

	t.Run("column matching ignores case, spaces and underscores", func(t *testing.T) {
		t.Parallel()

		table := NewTable([][]string{{"PHONE_NUMBER", "Name"}, {"07700 900321", "Jo"}},
			Options{Template: smsTemplate})
		require.NoError(t, table.Verdict(Policy{Service: openService()}))
	})
}

func TestRowErrors(t *testing.T) {
	t.Parallel()

	table := NewTable(smsRecords(
		[]string{"07700 900321", "Jo"},
		[]string{"07700 900322", ""},
		[]string{"not a number", "Sam"},
	), Options{Template: smsTemplate})

	verdict := table.Verdict(Policy{Service: openService()})
	require.IsType(t, RowValidationError{}, verdict)
	e := verdict.(RowValidationError)
	require.Equal(t, 1, e.MissingDataRows)
	require.Equal(t, 1, e.BadRecipients)

	// each row keeps its own problem; good rows stay good
	require.True(t, table.Rows[0].OK())
	require.Equal(t, []string{"name"}, table.Rows[1].MissingColumns)
	require.Equal(t, "Must not contain letters or symbols", table.Rows[2].RecipientError)
}

func TestInternationalSMS(t *testing.T) {
	t.Parallel()

	records := smsRecords([]string{"+33 1 23 45 67 89", "Jo"})

	table := NewTable(records, Options{Template: smsTemplate})
	_, bad := table.RowErrorCounts()
	require.Equal(t, 1, bad)

	table = NewTable(records, Options{Template: smsTemplate, InternationalSMS: true})
	_, bad = table.RowErrorCounts()
	require.Zero(t, bad)
}

func TestLetterAddressValidation(t *testing.T) {
	t.Parallel()

	letter := domain.Template{Type: domain.TypeLetter, Content: "Dear ((name))"}
	table := NewTable([][]string{
		{"address line 1", "address line 2", "postcode", "name"},
		{"Mr Smith", "1 Example [Street]", "XM4 5HQ", "Jo"},
		{"Ms Jones", "2 Example Street", "", "Sam"},
	}, Options{Template: letter})

	require.Equal(t, "Can’t include [ or ]", table.Rows[0].RecipientError)
	require.Equal(t, []string{"postcode"}, table.Rows[1].MissingColumns)
}

func TestTrialMode(t *testing.T) {
	t.Parallel()

	team := []domain.TeamMember{{MobileNumber: "07700 900321"}}
	trial := openService()
	trial.TrialMode = true

	t.Run("blocks recipients outside the team", func(t *testing.T) {
		t.Parallel()

		table := NewTable(smsRecords([]string{"07700 900999", "Jo"}), Options{Template: smsTemplate})
		verdict := table.Verdict(Policy{Service: trial, Team: team})
		require.IsType(t, TrialModeError{}, verdict)
	})

	t.Run("team members in any formatting are fine", func(t *testing.T) {
		t.Parallel()

		table := NewTable(smsRecords([]string{"+44 7700 900 321", "Jo"}), Options{Template: smsTemplate})
		require.NoError(t, table.Verdict(Policy{Service: trial, Team: team}))
	})

	t.Run("beats every other verdict", func(t *testing.T) {
		t.Parallel()

		// bad recipients and a missing placeholder column at the same time
		table := NewTable([][]string{{"phone number"}, {"07700 900999"}}, Options{Template: smsTemplate})
		verdict := table.Verdict(Policy{Service: trial, Team: team})
		require.IsType(t, TrialModeError{}, verdict)
	})
}

func TestTooManyRows(t *testing.T) {
	t.Parallel()

	records := smsRecords(
		[]string{"07700 900321", "Jo"},
		[]string{"07700 900322", "Sam"},
		[]string{"07700 900323", "Ali"},
	)
	table := NewTable(records, Options{Template: smsTemplate, MaxRows: 2})
	verdict := table.Verdict(Policy{Service: openService()})
	require.IsType(t, TooManyRowsError{}, verdict)
	e := verdict.(TooManyRowsError)
	require.Equal(t, 2, e.Max)
	require.Equal(t, 3, e.Actual)
}

func TestDailyLimit(t *testing.T) {
	t.Parallel()

	svc := openService()
	svc.MessageLimit = 10

	records := smsRecords(
		[]string{"07700 900321", "Jo"},
		[]string{"07700 900322", "Sam"},
		[]string{"07700 900323", "Ali"},
	)

	t.Run("over the remaining allowance", func(t *testing.T) {
		t.Parallel()

		table := NewTable(records, Options{Template: smsTemplate})
		stats := domain.DailyStats{SMS: domain.ChannelStats{Requested: 8}}
		verdict := table.Verdict(Policy{Service: svc, Stats: stats, OriginalFileName: "list.csv"})
		require.IsType(t, DailyLimitError{}, verdict)
		e := verdict.(DailyLimitError)
		require.Equal(t, 2, e.Remaining())
		require.Equal(t, 3, e.InFile)
		require.Equal(t, "list.csv", e.FileName)
	})

	t.Run("exactly at the limit is fine", func(t *testing.T) {
		t.Parallel()

		table := NewTable(records, Options{Template: smsTemplate})
		stats := domain.DailyStats{SMS: domain.ChannelStats{Requested: 7}}
		require.NoError(t, table.Verdict(Policy{Service: svc, Stats: stats}))
	})

	t.Run("letters are exempt", func(t *testing.T) {
		t.Parallel()

		letter := domain.Template{Type: domain.TypeLetter}
		table := NewTable([][]string{
			{"address line 1", "address line 2", "postcode"},
			{"Mr Smith", "1 Example Street", "XM4 5HQ"},
		}, Options{Template: letter})
		letterSvc := openService()
		letterSvc.MessageLimit = 1
		stats := domain.DailyStats{Letter: domain.ChannelStats{Requested: 5}}
		require.NoError(t, table.Verdict(Policy{Service: letterSvc, Stats: stats}))
	})
}

func TestPreviewTruncation(t *testing.T) {
	t.Parallel()

	records := [][]string{{"phone number", "name"}}
	for i := 0; i < 53; i++ {
		records = append(records, []string{"07700 900321", fmt.Sprintf("person %d", i)})
	}
	table := NewTable(records, Options{Template: smsTemplate})

	p := table.Preview(50)
	require.Len(t, p.Rows, 50)
	require.True(t, p.Truncated)
	require.Equal(t, 53, p.TotalRows)
	require.Equal(t, 2, p.Rows[0].Index)
	require.Equal(t, 51, p.Rows[49].Index)

	// validation still covered every row
	require.NoError(t, table.Verdict(Policy{Service: openService()}))
}

func TestDuplicateColumnsCollate(t *testing.T) {
	t.Parallel()

	table := NewTable([][]string{
		{"phone number", "name", "Name"},
		{"07700 900321", "Jo", "Sam"},
	}, Options{Template: smsTemplate})

	require.Equal(t, "Jo", table.Rows[0].Get("name"))
	require.Equal(t, []string{"Jo", "Sam"}, table.Rows[0].Cells["name"])

	p := table.Preview(50)
	require.Equal(t, []string{"phone number", "name"}, p.Headers)
}
