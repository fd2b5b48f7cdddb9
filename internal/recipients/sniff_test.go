package recipients

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	_, err := Detect("cat.png", []byte("\x89PNG\r\n\x1a\n123456"))
	require.EqualError(t, err, "cat.png isn't a spreadsheet that Notify can read")

	format, err := Detect("list.csv", []byte("phone number\r\n07700 900321\r\n"))
	require.NoError(t, err)
	require.Equal(t, FormatCSV, format)

	// an empty upload still parses; the check page reports the missing rows
	format, err = Detect("empty.csv", nil)
	require.NoError(t, err)
	require.Equal(t, FormatCSV, format)

	format, err = Detect("list.xls", xlsHeader())
	require.NoError(t, err)
	require.Equal(t, FormatXLS, format)

	format, err = Detect("list.ods", odsHeader())
	require.NoError(t, err)
	require.Equal(t, FormatODS, format)
}

// xlsHeader is an OLE compound document with a BIFF8 workbook stream start,
// enough for content sniffing but not a parseable file.
func xlsHeader() []byte {
	b := make([]byte, 520)
	copy(b, "\xD0\xCF\x11\xE0\xA1\xB1\x1A\xE1")
	copy(b[512:], "\x09\x08\x10\x00\x00\x06\x05\x00")
	return b
}

// odsHeader is a zip local file header whose first entry is the ODF mimetype
// marker.
func odsHeader() []byte {
	b := make([]byte, 30)
	copy(b, "PK\x03\x04")
	return append(b, "mimetypeapplication/vnd.oasis.opendocument.spreadsheet"...)
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("strips the BOM and trims cells", func(t *testing.T) {
		t.Parallel()

		data := []byte("\xEF\xBB\xBFphone number, name\r\n 07700 900321 ,Jo\r\n")
		records, err := Parse("list.csv", data)
		require.NoError(t, err)
		require.Equal(t, [][]string{
			{"phone number", "name"},
			{"07700 900321", "Jo"},
		}, records)
	})

	t.Run("drops fully empty rows", func(t *testing.T) {
		t.Parallel()

		records, err := Parse("list.csv", []byte("phone number\n07700 900321\n,\n  \n"))
		require.NoError(t, err)
		require.Len(t, records, 2)
	})

	t.Run("ragged rows are kept", func(t *testing.T) {
		t.Parallel()

		records, err := Parse("list.csv", []byte("phone number,name\n07700 900321\n"))
		require.NoError(t, err)
		require.Equal(t, []string{"07700 900321"}, records[1])
	})

	t.Run("a truncated xls is unreadable, not a 500", func(t *testing.T) {
		t.Parallel()

		_, err := Parse("list.xls", xlsHeader())
		require.EqualError(t, err, "list.xls isn't a spreadsheet that Notify can read")
	})

	t.Run("a truncated ods is unreadable, not a 500", func(t *testing.T) {
		t.Parallel()

		_, err := Parse("list.ods", odsHeader())
		require.EqualError(t, err, "list.ods isn't a spreadsheet that Notify can read")
	})
}

func TestToCSV(t *testing.T) {
	t.Parallel()

	got := ToCSV([][]string{{"phone number"}, {"07700 900321"}})
	require.Equal(t, "phone number\r\n07700 900321\r\n", got)
}
