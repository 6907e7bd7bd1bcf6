package logparse

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	t.Run("common log format", func(t *testing.T) {
		entry, err := ParseLine(`127.0.0.1 - frank [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326`)
		require.NoError(t, err)

		require.Equal(t, "127.0.0.1", entry.IP)
		require.Equal(t, time.Date(2000, 10, 10, 13, 55, 36, 0, time.UTC), entry.Date)
		require.Equal(t, "GET /apache_pb.gif HTTP/1.0", entry.Request)
		require.Equal(t, 200, entry.Status)
		require.EqualValues(t, 2326, entry.Size)
	})

	t.Run("dash size means empty body", func(t *testing.T) {
		entry, err := ParseLine(`10.0.0.1 - - [10/Oct/2000:13:55:36 +0000] "GET / HTTP/1.1" 304 -`)
		require.NoError(t, err)
		require.EqualValues(t, 0, entry.Size)
	})

	t.Run("malformed lines", func(t *testing.T) {
		for _, line := range []string{
			"",
			"not a log line",
			`10.0.0.1 - - [not/a/date:aa:bb:cc +0000] "GET / HTTP/1.1" 200 100`,
			`10.0.0.1 - - [10/Oct/2000:13:55:36 +0000] "GET / HTTP/1.1" abc 100`,
		} {
			_, err := ParseLine(line)
			require.Error(t, err, "line: %q", line)
		}
	})
}

func TestParseReader(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`10.0.0.1 - - [10/Oct/2000:13:55:36 +0000] "GET /a HTTP/1.1" 200 100`,
		"garbage line",
		"",
		`10.0.0.2 - - [11/Oct/2000:09:00:00 +0000] "POST /b HTTP/1.1" 404 50`,
	}, "\n")

	entries, skipped, err := ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 1, skipped)
	require.Equal(t, "10.0.0.2", entries[1].IP)
}

func TestGenerateRoundTrips(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, 25))

	entries, skipped, err := ParseReader(&buf)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Len(t, entries, 25)
}
