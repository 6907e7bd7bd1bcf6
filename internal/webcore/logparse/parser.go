// Package logparse reads Apache common-format access logs into structured
// entries for storage and querying.
package logparse

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/altostack/webcore/internal/webcore/domain"
)

// timeLayout matches the bracketed timestamp in Apache common log format,
// e.g. [10/Mar/2024:13:55:36 -0700]. The zone offset is ignored and the
// timestamp stored as UTC, matching how the entries are queried.
const timeLayout = "02/Jan/2006:15:04:05"

// ParseLine parses a single access-log line:
//
//	127.0.0.1 - frank [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326
//
// The remote IP, timestamp, request line, status and response size are kept;
// identd and user fields are ignored.
func ParseLine(line string) (domain.LogEntry, error) {
	fields := strings.Fields(line)
	if len(fields) < 10 {
		return domain.LogEntry{}, fmt.Errorf("logparse: malformed line: %q", line)
	}

	ip := fields[0]

	ts := strings.TrimPrefix(fields[3], "[")
	date, err := time.ParseInLocation(timeLayout, ts, time.UTC)
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("logparse: bad timestamp %q: %w", ts, err)
	}

	request := strings.Trim(strings.Join(fields[5:8], " "), `"`)

	status, err := strconv.Atoi(fields[8])
	if err != nil {
		return domain.LogEntry{}, fmt.Errorf("logparse: bad status %q: %w", fields[8], err)
	}

	size, err := strconv.ParseInt(fields[9], 10, 64)
	if err != nil {
		// A dash means no body was sent.
		if fields[9] == "-" {
			size = 0
		} else {
			return domain.LogEntry{}, fmt.Errorf("logparse: bad size %q: %w", fields[9], err)
		}
	}

	return domain.LogEntry{
		IP:      ip,
		Date:    date.UTC(),
		Request: request,
		Status:  status,
		Size:    size,
	}, nil
}

// ParseReader parses every line from r, returning the entries that parsed
// cleanly and the count of lines that did not.
func ParseReader(r io.Reader) ([]domain.LogEntry, int, error) {
	var (
		entries []domain.LogEntry
		skipped int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := ParseLine(line)
		if err != nil {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return entries, skipped, nil
}
