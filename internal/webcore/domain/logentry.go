package domain

import "time"

// LogEntry is one parsed access-log line.
type LogEntry struct {
	ID      int64
	IP      string
	Date    time.Time
	Request string // e.g. "GET /index.html HTTP/1.1"
	Status  int
	Size    int64
}
