package logparse

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"time"
)

var sampleRequests = []string{
	"GET /index.html HTTP/1.1",
	"POST /form HTTP/1.1",
	"GET /style.css HTTP/1.1",
}

var sampleStatuses = []int{200, 404, 500}

// Generate writes n synthetic access-log lines to w, one per line, in the
// format ParseLine accepts. Useful for seeding the parser in development.
func Generate(w io.Writer, n int) error {
	bw := bufio.NewWriter(w)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	span := int64(end.Sub(start) / time.Second)

	for i := 0; i < n; i++ {
		ip := fmt.Sprintf("%d.%d.%d.%d",
			rand.Intn(256), rand.Intn(256), rand.Intn(256), rand.Intn(256))
		date := start.Add(time.Duration(rand.Int63n(span)) * time.Second)
		request := sampleRequests[rand.Intn(len(sampleRequests))]
		status := sampleStatuses[rand.Intn(len(sampleStatuses))]
		size := 200 + rand.Intn(1801)

		line := fmt.Sprintf("%s - - [%s +0000] %q %d %d\n",
			ip, date.Format(timeLayout), request, status, size)
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}

	return bw.Flush()
}
