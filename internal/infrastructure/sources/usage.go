package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
)

// Column headers recognised in the usage feed. The first column is the
// identity key by convention when no email header is present.
const (
	headerEmail     = "email"
	headerEvent     = "event_name"
	headerTimestamp = "timestamp"
)

// UsageFeedReader parses the delimited usage event feed
type UsageFeedReader struct {
	path      string
	delimiter rune
}

// NewUsageFeedReader creates a reader for the usage event feed at path
func NewUsageFeedReader(path, delimiter string) *UsageFeedReader {
	delim := ','
	if delimiter != "" {
		delim = rune(delimiter[0])
	}
	return &UsageFeedReader{path: path, delimiter: delim}
}

// FetchEvents parses the feed into raw usage events. Rows missing an email
// or event name are dropped silently, as are rows with an unparseable
// timestamp.
func (r *UsageFeedReader) FetchEvents(ctx context.Context) ([]entities.RawUsageEvent, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage feed %s: %w", r.path, err)
	}
	defer file.Close()

	return r.parse(ctx, file)
}

func (r *UsageFeedReader) parse(ctx context.Context, src io.Reader) ([]entities.RawUsageEvent, error) {
	reader := csv.NewReader(src)
	reader.Comma = r.delimiter
	reader.FieldsPerRecord = -1 // tolerate ragged rows, validation happens per field

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read usage feed header: %w", err)
	}

	emailIdx, eventIdx, timeIdx := resolveColumns(header)
	if eventIdx < 0 || timeIdx < 0 {
		return nil, fmt.Errorf("usage feed header missing required columns: %v", header)
	}

	var events []entities.RawUsageEvent
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // malformed row, skip
		}

		email := fieldAt(row, emailIdx)
		eventName := fieldAt(row, eventIdx)
		if strings.TrimSpace(email) == "" || strings.TrimSpace(eventName) == "" {
			continue
		}

		timestamp, err := parseEventTime(fieldAt(row, timeIdx))
		if err != nil {
			continue
		}

		properties := make(map[string]string)
		for i, value := range row {
			if i == emailIdx || i == eventIdx || i == timeIdx || i >= len(header) {
				continue
			}
			properties[header[i]] = value
		}

		events = append(events, entities.RawUsageEvent{
			Email:      email,
			EventName:  eventName,
			Timestamp:  timestamp,
			Properties: properties,
		})
	}

	return events, nil
}

// resolveColumns maps header names to column indices. The identity key
// defaults to the first column when no email header exists.
func resolveColumns(header []string) (emailIdx, eventIdx, timeIdx int) {
	emailIdx, eventIdx, timeIdx = 0, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case headerEmail, "user_email", "user":
			emailIdx = i
		case headerEvent, "event":
			eventIdx = i
		case headerTimestamp, "ts", "event_time":
			timeIdx = i
		}
	}
	return emailIdx, eventIdx, timeIdx
}

func fieldAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseEventTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range eventTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
