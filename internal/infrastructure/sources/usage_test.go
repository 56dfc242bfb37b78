package sources

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageFeedParse(t *testing.T) {
	reader := NewUsageFeedReader("unused", ",")

	t.Run("parses rows and keeps extra columns as properties", func(t *testing.T) {
		feed := strings.Join([]string{
			"email,event_name,timestamp,plan",
			"jane@acme.com,search,2026-08-01T10:00:00Z,pro",
			"bob@acme.com,export,2026-08-02 09:30:00,free",
		}, "\n")

		events, err := reader.parse(context.Background(), strings.NewReader(feed))
		require.NoError(t, err)
		require.Len(t, events, 2)

		assert.Equal(t, "jane@acme.com", events[0].Email)
		assert.Equal(t, "search", events[0].EventName)
		assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), events[0].Timestamp)
		assert.Equal(t, map[string]string{"plan": "pro"}, events[0].Properties)

		assert.Equal(t, time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC), events[1].Timestamp, "space-delimited layout accepted")
	})

	t.Run("rows missing email or event name are dropped silently", func(t *testing.T) {
		feed := strings.Join([]string{
			"email,event_name,timestamp",
			",search,2026-08-01T10:00:00Z",
			"jane@acme.com,,2026-08-01T10:00:00Z",
			"jane@acme.com,search,not-a-date",
			"jane@acme.com,search,2026-08-01T10:00:00Z",
		}, "\n")

		events, err := reader.parse(context.Background(), strings.NewReader(feed))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "jane@acme.com", events[0].Email)
	})

	t.Run("identity key defaults to the first column", func(t *testing.T) {
		feed := strings.Join([]string{
			"user_id,event_name,timestamp",
			"jane@acme.com,search,2026-08-01T10:00:00Z",
		}, "\n")

		events, err := reader.parse(context.Background(), strings.NewReader(feed))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "jane@acme.com", events[0].Email)
	})

	t.Run("header without event or timestamp column is an error", func(t *testing.T) {
		feed := "email,something\njane@acme.com,x"
		_, err := reader.parse(context.Background(), strings.NewReader(feed))
		assert.Error(t, err)
	})
}

func TestUsageFeedDelimiter(t *testing.T) {
	reader := NewUsageFeedReader("unused", ";")
	feed := "email;event_name;timestamp\njane@acme.com;search;2026-08-01T10:00:00Z"

	events, err := reader.parse(context.Background(), strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "search", events[0].EventName)
}
