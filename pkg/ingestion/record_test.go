package ingestion_test

import (
	"testing"

	"github.com/buildbarn/bb-event-sink/pkg/ingestion"
	"github.com/buildbarn/bb-event-sink/pkg/testutil"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRoutingKey(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		require.Equal(t, "", ingestion.RoutingKey(nil))
		require.Equal(t, "", ingestion.RoutingKey(map[string]string{}))
	})

	t.Run("SortedByKey", func(t *testing.T) {
		require.Equal(t, "app=webenv=prodhost=a", ingestion.RoutingKey(map[string]string{
			"host": "a",
			"app":  "web",
			"env":  "prod",
		}))
	})

	t.Run("Collision", func(t *testing.T) {
		// Pairs are not delimited, meaning that distinct label
		// sets may be routed identically.
		require.Equal(
			t,
			ingestion.RoutingKey(map[string]string{"a": "1", "b": "2"}),
			ingestion.RoutingKey(map[string]string{"a": "1b=2"}))
	})
}

func TestPayload(t *testing.T) {
	t.Run("SortedKeys", func(t *testing.T) {
		payload, err := ingestion.Payload(map[string]string{
			"message": "hello",
			"level":   "info",
		})
		require.NoError(t, err)
		require.Equal(t, []byte(`{"level":"info","message":"hello"}`), payload)
	})

	t.Run("NewlinesEscaped", func(t *testing.T) {
		// Payloads must never contain the record separator.
		payload, err := ingestion.Payload(map[string]string{
			"message": "line 1\nline 2",
		})
		require.NoError(t, err)
		require.Equal(t, []byte(`{"message":"line 1\nline 2"}`), payload)
	})

	t.Run("Empty", func(t *testing.T) {
		payload, err := ingestion.Payload(map[string]string{})
		require.NoError(t, err)
		require.Equal(t, []byte("{}"), payload)
	})
}

func TestRecordValidate(t *testing.T) {
	require.NoError(t, (&ingestion.Record{
		Label:   map[string]string{},
		Content: map[string]string{},
	}).Validate())
	testutil.RequireEqualStatus(
		t,
		status.Error(codes.InvalidArgument, "Record has no label"),
		(&ingestion.Record{Content: map[string]string{}}).Validate())
	testutil.RequireEqualStatus(
		t,
		status.Error(codes.InvalidArgument, "Record has no content"),
		(&ingestion.Record{Label: map[string]string{}}).Validate())
}
