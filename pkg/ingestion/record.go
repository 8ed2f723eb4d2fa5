package ingestion

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/buildbarn/bb-event-sink/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Record as sent by clients. Labels determine the shard to which a
// record is routed, while the content is what ends up being stored.
type Record struct {
	Label   map[string]string `json:"label"`
	Content map[string]string `json:"content"`
}

// Validate that a record contains both of its fields.
func (r *Record) Validate() error {
	if r.Label == nil {
		return status.Error(codes.InvalidArgument, "Record has no label")
	}
	if r.Content == nil {
		return status.Error(codes.InvalidArgument, "Record has no content")
	}
	return nil
}

// RoutingKey converts a set of labels to the key that is used to pick
// a shard. Pairs are concatenated in ascending key order, without any
// delimiter between them. Distinct label sets may therefore yield the
// same routing key, e.g. {"a": "1", "b": "2"} and {"a": "1b=2"}.
func RoutingKey(label map[string]string) string {
	keys := make([]string, 0, len(label))
	for k := range label {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(label[k])
	}
	return sb.String()
}

// Payload converts the content of a record to the bytes that are
// stored. Content is encoded as JSON with keys in sorted order, so that
// the same content always yields the same payload. The encoding never
// contains raw newline characters.
func Payload(content map[string]string) ([]byte, error) {
	payload, err := json.Marshal(content)
	if err != nil {
		return nil, util.StatusWrapWithCode(err, codes.InvalidArgument, "Failed to marshal record content")
	}
	return payload, nil
}
