package configuration

import (
	"encoding/json"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
)

// Duration is a time.Duration that is stored in configuration files
// using the JSON encoding of google.protobuf.Duration, e.g. "300s" or
// "0.250s". Strings accepted by time.ParseDuration(), such as "5m",
// are permitted as well.
type Duration time.Duration

// UnmarshalJSON parses a duration string.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var message durationpb.Duration
	if err := protojson.Unmarshal(b, &message); err == nil {
		if err := message.CheckValid(); err != nil {
			return status.Errorf(codes.InvalidArgument, "Invalid duration: %s", err)
		}
		*d = Duration(message.AsDuration())
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return status.Errorf(codes.InvalidArgument, "Duration must be a string: %s", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "Invalid duration %#v: %s", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalJSON emits the duration in the same format as
// google.protobuf.Duration.
func (d Duration) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(durationpb.New(time.Duration(d)))
}

// AsDuration converts the value back to a time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}
