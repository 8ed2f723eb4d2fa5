package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// RequireEqualStatus asserts that two gRPC statuses are equal. Two
// errors created through status.Error() cannot be compared with
// require.Equal(), as they embed a Protobuf message.
func RequireEqualStatus(t *testing.T, want, got error) {
	t.Helper()
	wantProto := status.Convert(want).Proto()
	gotProto := status.Convert(got).Proto()
	require.Truef(t, proto.Equal(wantProto, gotProto), "Not equal:\nWant: %v\nGot:  %v", want, got)
}

// RequirePrefixedStatus compares that two errors, assumed to be gRPC
// statuses, are the same, except got may have extra trailing
// characters in its message.
func RequirePrefixedStatus(t *testing.T, want, got error) {
	t.Helper()
	require.Truef(t, EqPrefixedStatus(want).Matches(got), "Want status %v to have prefix %v", got, want)
}

type eqStatusMatcher struct {
	status error
}

// EqStatus is a gomock matcher for gRPC status equality. It is
// typically used to match the arguments of ErrorLogger.Log().
func EqStatus(s error) gomock.Matcher {
	return &eqStatusMatcher{
		status: s,
	}
}

func (m *eqStatusMatcher) Matches(got interface{}) bool {
	gotError, ok := got.(error)
	return ok && proto.Equal(status.Convert(m.status).Proto(), status.Convert(gotError).Proto())
}

func (m *eqStatusMatcher) String() string {
	return fmt.Sprintf("is status equal to %v", m.status)
}

type eqPrefixedStatusMatcher struct {
	status error
}

// EqPrefixedStatus is a gomock matcher for gRPC status equality
// allowing trailing characters in the message.
func EqPrefixedStatus(status error) gomock.Matcher {
	return &eqPrefixedStatusMatcher{
		status: status,
	}
}

func (m *eqPrefixedStatusMatcher) Matches(got interface{}) bool {
	gotError, ok := got.(error)
	if !ok {
		return false
	}
	gotStatus := status.Convert(gotError)
	wantStatus := status.Convert(m.status)
	return gotStatus.Code() == wantStatus.Code() &&
		strings.HasPrefix(gotStatus.Message(), wantStatus.Message())
}

func (m *eqPrefixedStatusMatcher) String() string {
	return fmt.Sprintf("is status with prefix %v", m.status)
}
