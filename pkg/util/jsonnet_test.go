package util_test

import (
	"testing"

	"github.com/buildbarn/bb-event-sink/pkg/testutil"
	"github.com/buildbarn/bb-event-sink/pkg/util"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type exampleConfiguration struct {
	ListenAddress string `json:"listenAddress"`
	ShardCount    int    `json:"shardCount"`
}

func TestUnmarshalConfigurationFromJsonnet(t *testing.T) {
	t.Run("ExternalVariables", func(t *testing.T) {
		var configuration exampleConfiguration
		require.NoError(t, util.UnmarshalConfigurationFromJsonnet(
			"example.jsonnet",
			`{ listenAddress: std.extVar('LISTEN_ADDRESS'), shardCount: 2 + 3 }`,
			[]string{"LISTEN_ADDRESS=:3333"},
			&configuration))
		require.Equal(t, exampleConfiguration{
			ListenAddress: ":3333",
			ShardCount:    5,
		}, configuration)
	})

	t.Run("UnknownField", func(t *testing.T) {
		var configuration exampleConfiguration
		err := util.UnmarshalConfigurationFromJsonnet(
			"example.jsonnet",
			`{ listenAdress: ':3333' }`,
			nil,
			&configuration)
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("InvalidEnvironment", func(t *testing.T) {
		var configuration exampleConfiguration
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.InvalidArgument, "Invalid environment variable: \"NOVALUE\""),
			util.UnmarshalConfigurationFromJsonnet("example.jsonnet", "{}", []string{"NOVALUE"}, &configuration))
	})

	t.Run("SyntaxError", func(t *testing.T) {
		var configuration exampleConfiguration
		err := util.UnmarshalConfigurationFromJsonnet("example.jsonnet", "{", nil, &configuration)
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("Nil", func(t *testing.T) {
		require.Error(t, util.UnmarshalConfigurationFromJsonnet("example.jsonnet", "{}", nil, nil))
	})
}
