package gcp

import (
	"github.com/buildbarn/bb-event-sink/pkg/configuration"

	"google.golang.org/api/option"
)

// NewClientOptionsFromConfiguration creates a list of Google Cloud SDK
// client options based on options specified in a configuration
// message. The resulting client options can be used to access GCS.
func NewClientOptionsFromConfiguration(configuration *configuration.GCSConfiguration) []option.ClientOption {
	var clientOptions []option.ClientOption
	if credentialsFile := configuration.CredentialsFile; credentialsFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credentialsFile))
	}
	if endpoint := configuration.Endpoint; endpoint != "" {
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	return clientOptions
}
