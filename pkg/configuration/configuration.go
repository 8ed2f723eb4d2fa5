package configuration

import (
	"time"

	"github.com/buildbarn/bb-event-sink/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ApplicationConfiguration is the top-level configuration of
// bb_event_sink.
type ApplicationConfiguration struct {
	// Address on which records are accepted, e.g. ":3333".
	IngestionListenAddress string `json:"ingestionListenAddress"`

	Sharding      *ShardingConfiguration      `json:"sharding"`
	Flush         *FlushConfiguration         `json:"flush"`
	ObjectStorage *ObjectStorageConfiguration `json:"objectStorage"`
	Global        *GlobalConfiguration        `json:"global"`
}

// ShardingConfiguration controls the consistent hashing ring.
type ShardingConfiguration struct {
	ShardCount        int `json:"shardCount"`
	ReplicationFactor int `json:"replicationFactor"`
}

// FlushConfiguration controls the flush coordinator.
type FlushConfiguration struct {
	Interval       Duration `json:"interval"`
	RetryInterval  Duration `json:"retryInterval"`
	BucketPrefix   string   `json:"bucketPrefix"`
	ChunkSizeBytes int      `json:"chunkSizeBytes"`

	// Whether buffered records are flushed upon shutdown, and how
	// long that may take.
	FlushOnShutdown      bool     `json:"flushOnShutdown"`
	ShutdownFlushTimeout Duration `json:"shutdownFlushTimeout"`
}

// ObjectStorageConfiguration selects the object storage service to
// which buffers are flushed. Exactly one of S3 and GCS must be set.
type ObjectStorageConfiguration struct {
	S3  *S3Configuration  `json:"s3"`
	GCS *GCSConfiguration `json:"gcs"`

	// Compression applied to object bodies. Either "" or "zstd".
	Compression string `json:"compression"`
}

// S3Configuration describes how to connect to an S3 compatible
// service, such as AWS S3 or MinIO.
type S3Configuration struct {
	AWSSession *AWSSessionConfiguration `json:"awsSession"`
}

// AWSSessionConfiguration contains options for the AWS SDK.
type AWSSessionConfiguration struct {
	Region            string                `json:"region"`
	Endpoint          string                `json:"endpoint"`
	ForcePathStyle    bool                  `json:"forcePathStyle"`
	StaticCredentials *AWSStaticCredentials `json:"staticCredentials"`
}

// AWSStaticCredentials is a fixed access key.
type AWSStaticCredentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
}

// GCSConfiguration describes how to connect to Google Cloud Storage.
type GCSConfiguration struct {
	ProjectID string `json:"projectId"`
	// Path of a service account key. Application default
	// credentials are used if left empty.
	CredentialsFile string `json:"credentialsFile"`
	// Overrides the API endpoint, e.g. for use with an emulator.
	Endpoint string `json:"endpoint"`
}

// GlobalConfiguration contains options that apply to the process as a
// whole.
type GlobalConfiguration struct {
	DiagnosticsHTTPServer *DiagnosticsHTTPServerConfiguration `json:"diagnosticsHttpServer"`
	Tracing               *TracingConfiguration               `json:"tracing"`
}

// DiagnosticsHTTPServerConfiguration controls the web server exposing
// health checks, Prometheus metrics and pprof.
type DiagnosticsHTTPServerConfiguration struct {
	ListenAddress    string `json:"listenAddress"`
	EnablePrometheus bool   `json:"enablePrometheus"`
	EnablePprof      bool   `json:"enablePprof"`
}

// TracingConfiguration controls OpenTelemetry tracing.
type TracingConfiguration struct {
	// Fraction of traces that is sampled, in range [0, 1].
	SampleRatio float64 `json:"sampleRatio"`
	// If set, sample no more than this number of root traces per
	// second, instead of using SampleRatio.
	MaximumSamplesPerSecond int64 `json:"maximumSamplesPerSecond"`
	// Whether finished spans are written to standard error.
	EnableStderrExporter bool `json:"enableStderrExporter"`
}

// GetApplicationConfiguration reads a Jsonnet configuration file,
// fills in default values and validates it.
func GetApplicationConfiguration(path string) (*ApplicationConfiguration, error) {
	var configuration ApplicationConfiguration
	if err := util.UnmarshalConfigurationFromFile(path, &configuration); err != nil {
		return nil, err
	}
	setDefaultApplicationValues(&configuration)
	if err := validateApplicationConfiguration(&configuration); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func setDefaultApplicationValues(configuration *ApplicationConfiguration) {
	if configuration.IngestionListenAddress == "" {
		configuration.IngestionListenAddress = ":3333"
	}
	if configuration.Sharding == nil {
		configuration.Sharding = &ShardingConfiguration{}
	}
	if configuration.Sharding.ShardCount == 0 {
		configuration.Sharding.ShardCount = 5
	}
	if configuration.Sharding.ReplicationFactor == 0 {
		configuration.Sharding.ReplicationFactor = 10
	}
	if configuration.Flush == nil {
		configuration.Flush = &FlushConfiguration{}
	}
	if configuration.Flush.Interval == 0 {
		configuration.Flush.Interval = Duration(300 * time.Second)
	}
	if configuration.Flush.RetryInterval == 0 {
		configuration.Flush.RetryInterval = Duration(time.Second)
	}
	if configuration.Flush.BucketPrefix == "" {
		configuration.Flush.BucketPrefix = "hash"
	}
	if configuration.Flush.ChunkSizeBytes == 0 {
		configuration.Flush.ChunkSizeBytes = 10000
	}
	if configuration.Flush.ShutdownFlushTimeout == 0 {
		configuration.Flush.ShutdownFlushTimeout = Duration(30 * time.Second)
	}
	if configuration.Global == nil {
		configuration.Global = &GlobalConfiguration{}
	}
}

func validateApplicationConfiguration(configuration *ApplicationConfiguration) error {
	if configuration.Sharding.ShardCount < 0 {
		return status.Errorf(codes.InvalidArgument, "Invalid shard count: %d", configuration.Sharding.ShardCount)
	}
	if configuration.Sharding.ReplicationFactor < 0 {
		return status.Errorf(codes.InvalidArgument, "Invalid replication factor: %d", configuration.Sharding.ReplicationFactor)
	}
	if configuration.Flush.Interval < 0 || configuration.Flush.RetryInterval < 0 || configuration.Flush.ShutdownFlushTimeout < 0 {
		return status.Error(codes.InvalidArgument, "Flush intervals must be positive")
	}
	if configuration.Flush.ChunkSizeBytes < 0 {
		return status.Errorf(codes.InvalidArgument, "Invalid chunk size: %d bytes", configuration.Flush.ChunkSizeBytes)
	}
	objectStorage := configuration.ObjectStorage
	if objectStorage == nil || (objectStorage.S3 == nil) == (objectStorage.GCS == nil) {
		return status.Error(codes.InvalidArgument, "Exactly one object storage backend must be configured")
	}
	if objectStorage.S3 != nil && objectStorage.S3.AWSSession == nil {
		return status.Error(codes.InvalidArgument, "S3 configuration has no AWS session configuration")
	}
	switch objectStorage.Compression {
	case "", "zstd":
	default:
		return status.Errorf(codes.InvalidArgument, "Unknown compression algorithm: %#v", objectStorage.Compression)
	}
	if tracing := configuration.Global.Tracing; tracing != nil {
		if tracing.SampleRatio < 0 || tracing.SampleRatio > 1 {
			return status.Errorf(codes.InvalidArgument, "Trace sample ratio must be in range [0, 1], while %g was provided", tracing.SampleRatio)
		}
	}
	return nil
}
