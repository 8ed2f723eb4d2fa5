package mock

//go:generate mockgen -package mock -destination aliases.go github.com/buildbarn/bb-event-sink/internal/mock/aliases WriteCloser
//go:generate mockgen -package mock -destination clock.go github.com/buildbarn/bb-event-sink/pkg/clock Clock,Ticker,Timer
//go:generate mockgen -package mock -destination cloud_aws.go github.com/buildbarn/bb-event-sink/pkg/cloud/aws S3Client
//go:generate mockgen -package mock -destination cloud_gcp.go github.com/buildbarn/bb-event-sink/pkg/cloud/gcp StorageBucketHandle,StorageClient,StorageObjectHandle
//go:generate mockgen -package mock -destination ingestion.go github.com/buildbarn/bb-event-sink/pkg/ingestion Pusher
//go:generate mockgen -package mock -destination objectstore.go github.com/buildbarn/bb-event-sink/pkg/objectstore BucketClient
//go:generate mockgen -package mock -destination random.go github.com/buildbarn/bb-event-sink/pkg/random ThreadSafeGenerator
//go:generate mockgen -package mock -destination sharding.go github.com/buildbarn/bb-event-sink/pkg/sharding ShardResolver
//go:generate mockgen -package mock -destination util.go github.com/buildbarn/bb-event-sink/pkg/util ErrorLogger
