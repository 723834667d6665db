// Package publish uploads the food database to S3-compatible object storage
// so that static sites and other consumers can fetch it.
//
// The Client interface covers the few MinIO calls used here and is mocked in
// publish/mocks for tests.
package publish
