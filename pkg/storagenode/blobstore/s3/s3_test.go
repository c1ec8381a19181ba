package s3

import (
	"testing"

	"github.com/netdoc/netdoc/pkg/storagenode/blobstore"
)

// The s3 package is not run against the blobstore.Store conformance
// suite in this repository: that needs a real or LocalStack-backed
// bucket, and hitting a live HeadBucket call from a package test would
// make every `go test ./...` run depend on network/credentials being
// present. This file only checks at compile time that *Store satisfies
// blobstore.Store.
var _ blobstore.Store = (*Store)(nil)
