package badger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netdoc/netdoc/pkg/storagenode/blobstore"
	"github.com/netdoc/netdoc/pkg/storagenode/blobstore/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) blobstore.Store {
		s, err := Open(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
