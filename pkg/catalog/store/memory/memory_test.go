package memory_test

import (
	"testing"

	"github.com/netdoc/netdoc/pkg/catalog"
	"github.com/netdoc/netdoc/pkg/catalog/store/memory"
	"github.com/netdoc/netdoc/pkg/catalog/storetest"
)

func TestMemoryStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) catalog.Store {
		return memory.New()
	})
}
