package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/netdoc/netdoc/pkg/metrics"
)

func TestNewCoordinatorRegistersWithoutPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCoordinator(reg)
	require := assert.New(t)

	m.LocksHeld.Set(3)
	m.RequestsTotal.WithLabelValues("CREATE", "success").Inc()

	families, err := reg.Gather()
	require.NoError(err)
	require.NotEmpty(families)
}

func TestNewStorageNodeRegistersWithoutPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewStorageNode(reg)

	m.BytesWritten.Add(128)
	m.BlobCount.Set(1)

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
