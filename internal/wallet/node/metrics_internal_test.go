package node

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	const method = "eth_testMethod"

	okBefore := testutil.ToFloat64(requestsTotal.WithLabelValues(method, statusOK))
	errBefore := testutil.ToFloat64(requestsTotal.WithLabelValues(method, statusError))

	observe(method)(nil)
	observe(method)(nil)
	observe(method)(errors.New("boom"))

	assert.InDelta(t, okBefore+2, testutil.ToFloat64(requestsTotal.WithLabelValues(method, statusOK)), 0)
	assert.InDelta(t, errBefore+1, testutil.ToFloat64(requestsTotal.WithLabelValues(method, statusError)), 0)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(requestDuration, "ethwallet_node_request_duration_seconds"), 1)
}
