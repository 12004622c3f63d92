package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func TestNew_RegistersAndObserves(t *testing.T) {
	reg := prometheus.NewRegistry()
	k := New(reg)

	k.ObserveAppend("workspace", 3)
	k.ObserveCommand("CreateWorkspace", 2*time.Millisecond, "")
	k.ObserveCommand("DelegateDecisionRight", time.Millisecond, "VAL_TTL_EXCEEDS_MAXIMUM")
	k.ObserveReflexEvent("DelegationExpired")
	k.DelegationGini.Set(0.42)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	require.InDelta(t, 0.42, gaugeValue(t, k.DelegationGini), 0.0001)
}
