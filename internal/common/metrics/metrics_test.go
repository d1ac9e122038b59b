package metrics

import (
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterActiveInterviews_ReadsOnScrape(t *testing.T) {
	var n int64 = 3
	gauge := RegisterActiveInterviews(func() float64 { return float64(atomic.LoadInt64(&n)) })

	assert.Equal(t, 3.0, testutil.ToFloat64(gauge))

	atomic.StoreInt64(&n, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(gauge))
}

func TestChatTurnsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(ChatTurns.WithLabelValues("chat"))
	ChatTurns.WithLabelValues("chat").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ChatTurns.WithLabelValues("chat")))
}
