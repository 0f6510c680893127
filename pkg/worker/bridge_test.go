package worker_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain/ledger-api/pkg/circuitbreaker"
	"github.com/medichain/ledger-api/pkg/logger"
	"github.com/medichain/ledger-api/pkg/messaging"
	"github.com/medichain/ledger-api/pkg/metrics"
	"github.com/medichain/ledger-api/pkg/payment"
	"github.com/medichain/ledger-api/pkg/worker"
)

type fakeExecutor struct {
	mu      sync.Mutex
	calls   []payment.TransferRequest
	success bool
	reason  string
	err     error
}

func (f *fakeExecutor) Execute(ctx context.Context, req payment.TransferRequest) (payment.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return payment.Result{}, f.err
	}
	return payment.Result{
		OrderID: req.OrderID,
		Ref:     req.Ref,
		Success: f.success,
		Reason:  f.reason,
	}, nil
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeResultSink struct {
	mu        sync.Mutex
	published []payment.Result
}

func (f *fakeResultSink) Publish(ctx context.Context, channel string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if channel != messaging.ChannelTransferResults {
		return nil
	}
	if res, ok := message.(payment.Result); ok {
		f.published = append(f.published, res)
	}
	return nil
}

func (f *fakeResultSink) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeResultSink) Close() error { return nil }

func (f *fakeResultSink) results() []payment.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]payment.Result(nil), f.published...)
}

func newBridge(t *testing.T, executor payment.Executor, sink *fakeResultSink, maxFailures int) *worker.TransferBridge {
	t.Helper()
	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "payment-test",
		MaxFailures: maxFailures,
		Timeout:     time.Hour,
	})
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "ledger", "bridgetest")
	return worker.NewTransferBridge(executor, sink, breaker, log, m)
}

func runBridge(t *testing.T, b *worker.TransferBridge, reqs ...payment.TransferRequest) {
	t.Helper()
	requests := make(chan payment.TransferRequest, len(reqs))
	for _, r := range reqs {
		requests <- r
	}
	close(requests)
	b.Run(context.Background(), requests)
}

func TestBridgePublishesSuccessResult(t *testing.T) {
	executor := &fakeExecutor{success: true}
	sink := &fakeResultSink{}
	b := newBridge(t, executor, sink, 5)

	runBridge(t, b, payment.TransferRequest{OrderID: 1, Ref: "ref-1", To: "admin", Amount: 180})

	results := sink.results()
	require.Len(t, results, 1)
	assert.Equal(t, uint64(1), results[0].OrderID)
	assert.Equal(t, "ref-1", results[0].Ref)
	assert.True(t, results[0].Success)
}

func TestBridgePublishesDecline(t *testing.T) {
	executor := &fakeExecutor{success: false, reason: "insufficient funds"}
	sink := &fakeResultSink{}
	b := newBridge(t, executor, sink, 5)

	runBridge(t, b, payment.TransferRequest{OrderID: 2, Ref: "ref-2", To: "admin", Amount: 90})

	results := sink.results()
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, "insufficient funds", results[0].Reason)
}

func TestBridgeSkipsResultOnExecutionError(t *testing.T) {
	executor := &fakeExecutor{err: assert.AnError}
	sink := &fakeResultSink{}
	b := newBridge(t, executor, sink, 5)

	runBridge(t, b, payment.TransferRequest{OrderID: 3, Ref: "ref-3", To: "admin", Amount: 50})

	assert.Empty(t, sink.results())
	assert.Equal(t, 1, executor.callCount())
}

func TestBridgeBreakerShortCircuits(t *testing.T) {
	executor := &fakeExecutor{err: assert.AnError}
	sink := &fakeResultSink{}
	b := newBridge(t, executor, sink, 2)

	reqs := make([]payment.TransferRequest, 5)
	for i := range reqs {
		reqs[i] = payment.TransferRequest{OrderID: uint64(i + 1), Ref: "ref", To: "admin", Amount: 10}
	}
	runBridge(t, b, reqs...)

	// After two consecutive failures the breaker opens and the executor is
	// no longer reached.
	assert.Equal(t, 2, executor.callCount())
	assert.Empty(t, sink.results())
}

func TestBridgeStopsOnContextCancel(t *testing.T) {
	executor := &fakeExecutor{success: true}
	sink := &fakeResultSink{}
	b := newBridge(t, executor, sink, 5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, make(chan payment.TransferRequest))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bridge did not stop on context cancel")
	}
}
