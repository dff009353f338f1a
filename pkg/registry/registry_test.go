package registry

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	port      int
	listenErr error
	gate      chan struct{}

	listens atomic.Int32
	closes  atomic.Int32
}

func (s *fakeSink) Listen(ctx context.Context, port int) error {
	s.listens.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	s.port = port
	return s.listenErr
}

func (s *fakeSink) NotifyClients([]string) {}

func (s *fakeSink) Close(context.Context) error {
	s.closes.Add(1)
	return nil
}

func TestAcquireOrCreateReusesSink(t *testing.T) {
	r := New()
	ctx := context.Background()

	var built []*fakeSink
	factory := func(port int) Sink {
		s := &fakeSink{}
		built = append(built, s)
		return s
	}

	first, created, err := r.AcquireOrCreate(ctx, 35729, factory)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := r.AcquireOrCreate(ctx, 35729, factory)
	require.NoError(t, err)
	assert.False(t, created)

	assert.Same(t, first, second)
	require.Len(t, built, 1)
	assert.Equal(t, int32(1), built[0].listens.Load())
	assert.Equal(t, 35729, built[0].port)
}

func TestAcquireOrCreateDistinctPorts(t *testing.T) {
	r := New()
	ctx := context.Background()
	factory := func(int) Sink { return &fakeSink{} }

	a, _, err := r.AcquireOrCreate(ctx, 4000, factory)
	require.NoError(t, err)
	b, _, err := r.AcquireOrCreate(ctx, 4001, factory)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, []int{4000, 4001}, r.Ports())
}

func TestAcquireOrCreateConcurrent(t *testing.T) {
	r := New()
	gate := make(chan struct{})
	var factoryCalls atomic.Int32
	sink := &fakeSink{gate: gate}

	factory := func(int) Sink {
		factoryCalls.Add(1)
		return sink
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]Sink, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = r.AcquireOrCreate(context.Background(), 5000, factory)
		}(i)
	}

	// Let every caller reach the registry before the listen completes.
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), factoryCalls.Load())
	assert.Equal(t, int32(1), sink.listens.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, sink, results[i])
	}
}

func TestAcquireOrCreateListenFailure(t *testing.T) {
	r := New()
	ctx := context.Background()
	bindErr := errors.New("address already in use")

	failing := func(int) Sink { return &fakeSink{listenErr: bindErr} }
	_, created, err := r.AcquireOrCreate(ctx, 6000, failing)
	assert.True(t, created)
	assert.ErrorIs(t, err, bindErr)

	assert.Empty(t, r.Ports())

	// A later caller can try again.
	healthy := &fakeSink{}
	got, created, err := r.AcquireOrCreate(ctx, 6000, func(int) Sink { return healthy })
	require.NoError(t, err)
	assert.True(t, created)
	assert.Same(t, healthy, got)
}

func TestAcquireOrCreateWaiterSeesFailure(t *testing.T) {
	r := New()
	gate := make(chan struct{})
	bindErr := errors.New("bind failed")
	sink := &fakeSink{gate: gate, listenErr: bindErr}

	creatorErr := make(chan error, 1)
	go func() {
		_, _, err := r.AcquireOrCreate(context.Background(), 6001, func(int) Sink { return sink })
		creatorErr <- err
	}()

	// Wait for the creator to register the entry.
	require.Eventually(t, func() bool { return len(r.Ports()) == 1 }, time.Second, time.Millisecond)

	waiterErr := make(chan error, 1)
	go func() {
		_, _, err := r.AcquireOrCreate(context.Background(), 6001, func(int) Sink {
			return &fakeSink{listenErr: bindErr}
		})
		waiterErr <- err
	}()

	time.Sleep(10 * time.Millisecond)
	close(gate)

	assert.ErrorIs(t, <-creatorErr, bindErr)
	assert.ErrorIs(t, <-waiterErr, bindErr)
	assert.Equal(t, int32(1), sink.listens.Load())
}

func TestAcquireOrCreateWaiterContext(t *testing.T) {
	r := New()
	gate := make(chan struct{})
	defer close(gate)

	go func() {
		_, _, _ = r.AcquireOrCreate(context.Background(), 6002, func(int) Sink { return &fakeSink{gate: gate} })
	}()
	require.Eventually(t, func() bool { return len(r.Ports()) == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := r.AcquireOrCreate(ctx, 6002, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAcquireOrCreateValidation(t *testing.T) {
	r := New()
	ctx := context.Background()

	for _, port := range []int{0, -1, 70000} {
		_, _, err := r.AcquireOrCreate(ctx, port, func(int) Sink { return &fakeSink{} })
		assert.ErrorIs(t, err, ErrInvalidPort, "port %d", port)
	}

	_, _, err := r.AcquireOrCreate(ctx, 7000, nil)
	assert.ErrorIs(t, err, ErrNilFactory)
}

func TestClose(t *testing.T) {
	r := New()
	ctx := context.Background()
	sink := &fakeSink{}

	_, _, err := r.AcquireOrCreate(ctx, 8000, func(int) Sink { return sink })
	require.NoError(t, err)

	require.NoError(t, r.Close(ctx))
	assert.Equal(t, int32(1), sink.closes.Load())
	assert.Empty(t, r.Ports())
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestFreePortResolverPrefersRequested(t *testing.T) {
	ctx := context.Background()
	resolver := FreePortResolver{Host: "127.0.0.1"}

	// Find a port that is free right now.
	free, err := resolver.Resolve(ctx, 0)
	require.NoError(t, err)
	require.NotZero(t, free)

	got, err := resolver.Resolve(ctx, free)
	require.NoError(t, err)
	assert.Equal(t, free, got)
}

func TestFreePortResolverFallsBack(t *testing.T) {
	ctx := context.Background()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close() // nolint:errcheck
	busy := ln.Addr().(*net.TCPAddr).Port

	got, err := FreePortResolver{Host: "127.0.0.1"}.Resolve(ctx, busy)
	require.NoError(t, err)
	assert.NotEqual(t, busy, got)
	assert.NotZero(t, got)
}
