package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRunner is a mock implementation of Runner
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context) (*Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Report), args.Error(1)
}

// TestScheduler_StartStop tests the scheduler start and stop functionality
func TestScheduler_StartStop(t *testing.T) {
	mockRunner := new(MockRunner)
	mockRunner.On("Run", mock.Anything).Return(&Report{}, nil)

	scheduler := NewScheduler(mockRunner, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start scheduler in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(250 * time.Millisecond)

	// Stop scheduler
	scheduler.Stop()
	wg.Wait()

	// Verify Run was called at least once
	mockRunner.AssertCalled(t, "Run", mock.Anything)
}

// TestScheduler_ContextCancellation tests scheduler stops on context cancellation
func TestScheduler_ContextCancellation(t *testing.T) {
	mockRunner := new(MockRunner)
	mockRunner.On("Run", mock.Anything).Return(&Report{}, nil)

	scheduler := NewScheduler(mockRunner, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	// Start scheduler in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(150 * time.Millisecond)

	// Cancel context
	cancel()
	wg.Wait()

	// Verify Run was called
	mockRunner.AssertCalled(t, "Run", mock.Anything)
}

// TestScheduler_RunFailureDoesNotStopLoop tests that a failed pass keeps the scheduler alive
func TestScheduler_RunFailureDoesNotStopLoop(t *testing.T) {
	mockRunner := new(MockRunner)
	mockRunner.On("Run", mock.Anything).Return(nil, errors.New("source unreachable"))

	scheduler := NewScheduler(mockRunner, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Start(ctx)
	}()

	time.Sleep(180 * time.Millisecond)

	scheduler.Stop()
	wg.Wait()

	// At least two ticks fired despite every pass failing
	assert.GreaterOrEqual(t, len(mockRunner.Calls), 2)
}
