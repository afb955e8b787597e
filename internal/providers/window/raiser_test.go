package window

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingSearcher reports ids then blocks until cancelled, like
// "xdotool search --sync" for a window that never appears.
type blockingSearcher struct {
	ids []string
	err error
}

func (s *blockingSearcher) SearchWindows(ctx context.Context, pid int, found func(string)) error {
	for _, id := range s.ids {
		found(id)
	}
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return ctx.Err()
}

type recordingActivator struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (a *recordingActivator) ActivateWindow(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.ids = append(a.ids, id)
	return nil
}

func (a *recordingActivator) activated() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.ids...)
}

type countingObserver struct {
	activated atomic.Int32
	failed    atomic.Int32
}

func (o *countingObserver) WindowActivated()    { o.activated.Add(1) }
func (o *countingObserver) WindowSearchFailed() { o.failed.Add(1) }

func TestRaiseActivatesEveryWindow(t *testing.T) {
	activator := &recordingActivator{}
	observer := &countingObserver{}
	raiser := NewRaiser(&blockingSearcher{ids: []string{"1", "2"}}, activator, observer, nil)

	task := raiser.Raise(42)
	require.Eventually(t, func() bool { return len(activator.activated()) == 2 }, time.Second, time.Millisecond)

	task.Cancel()
	assert.Equal(t, []string{"1", "2"}, activator.activated())
	assert.EqualValues(t, 2, observer.activated.Load())
	assert.NoError(t, task.Err())
}

func TestCancelStopsBlockedSearch(t *testing.T) {
	raiser := NewRaiser(&blockingSearcher{}, &recordingActivator{}, nil, nil)
	task := raiser.Raise(42)

	task.Cancel()

	select {
	case <-task.Done():
	default:
		t.Fatal("task still running after Cancel")
	}
	assert.NoError(t, task.Err())
	task.Cancel()
}

func TestSearchFailureIsReported(t *testing.T) {
	observer := &countingObserver{}
	raiser := NewRaiser(&blockingSearcher{err: errors.New("cannot open display")}, &recordingActivator{}, observer, nil)

	task := raiser.Raise(42)
	<-task.Done()

	var searchErr *SearchError
	require.ErrorAs(t, task.Err(), &searchErr)
	assert.Equal(t, 42, searchErr.Pid)
	assert.EqualValues(t, 1, observer.failed.Load())
	task.Cancel()
}

func TestActivationFailureIsNotFatal(t *testing.T) {
	activator := &recordingActivator{err: errors.New("BadWindow")}
	raiser := NewRaiser(&blockingSearcher{ids: []string{"1"}}, activator, nil, nil)

	task := raiser.Raise(42)
	task.Cancel()
	assert.NoError(t, task.Err())
}

// searcherAfterCancel keeps reporting windows after cancellation to check
// that no activation starts once Cancel was requested.
type searcherAfterCancel struct {
	release chan struct{}
}

func (s *searcherAfterCancel) SearchWindows(ctx context.Context, _ int, found func(string)) error {
	<-ctx.Done()
	<-s.release
	found("late")
	return nil
}

func TestNoActivationAfterCancel(t *testing.T) {
	searcher := &searcherAfterCancel{release: make(chan struct{})}
	activator := &recordingActivator{}
	raiser := NewRaiser(searcher, activator, nil, nil)

	task := raiser.Raise(42)
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(searcher.release)
	}()
	task.Cancel()

	assert.Empty(t, activator.activated())
}
