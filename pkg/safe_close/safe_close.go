// Package safe_close coordinates graceful shutdown: goroutines attach
// themselves and are released together when a close signal arrives.
package safe_close

import "sync"

type SafeClose struct {
	mu          sync.Mutex
	wg          sync.WaitGroup
	closeSignal chan struct{}
	closed      bool
	err         error
	doneSignal  chan struct{}
	doneOnce    sync.Once
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
		doneSignal:  make(chan struct{}),
	}
}

// Attach runs f in its own goroutine. f must call done() when finished and
// should begin winding down when closeSignal fires.
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() {
		once.Do(s.wg.Done)
	}
	go f(done, s.closeSignal)
}

// SendCloseSignal asks all attached goroutines to stop. The first non-nil
// err wins.
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.closeSignal)
}

// WaitClosed blocks until every attached goroutine reported done, then
// returns the close reason.
func (s *SafeClose) WaitClosed() error {
	<-s.closeSignal
	s.wg.Wait()
	s.doneOnce.Do(func() { close(s.doneSignal) })
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed after WaitClosed completes.
func (s *SafeClose) Done() <-chan struct{} {
	return s.doneSignal
}
