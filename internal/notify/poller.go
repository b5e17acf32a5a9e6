// Package notify keeps the unread-notification indicator and the
// notification list consistent with the TaskHub service under polling,
// user actions, and transient failures.
package notify

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskhub/taskhub-cli/internal/api"
	"github.com/taskhub/taskhub-cli/internal/logging"
	"github.com/taskhub/taskhub-cli/internal/model"
)

// CountMsg is a tea.Msg carrying a fresh unread count to the UI.
type CountMsg struct {
	Count int
}

// fetchTimeout bounds a single unread-count request.
const fetchTimeout = 10 * time.Second

// DefaultInterval is the polling period for the unread count.
const DefaultInterval = 30 * time.Second

// Authorizer reports whether the session is currently authenticated.
// The poller consults it before every request and never issues a call
// for an anonymous session.
type Authorizer interface {
	IsAuthenticated() bool
}

// Poller periodically queries the unread-notification count while the
// session is authenticated. Failures degrade the count locally and never
// force logout; only the gateway's own classification may do that.
type Poller struct {
	client   *api.Client
	auth     Authorizer
	interval time.Duration

	resultCh  chan CountMsg
	triggerCh chan struct{}

	mu      sync.Mutex
	count   int
	stopCh  chan struct{}
	running bool
}

// NewPoller creates a poller with the given fixed interval. A
// non-positive interval falls back to DefaultInterval.
func NewPoller(client *api.Client, auth Authorizer, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		client:    client,
		auth:      auth,
		interval:  interval,
		resultCh:  make(chan CountMsg, 16),
		triggerCh: make(chan struct{}, 16),
	}
}

// Start launches the polling loop and returns a tea.Cmd subscribed to
// count updates. Starting an already-running poller returns only the
// subscription command.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if !p.running {
		p.running = true
		p.stopCh = make(chan struct{})
		go p.loop(p.stopCh)
	}
	p.mu.Unlock()

	return p.waitForCount()
}

// Stop halts the polling loop deterministically. The poller can be
// started again after the next login.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// RefreshCount asks the poller to re-derive the unread count now. It is
// the signal the list controller raises after a successful mutation so
// the two caches converge without waiting a full interval.
func (p *Poller) RefreshCount() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already queued; one fetch covers both.
	}
}

// Count returns the last known unread count.
func (p *Poller) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Badge returns the display form of the unread count ("99+" above 99).
func (p *Poller) Badge() string {
	return model.UnreadBadge(p.Count())
}

// Reset zeroes the cached count. Called on logout, when the cache's
// session ends.
func (p *Poller) Reset() {
	p.setCount(0)
	p.send(CountMsg{Count: 0})
}

// loop runs the fixed-period polling cycle until stopped.
func (p *Poller) loop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial fetch so the badge is populated right after login.
	p.fetchCount()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.fetchCount()
		case <-p.triggerCh:
			p.fetchCount()
		}
	}
}

// fetchCount performs one unread-count request and reconciles the cache.
// Success overwrites the count. A 404/500 means the feature is currently
// unavailable, not that the user is logged out, so the count resets to
// zero. Any other failure leaves the previous count unchanged.
func (p *Poller) fetchCount() {
	if !p.auth.IsAuthenticated() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	count, err := p.client.UnreadCount(ctx)
	if err != nil {
		if api.IsUnavailable(err) {
			logging.Warn("unread count unavailable, zeroing badge", "error", err)
			p.setCount(0)
			p.send(CountMsg{Count: 0})
			return
		}
		logging.Debug("unread count fetch failed, keeping previous value",
			"error", err)
		return
	}

	p.setCount(count)
	p.send(CountMsg{Count: count})
}

func (p *Poller) setCount(count int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count = count
}

// send delivers a count update without blocking the polling loop.
func (p *Poller) send(msg CountMsg) {
	select {
	case p.resultCh <- msg:
	default:
	}
}

// waitForCount returns a tea.Cmd that waits for the next count update.
func (p *Poller) waitForCount() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

// WaitForNextCount re-subscribes after a CountMsg has been processed.
func (p *Poller) WaitForNextCount() tea.Cmd {
	return p.waitForCount()
}
