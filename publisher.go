package watch

import (
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/watch/pkg/logging"
	"github.com/agentstation/watch/pkg/source"
)

// Compile-time interface check to ensure proper implementation.
var _ Lifecycle = (*Publisher)(nil)

// Publisher is an Observer whose callback fans events out to any
// number of downstream Subscriptions over one shared upstream
// registration. Attaching or cancelling a consumer never touches the
// upstream subscription handle; only the Publisher's own Pause, Resume
// and Close do.
type Publisher struct {
	st      *pubState
	obs     *Observer
	cleanup runtime.Cleanup
}

// pubState is the multicast sink. Like observerState it is a separate
// allocation so consumers and the upstream handler keep the sink
// alive without keeping the Publisher wrapper reachable, letting the
// cleanup backstop complete the stream for a dropped Publisher.
type pubState struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
	buffer int
	logger *zerolog.Logger
	name   string
}

// Subscription is one downstream consumer of a Publisher. It receives
// events delivered after it was created; there is no replay of
// history. The events channel is closed when the consumer cancels or
// the publisher is torn down, so a closed channel is the end-of-stream
// signal.
type Subscription struct {
	st *pubState
	id uint64
	ch chan source.Event
}

// NewPublisher creates a Publisher and registers its single upstream
// subscription immediately. It fails for the same reasons New does.
func NewPublisher(src source.Source, sel source.Selector, opts ...Option) (*Publisher, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	st := &pubState{
		subs:   make(map[uint64]*Subscription),
		buffer: o.buffer,
		logger: logging.WithWatch(o.logger, o.name),
		name:   o.name,
	}

	obs, err := newObserver(src, sel, st.broadcast, o)
	if err != nil {
		return nil, err
	}

	p := &Publisher{st: st, obs: obs}
	p.cleanup = runtime.AddCleanup(p, func(st *pubState) {
		st.complete()
	}, st)
	return p, nil
}

// Name returns the publisher's configured name, which may be empty.
func (p *Publisher) Name() string {
	return p.st.name
}

// Subscribe attaches a new downstream consumer. The subscription only
// sees events delivered after this call. Subscribing to a closed
// publisher returns a subscription whose channel is already closed.
func (p *Publisher) Subscribe() *Subscription {
	return p.st.subscribe()
}

// Subscribers returns the number of attached consumers.
func (p *Publisher) Subscribers() int {
	p.st.mu.Lock()
	defer p.st.mu.Unlock()
	return len(p.st.subs)
}

// Running implements Lifecycle.
func (p *Publisher) Running() bool {
	return p.obs.Running()
}

// Resume implements Lifecycle. It re-registers the single upstream
// subscription; attached consumers are unaffected.
func (p *Publisher) Resume() error {
	return p.obs.Resume()
}

// Pause implements Lifecycle. Consumers stay attached and simply see
// no events until Resume.
func (p *Publisher) Pause() {
	p.obs.Pause()
}

// Close implements Lifecycle. The upstream registration is cancelled
// first, so no event can race the end-of-stream signal every attached
// consumer then receives.
func (p *Publisher) Close() error {
	if err := p.obs.Close(); err != nil {
		return err
	}
	p.st.complete()
	p.cleanup.Stop()
	return nil
}

// Events returns the channel events are delivered on. The channel is
// closed at end-of-stream.
func (s *Subscription) Events() <-chan source.Event {
	return s.ch
}

// Cancel detaches the consumer and closes its channel. Idempotent.
// Cancelling never affects the publisher's upstream subscription or
// other consumers.
func (s *Subscription) Cancel() {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.subs[s.id]; !ok {
		return
	}
	delete(s.st.subs, s.id)
	close(s.ch)
}

// subscribe attaches a consumer, or hands back an already-completed
// stream when the publisher is closed.
func (s *pubState) subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		ch := make(chan source.Event)
		close(ch)
		return &Subscription{st: s, ch: ch}
	}

	s.nextID++
	sub := &Subscription{
		st: s,
		id: s.nextID,
		ch: make(chan source.Event, s.buffer),
	}
	s.subs[sub.id] = sub
	return sub
}

// broadcast is the Publisher's delivery callback. Sends are
// non-blocking: a consumer whose buffer is full loses the event rather
// than stalling delivery for everyone else.
func (s *pubState) broadcast(ev source.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, sub := range s.subs {
		select {
		case sub.ch <- ev:
		default:
			s.logger.Warn().
				Str("event", ev.Name).
				Msg("subscription buffer full, event dropped")
		}
	}
}

// complete closes every subscription channel exactly once, signalling
// end-of-stream to all consumers.
func (s *pubState) complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub.ch)
	}
}
