package watch

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/watch/pkg/dispatch"
	"github.com/agentstation/watch/pkg/errors"
	"github.com/agentstation/watch/pkg/logging"
)

// defaultSubscriptionBuffer is the per-subscription channel capacity
// used when WithSubscriptionBuffer is not given.
const defaultSubscriptionBuffer = 16

// Option is a function that configures an Observer or Publisher.
type Option func(*options) error

// options are the configured options for an Observer or Publisher.
type options struct {
	name       string
	dispatcher dispatch.Dispatcher
	logger     *zerolog.Logger
	buffer     int
}

// defaults returns the default options.
func defaults() *options {
	return &options{
		dispatcher: dispatch.Inline,
		logger:     logging.Default(),
		buffer:     defaultSubscriptionBuffer,
	}
}

// apply applies the given options, returning the first error.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithName attaches a name to the observer for log correlation.
func WithName(name string) Option {
	return func(o *options) error {
		o.name = name
		return nil
	}
}

// WithDispatcher configures the dispatch target deliveries run on.
// The default is dispatch.Inline: the goroutine the source emits on.
func WithDispatcher(d dispatch.Dispatcher) Option {
	return func(o *options) error {
		if d == nil {
			return errors.NewValidationError("dispatcher", nil, "dispatcher cannot be nil")
		}
		o.dispatcher = d
		return nil
	}
}

// WithLogger configures the logger used for lifecycle events.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "logger cannot be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithSubscriptionBuffer configures the channel capacity of each
// downstream Subscription created by a Publisher. When a consumer
// falls behind by more than this many events, further events are
// dropped for that consumer until it catches up.
func WithSubscriptionBuffer(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("buffer", n, "subscription buffer must be positive")
		}
		o.buffer = n
		return nil
	}
}
