// Package manifest loads declarative watch definitions from YAML.
//
// A manifest names watches and binds each one to a source and a
// selector. Sources themselves are runtime objects, so Build takes a
// map from the source names used in the manifest to live
// source.Source values and materializes one Observer per watch.
//
// Manifests support ${VAR} environment expansion, optionally seeded
// from .env files. Sender filters are runtime identities and cannot be
// expressed in YAML; add them in code after Build if needed.
//
// Example manifest:
//
//	watches:
//	  - name: counter
//	    source: state
//	    property: counter
//	  - name: signups
//	    source: events
//	    event: ${EVENT_PREFIX}.user.created
package manifest

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/agentstation/watch"
	"github.com/agentstation/watch/pkg/errors"
	"github.com/agentstation/watch/pkg/source"
)

// Manifest is a set of declarative watch definitions.
type Manifest struct {
	Watches []Watch `yaml:"watches"`
}

// Watch declares one observer: a source name, and exactly one of a
// property path or an event identifier.
type Watch struct {
	// Name identifies the watch in logs and callbacks. Defaults to
	// the property or event name.
	Name string `yaml:"name,omitempty"`

	// Source is the name of the source to observe, resolved against
	// the map passed to Build.
	Source string `yaml:"source"`

	// Property is a property path on the source.
	Property string `yaml:"property,omitempty"`

	// Event is a named-event identifier on the source.
	Event string `yaml:"event,omitempty"`
}

// Selector returns the source selector the watch declares.
func (w Watch) Selector() source.Selector {
	if w.Property != "" {
		return source.Property(w.Property)
	}
	return source.Named(w.Event)
}

// name returns the watch name, defaulting to the selector name.
func (w Watch) name() string {
	if w.Name != "" {
		return w.Name
	}
	return w.Selector().Name
}

// loader holds Load configuration.
type loader struct {
	dotenv []string
	expand bool
}

// Option configures Load.
type Option func(*loader)

// WithDotEnv loads the given .env files before environment expansion.
// Values already present in the environment win, matching godotenv.
func WithDotEnv(files ...string) Option {
	return func(l *loader) {
		l.dotenv = append(l.dotenv, files...)
	}
}

// WithoutExpand disables ${VAR} environment expansion.
func WithoutExpand() Option {
	return func(l *loader) {
		l.expand = false
	}
}

// Load reads, expands and parses a manifest file.
func Load(path string, opts ...Option) (*Manifest, error) {
	l := &loader{expand: true}
	for _, opt := range opts {
		opt(l)
	}

	if len(l.dotenv) > 0 {
		if err := godotenv.Load(l.dotenv...); err != nil {
			return nil, errors.NewConfigError("manifest", "loading .env", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapResource("read", "manifest", path, err)
	}

	if l.expand {
		data = []byte(os.ExpandEnv(string(data)))
	}

	m, err := Parse(data)
	if err != nil {
		if parseErr, ok := err.(*errors.ParseError); ok {
			parseErr.File = path
		}
		return nil, err
	}
	return m, nil
}

// Parse parses and validates manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every watch declaration.
func (m *Manifest) Validate() error {
	if len(m.Watches) == 0 {
		return errors.NewConfigError("manifest", "no watches declared", nil)
	}

	seen := make(map[string]bool, len(m.Watches))
	for i, w := range m.Watches {
		if w.Source == "" {
			return errors.NewConfigError("manifest", fmt.Sprintf("watch %d: no source", i), nil)
		}
		if (w.Property == "") == (w.Event == "") {
			return errors.NewConfigError("manifest", fmt.Sprintf("watch %d: exactly one of property or event required", i), nil)
		}
		name := w.name()
		if seen[name] {
			return errors.NewConfigError("manifest", fmt.Sprintf("watch %d: duplicate watch name %s", i, name), nil)
		}
		seen[name] = true
	}
	return nil
}

// Build materializes one running Observer per declared watch against
// the given sources. The callback receives the watch name alongside
// each event. On any failure the observers already built are closed
// and the error returned, so Build is all-or-nothing.
func Build(m *Manifest, sources map[string]source.Source, cb func(watch string, ev source.Event), opts ...watch.Option) ([]*watch.Observer, error) {
	if cb == nil {
		return nil, errors.NewValidationError("callback", nil, "callback cannot be nil")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	observers := make([]*watch.Observer, 0, len(m.Watches))
	for _, w := range m.Watches {
		src, ok := sources[w.Source]
		if !ok {
			closeAll(observers)
			return nil, errors.NewNotFoundError("source", w.Source)
		}

		name := w.name()
		obs, err := watch.New(src, w.Selector(), func(ev source.Event) {
			cb(name, ev)
		}, append([]watch.Option{watch.WithName(name)}, opts...)...)
		if err != nil {
			closeAll(observers)
			return nil, errors.WrapResource("build", "watch", name, err)
		}
		observers = append(observers, obs)
	}
	return observers, nil
}

func closeAll(observers []*watch.Observer) {
	for _, obs := range observers {
		_ = obs.Close()
	}
}
