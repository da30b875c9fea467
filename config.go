// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import "time"

// defaultRestartDelay and defaultConvergenceDelay are the timing knobs'
// defaults (§3): a subscription task waits this long after a back-end
// stream ends or errors before retrying, and a multi-name subscriber waits
// this long for an in-flight resolution burst to converge.
const (
	defaultRestartDelay     = 100 * time.Millisecond
	defaultConvergenceDelay = 100 * time.Millisecond
)

// Config is an immutable snapshot of routing configuration.
//
// Static hosts/services always win over any back-end. The suffix table is
// matched longest-suffix-wins at DNS label boundaries (§4.F,
// [getSuffix]); Fallthrough is used when nothing matches. Config values are
// never mutated after [ConfigBuilder.Done] publishes them — every update
// produces a new snapshot, installed atomically by the engine.
type Config struct {
	// RestartDelay is inserted before a failed or ended subscription is
	// retried. Default 100ms.
	RestartDelay time.Duration

	// ConvergenceDelay gates the multi-name subscriber's emissions (§4.H).
	// Default 100ms.
	ConvergenceDelay time.Duration

	// Hosts are static host overrides, winning over any back-end.
	Hosts map[Name]IpList

	// Services are static service overrides, winning over any back-end.
	Services map[Name]Address

	// Suffixes maps a DNS suffix (without a leading dot) to the back-end
	// responsible for names ending in it. An explicit entry bound to
	// [NullResolver] silences fallthrough for that suffix rather than
	// deferring to it — a deliberate escape hatch (§4.D).
	Suffixes map[string]Resolver

	// Fallthrough is the back-end used when no suffix matches. Defaults to
	// [NullResolver]{}.
	Fallthrough Resolver
}

// ConfigBuilder accumulates defaults, static mappings, suffix bindings, and
// the fallthrough back-end, and produces an immutable [*Config] via
// [ConfigBuilder.Done].
type ConfigBuilder struct {
	cfg Config
}

// NewConfigBuilder returns a [*ConfigBuilder] seeded with the default
// timing knobs and an empty routing table.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: Config{
			RestartDelay:     defaultRestartDelay,
			ConvergenceDelay: defaultConvergenceDelay,
			Hosts:            make(map[Name]IpList),
			Services:         make(map[Name]Address),
			Suffixes:         make(map[string]Resolver),
			Fallthrough:      NullResolver{},
		},
	}
}

// AddHost adds a static host override; it wins over any back-end.
func (b *ConfigBuilder) AddHost(name Name, addrs IpList) *ConfigBuilder {
	b.cfg.Hosts[name] = addrs
	return b
}

// AddService adds a static service override; it wins over any back-end.
func (b *ConfigBuilder) AddService(name Name, addr Address) *ConfigBuilder {
	b.cfg.Services[name] = addr
	return b
}

// AddSuffix binds suffix (without a leading dot) to resolver. Passing a nil
// resolver is equivalent to passing [NullResolver]{}: an explicit "silence,
// don't fall through" entry, per §4.D.
func (b *ConfigBuilder) AddSuffix(suffix string, resolver Resolver) *ConfigBuilder {
	if resolver == nil {
		resolver = NullResolver{}
	}
	b.cfg.Suffixes[suffix] = resolver
	return b
}

// SetFallthrough sets the back-end used when no suffix matches.
func (b *ConfigBuilder) SetFallthrough(resolver Resolver) *ConfigBuilder {
	if resolver == nil {
		resolver = NullResolver{}
	}
	b.cfg.Fallthrough = resolver
	return b
}

// SetRestartDelay overrides the default restart delay.
func (b *ConfigBuilder) SetRestartDelay(d time.Duration) *ConfigBuilder {
	b.cfg.RestartDelay = d
	return b
}

// SetConvergenceDelay overrides the default convergence delay.
func (b *ConfigBuilder) SetConvergenceDelay(d time.Duration) *ConfigBuilder {
	b.cfg.ConvergenceDelay = d
	return b
}

// Done returns an immutable snapshot of the accumulated configuration. The
// builder may keep being used afterwards; Done defensively copies every
// map so a later builder mutation never reaches an already-published
// snapshot.
func (b *ConfigBuilder) Done() *Config {
	snapshot := Config{
		RestartDelay:     b.cfg.RestartDelay,
		ConvergenceDelay: b.cfg.ConvergenceDelay,
		Hosts:            make(map[Name]IpList, len(b.cfg.Hosts)),
		Services:         make(map[Name]Address, len(b.cfg.Services)),
		Suffixes:         make(map[string]Resolver, len(b.cfg.Suffixes)),
		Fallthrough:      b.cfg.Fallthrough,
	}
	for k, v := range b.cfg.Hosts {
		snapshot.Hosts[k] = v
	}
	for k, v := range b.cfg.Services {
		snapshot.Services[k] = v
	}
	for k, v := range b.cfg.Suffixes {
		snapshot.Suffixes[k] = v
	}
	return &snapshot
}

// getSuffix resolves the back-end responsible for name: exact match first
// (the whole name is itself a suffix key), then each shorter right-hand
// suffix at a label boundary left-to-right, then the fallthrough back-end.
// Longer (more specific) suffixes win because they are tested first (§4.F).
func getSuffix(cfg *Config, name string) Resolver {
	if r, ok := cfg.Suffixes[name]; ok {
		return r
	}
	for _, suffix := range labelSuffixes(name) {
		if r, ok := cfg.Suffixes[suffix]; ok {
			return r
		}
	}
	if cfg.Fallthrough != nil {
		return cfg.Fallthrough
	}
	return NullResolver{}
}
