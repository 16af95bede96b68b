package plugin

import "log/slog"

// Kind identifies a protocol variant. Each protocol package exports its
// kind constant; the global Registry keys its plugin lists by it.
type Kind string

// Protocol kinds.
const (
	KindRest Kind = "rest"
	KindSSE  Kind = "sse"
)

// Plugin is the minimal contract every plugin satisfies: a stable
// identifier used for lookup and removal in the global registry.
// Protocol hook capabilities are separate, optional interfaces.
type Plugin interface {
	// ID returns the plugin's stable identifier. Two instances of the
	// same plugin type share an ID; removal by ID acts on the first
	// registered instance.
	ID() string
}

// Destroyer is implemented by plugins that hold resources needing
// teardown. Destroy is invoked once per registration removal.
type Destroyer interface {
	Destroy() error
}

// destroy runs a plugin's Destroy hook if it has one. Failures are
// logged and swallowed so teardown of one plugin never blocks the
// rest of a Clear or Reset.
func destroy(p Plugin, logger *slog.Logger) {
	d, ok := p.(Destroyer)
	if !ok {
		return
	}
	if err := d.Destroy(); err != nil {
		logger.Warn("plugin destroy failed", "plugin", p.ID(), "error", err)
	}
}
