// Package plugin provides the plugin registration model shared by all
// protocol variants.
//
// Plugins are plain values identified by a stable string ID. A plugin
// participates in a protocol's hook chain by implementing that
// protocol's hook interfaces (rest.RequestHook, sse.ConnectHook, and
// so on); a single plugin value may implement hook sets for several
// protocols and be registered with each of them independently.
//
// Two registration scopes exist. The Registry holds globally registered
// plugins keyed by protocol Kind; global plugins apply to every
// instance of that protocol and run before instance plugins. The Store
// holds plugins attached to one protocol instance. Both preserve
// insertion order, which is the execution order for the before-phase
// hooks.
//
// Removal destroys: Remove and Clear invoke the plugin's Destroy hook,
// when present, before dropping the registration. Each registration
// carries its own destroy-on-removal lifecycle, so a plugin value
// registered with two kinds is destroyed once per removal.
package plugin
