// Package matching implements route-key matching for mock maps.
//
// A REST mock key has the form "METHOD /path" (method uppercase, single
// space separator); an SSE key is a bare "/path". Path segments may be
// literals, ":name" parameters that match any single segment, or glob
// segments matched with doublestar semantics. Matching is segment-wise:
// the pattern and the path must have the same number of segments, so
// "GET /api/users/:id" matches "/api/users/123" but never
// "/api/users/123/extra".
//
// The package also evaluates JSONPath conditions against request bodies
// for config-defined mock routes.
package matching
