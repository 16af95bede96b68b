// Package config loads client profiles from JSON or YAML files.
//
// A profile carries the API origin, default headers, logging settings
// and an optional mock section. Mock routes may declare a static body,
// an expr program evaluated against the parsed request body, or a list
// of variants selected by JSONPath conditions; the section compiles
// into the mock maps the protocol packages consume.
package config
