package config

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/hai3/sdk/internal/matching"
	"github.com/hai3/sdk/pkg/rest"
	"github.com/hai3/sdk/pkg/sse"
)

// RestRoutes compiles the REST mock routes into a mock map, keeping
// declaration order. Expr programs are compiled once, at load time.
func (c MockConfig) RestRoutes() (*rest.MockMap, error) {
	m := rest.NewMockMap()
	for _, route := range c.Routes {
		handler, err := compileRoute(route)
		if err != nil {
			return nil, fmt.Errorf("mock route %q: %w", route.Key, err)
		}
		m.Set(route.Key, handler)
	}
	return m, nil
}

// StreamRoutes compiles the SSE mock streams into a stream map,
// keeping declaration order.
func (c MockConfig) StreamRoutes() *sse.StreamMap {
	m := sse.NewStreamMap()
	for _, stream := range c.Streams {
		events := make([]sse.Event, len(stream.Events))
		for i, ev := range stream.Events {
			events[i] = sse.Event{Type: ev.Type, ID: ev.ID, Data: ev.Data}
		}
		m.Set(stream.Key, func() []sse.Event {
			return events
		})
	}
	return m
}

func compileRoute(route MockRoute) (rest.Handler, error) {
	switch {
	case route.Expr != "":
		program, err := expr.Compile(route.Expr)
		if err != nil {
			return nil, fmt.Errorf("compile expr: %w", err)
		}
		return func(body []byte) (any, error) {
			return runProgram(program, body)
		}, nil

	case len(route.Variants) > 0:
		type compiledVariant struct {
			when    map[string]any
			body    any
			program *vm.Program
		}
		variants := make([]compiledVariant, len(route.Variants))
		for i, v := range route.Variants {
			cv := compiledVariant{when: v.When, body: v.Body}
			if v.Expr != "" {
				program, err := expr.Compile(v.Expr)
				if err != nil {
					return nil, fmt.Errorf("variant %d: compile expr: %w", i, err)
				}
				cv.program = program
			}
			variants[i] = cv
		}
		return func(body []byte) (any, error) {
			for _, cv := range variants {
				if len(cv.when) > 0 && !matching.MatchJSONPath(cv.when, body) {
					continue
				}
				if cv.program != nil {
					return runProgram(cv.program, body)
				}
				return cv.body, nil
			}
			return nil, fmt.Errorf("no variant matched request body")
		}, nil

	default:
		return func([]byte) (any, error) {
			return route.Body, nil
		}, nil
	}
}

// runProgram evaluates a compiled expr program. The environment
// exposes the parsed request body as "body" and a "jsonpath" lookup
// function over it.
func runProgram(program *vm.Program, body []byte) (any, error) {
	var parsed any
	if len(body) > 0 {
		// A non-JSON body leaves "body" nil rather than failing the
		// mock.
		_ = json.Unmarshal(body, &parsed)
	}
	env := map[string]any{
		"body": parsed,
		"jsonpath": func(path string) any {
			return matching.JSONPathGet(path, parsed)
		},
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("run expr: %w", err)
	}
	return out, nil
}
