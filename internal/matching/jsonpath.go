package matching

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"
)

// MatchJSONPath evaluates JSONPath conditions against a JSON body.
// Every condition must hold for a match. A body that is not valid JSON
// never matches; an invalid JSONPath expression never matches.
//
// A condition value of the form {"exists": bool} asserts presence or
// absence of the path; any other value is compared for equality against
// the first result of the expression.
func MatchJSONPath(conditions map[string]any, body []byte) bool {
	if len(conditions) == 0 {
		return true
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return false
	}

	for path, expected := range conditions {
		if !matchSingleJSONPath(path, expected, data) {
			return false
		}
	}
	return true
}

func matchSingleJSONPath(path string, expected, data any) bool {
	expr, err := jp.ParseString(path)
	if err != nil {
		return false
	}

	results := expr.Get(data)

	if wantExists, ok := existenceCheck(expected); ok {
		return wantExists == (len(results) > 0)
	}

	if len(results) == 0 {
		return false
	}
	return jsonEqual(results[0], expected)
}

// existenceCheck recognizes the {"exists": bool} condition form.
func existenceCheck(expected any) (want, ok bool) {
	m, isMap := expected.(map[string]any)
	if !isMap || len(m) != 1 {
		return false, false
	}
	v, present := m["exists"]
	if !present {
		return false, false
	}
	b, isBool := v.(bool)
	return b, isBool
}

// JSONPathGet evaluates a JSONPath expression against decoded JSON
// data and returns the first result, or nil when the expression is
// invalid or matches nothing.
func JSONPathGet(path string, data any) any {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil
	}
	results := expr.Get(data)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// jsonEqual compares two values with JSON number semantics: ints and
// floats that render to the same literal are equal.
func jsonEqual(got, expected any) bool {
	if reflect.DeepEqual(got, expected) {
		return true
	}
	return fmt.Sprintf("%v", got) == fmt.Sprintf("%v", expected)
}
