package interpret

import (
	"fmt"
	"strconv"
)

// isTruthy maps a runtime value to a boolean for conditional contexts:
// nil and false are falsy, everything else (including 0 and "") is truthy.
func isTruthy(value interface{}) bool {
	if value == nil {
		return false
	}
	if v, ok := value.(bool); ok {
		return v
	}
	return true
}

// isEqual compares two runtime values: by value for nil, booleans, numbers
// and strings, by identity for functions, classes and instances (those are
// pointer values, so the interface comparison is an identity check).
// Values of different kinds are never equal.
func isEqual(left, right interface{}) bool {
	return left == right
}

// stringify renders a runtime value for print and error messages. Integral
// numbers render without a fractional part.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		// functions, classes and instances describe themselves
		return fmt.Sprint(v)
	}
}
