package interpret

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTruthy(t *testing.T) {
	assert.False(t, isTruthy(nil))
	assert.False(t, isTruthy(false))

	assert.True(t, isTruthy(true))
	assert.True(t, isTruthy(0.0))
	assert.True(t, isTruthy(""))
	assert.True(t, isTruthy("false"))
}

func TestIsEqual(t *testing.T) {
	assert.True(t, isEqual(nil, nil))
	assert.True(t, isEqual(1.0, 1.0))
	assert.True(t, isEqual("a", "a"))
	assert.True(t, isEqual(true, true))

	assert.False(t, isEqual(nil, false))
	assert.False(t, isEqual(1.0, 2.0))
	assert.False(t, isEqual(1.0, "1"))
	assert.False(t, isEqual("a", "b"))

	// instances compare by identity
	c := &class{name: "A"}
	first := &instance{class: c}
	second := &instance{class: c}
	assert.True(t, isEqual(first, first))
	assert.False(t, isEqual(first, second))
}

func TestStringify(t *testing.T) {
	tests := []struct {
		value interface{}
		want  string
	}{
		{value: nil, want: "nil"},
		{value: true, want: "true"},
		{value: false, want: "false"},
		{value: 7.0, want: "7"},
		{value: 2.5, want: "2.5"},
		{value: -0.125, want: "-0.125"},
		{value: "text", want: "text"},
		{value: clock{}, want: "<native fn>"},
		{value: &class{name: "Bagel"}, want: "Bagel"},
		{value: &instance{class: &class{name: "Bagel"}}, want: "Bagel instance"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, stringify(tt.value))
	}
}
