package interpret

import (
	"fmt"

	"golox/ast"
)

// Environment holds a map of name-value bindings and a reference to an
// enclosing environment. Environments are shared by reference: a closure
// keeps its defining environment alive for as long as the closure itself.
type Environment struct {
	enclosing *Environment
	values    map[string]interface{}
}

// NewEnvironment returns a new environment enclosed by the given environment
func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{enclosing: enclosing, values: make(map[string]interface{})}
}

// Define stores a new binding in this environment. Defining a name that
// already exists in this environment overwrites it.
func (e *Environment) Define(name string, value interface{}) {
	e.values[name] = value
}

// Get returns the value bound to the name, searching from this environment
// outward. If no enclosing environment defines the name, it returns an
// undefined-variable error.
func (e *Environment) Get(name ast.Token) (interface{}, error) {
	if val, ok := e.values[name.Lexeme]; ok {
		return val, nil
	}
	if e.enclosing != nil {
		return e.enclosing.Get(name)
	}
	return nil, runtimeError{token: name, msg: fmt.Sprintf("Undefined variable '%s'.", name.Lexeme)}
}

// Assign sets the value of an existing binding, searching from this
// environment outward. Assigning to a name no environment defines is an
// undefined-variable error.
func (e *Environment) Assign(name ast.Token, value interface{}) error {
	if _, ok := e.values[name.Lexeme]; ok {
		e.values[name.Lexeme] = value
		return nil
	}
	if e.enclosing != nil {
		return e.enclosing.Assign(name, value)
	}
	return runtimeError{token: name, msg: fmt.Sprintf("Undefined variable '%s'.", name.Lexeme)}
}

// GetAt returns the value bound to the name exactly distance environments
// up the chain. The second result reports whether that environment actually
// defines the name; false means the resolver and the run-time environment
// shape disagree, which is a bug, not a legal dynamic state.
func (e *Environment) GetAt(distance int, name string) (interface{}, bool) {
	val, ok := e.ancestor(distance).values[name]
	return val, ok
}

// AssignAt sets the value of the binding exactly distance environments up
// the chain.
func (e *Environment) AssignAt(distance int, name string, value interface{}) {
	e.ancestor(distance).values[name] = value
}

// ancestor returns the environment at a given enclosing distance from this environment
func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.enclosing
	}
	return env
}
