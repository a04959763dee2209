package interpret

import (
	"fmt"

	"golox/ast"
)

// class is a runtime class value: a name, an optional superclass link, and
// a method table. Method lookup walks the superclass chain explicitly, from
// most-derived to least-derived.
type class struct {
	name       string
	superclass *class
	methods    map[string]*function
}

// arity returns the arity of the class's init method, or zero if it has none
func (c *class) arity() int {
	if initializer, ok := c.findMethod("init"); ok {
		return initializer.arity()
	}
	return 0
}

// call instantiates the class. If the class or an ancestor defines an init
// method, it runs bound to the new instance; the result is always the
// instance itself.
func (c *class) call(in *Interpreter, args []interface{}) (interface{}, error) {
	inst := &instance{class: c}

	if initializer, ok := c.findMethod("init"); ok {
		if _, err := initializer.bind(inst).call(in, args); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

func (c *class) findMethod(name string) (*function, bool) {
	if method, ok := c.methods[name]; ok {
		return method, true
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil, false
}

func (c *class) String() string {
	return c.name
}

// instance is an instance of a class: an owning reference to the class and
// a mutable field map that starts empty.
type instance struct {
	class  *class
	fields map[string]interface{}
}

// get returns the value of the field or method with the given name. Fields
// shadow methods; a found method is bound to this instance.
func (i *instance) get(name ast.Token) (interface{}, error) {
	if val, ok := i.fields[name.Lexeme]; ok {
		return val, nil
	}

	if method, ok := i.class.findMethod(name.Lexeme); ok {
		return method.bind(i), nil
	}

	return nil, runtimeError{token: name, msg: fmt.Sprintf("Undefined property '%s'.", name.Lexeme)}
}

// set creates or overwrites a field. Writes never touch the method table.
func (i *instance) set(name ast.Token, value interface{}) {
	if i.fields == nil {
		i.fields = make(map[string]interface{})
	}
	i.fields[name.Lexeme] = value
}

func (i *instance) String() string {
	return i.class.name + " instance"
}
