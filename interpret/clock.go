package interpret

import "time"

// clock is the native clock() function: it returns the elapsed time in
// fractional seconds since the interpreter was created.
type clock struct {
	start time.Time
}

func (c clock) arity() int {
	return 0
}

func (c clock) call(_ *Interpreter, _ []interface{}) (interface{}, error) {
	return time.Since(c.start).Seconds(), nil
}

func (c clock) String() string {
	return "<native fn>"
}
