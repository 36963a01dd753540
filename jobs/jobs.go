// Package jobs holds the work functions run by the worker, one per task type.
package jobs

import (
	"fmt"
	"time"

	"github.com/zzzzlzzzz/alena/driver"
)

// Func computes the output of a task from its input.
type Func func(input string) string

var ErrUnknownType = fmt.Errorf("jobs: unknown task type")

// Registry maps every task type to its work function.
type Registry struct {
	Reverse       Func
	Transposition Func
}

// NewRegistry returns the registry of Reverse and Transposition.
func NewRegistry() Registry {
	return Registry{
		Reverse:       Reverse,
		Transposition: Transposition,
	}
}

// NewDelayedRegistry returns the registry of Reverse and Transposition, each
// sleeping its delay before it runs.
func NewDelayedRegistry(reverseDelay, transpositionDelay time.Duration) Registry {
	return Registry{
		Reverse:       Delayed(Reverse, reverseDelay),
		Transposition: Delayed(Transposition, transpositionDelay),
	}
}

// Resolve returns the function registered for t.
func (r Registry) Resolve(t driver.TaskType) (fn Func, err error) {
	switch t {
	case driver.TYPE_REVERSE:
		fn = r.Reverse
	case driver.TYPE_TRANSPOSITION:
		fn = r.Transposition
	}
	if fn == nil {
		err = fmt.Errorf("%w %s", ErrUnknownType, t)
	}
	return
}

// Delayed runs fn after sleeping d, which stands in for a slow job.
func Delayed(fn Func, d time.Duration) Func {
	if d <= 0 {
		return fn
	}
	return func(input string) string {
		time.Sleep(d)
		return fn(input)
	}
}

// Reverse reverses input by code point.
func Reverse(input string) string {
	runes := []rune(input)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// Transposition swaps adjacent code point pairs. A trailing odd code point
// stays at the end.
func Transposition(input string) string {
	runes := []rune(input)
	for i := 0; i+1 < len(runes); i += 2 {
		runes[i], runes[i+1] = runes[i+1], runes[i]
	}
	return string(runes)
}
