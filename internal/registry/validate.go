package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/petal/internal/ctxlog"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	batchType   = reflect.TypeOf((*Batch)(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Validate checks every registered driver's function signature against its
// input constructor.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	for _, name := range r.Names() {
		if err := validateDriver(r.drivers[name]); err != nil {
			errs = append(errs, fmt.Sprintf("driver '%s': %v", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	ctxlog.FromContext(ctx).Debug("Registry validated.", "drivers", len(r.drivers))
	return nil
}

func validateDriver(d *RegisteredDriver) error {
	if d == nil || d.Fn == nil {
		return fmt.Errorf("no function registered")
	}
	if d.NewInput == nil {
		return fmt.Errorf("no input constructor registered")
	}

	fn := reflect.TypeOf(d.Fn)
	if fn.Kind() != reflect.Func {
		return fmt.Errorf("Fn is %s, not a function", fn)
	}
	if fn.NumIn() != 3 || fn.NumOut() != 1 {
		return fmt.Errorf("Fn must be func(context.Context, *Input, *registry.Batch) error, got %s", fn)
	}
	if !fn.In(0).Implements(contextType) {
		return fmt.Errorf("first parameter must be context.Context, got %s", fn.In(0))
	}
	input := reflect.TypeOf(d.NewInput())
	if input == nil || input.Kind() != reflect.Ptr || input.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("NewInput must return a pointer to a struct, got %v", input)
	}
	if fn.In(1) != input {
		return fmt.Errorf("second parameter is %s but NewInput returns %s", fn.In(1), input)
	}
	if fn.In(2) != batchType {
		return fmt.Errorf("third parameter must be *registry.Batch, got %s", fn.In(2))
	}
	if fn.Out(0) != errorType {
		return fmt.Errorf("result must be error, got %s", fn.Out(0))
	}
	return nil
}
