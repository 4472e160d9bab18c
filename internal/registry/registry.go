package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/petal/internal/labels"
)

// Module is the interface that all driver packages implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Batch is the view a driver gets of one execution: the identifiers that
// triggered it and the emitter bound to the label it produces.
type Batch struct {
	// Module is the plan-level name of the module being executed.
	Module string
	// IDs is the trigger batch. It is nil for independent modules and may be
	// empty for a module triggered only by its producer finishing.
	IDs []labels.ID
	// Out receives the identifiers the driver harvests.
	Out *labels.Emitter
}

// RegisteredDriver holds the compiled Go parts of a driver.
//
// Fn must have the signature
//
//	func(ctx context.Context, input *T, batch *Batch) error
//
// where *T is the type returned by NewInput.
type RegisteredDriver struct {
	NewInput func() any
	Fn       any
}

// Registry holds all registered drivers of a single application instance.
type Registry struct {
	drivers map[string]*RegisteredDriver
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{drivers: make(map[string]*RegisteredDriver)}
}

// RegisterDriver registers a driver under name. Registering the same name
// twice is a programming error and panics.
func (r *Registry) RegisterDriver(name string, d *RegisteredDriver) {
	if _, exists := r.drivers[name]; exists {
		panic(fmt.Sprintf("driver with name '%s' already registered", name))
	}
	slog.Debug("Registering driver.", "name", name)
	r.drivers[name] = d
}

// Driver returns the driver registered under name.
func (r *Registry) Driver(name string) (*RegisteredDriver, bool) {
	d, ok := r.drivers[name]
	return d, ok
}

// Names returns the registered driver names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
