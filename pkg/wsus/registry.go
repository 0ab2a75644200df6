package wsus

import (
	"fmt"
	"sync"
	"time"
)

// DriverOptions tune the transport of a driver.
type DriverOptions struct {
	// Timeout bounds every single web-service call. Zero means no bound,
	// matching the legacy behavior where a hung server stalls the run.
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification. WSUS
	// installations commonly run on self-signed certificates.
	InsecureSkipVerify bool
}

// DriverFactory builds a dialer from transport options.
type DriverFactory func(opts DriverOptions) Dialer

// Registry manages named driver factories, so alternative transports can be
// plugged in without touching the report core.
type Registry interface {
	// Register adds a new driver factory under a name.
	Register(driver string, factory DriverFactory) error
	// Create builds a dialer for the named driver using the provided options.
	Create(driver string, opts DriverOptions) (Dialer, error)
	// ListDrivers returns the names of all registered drivers.
	ListDrivers() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]DriverFactory
}

// NewRegistry creates a driver registry pre-populated with the given
// factories.
func NewRegistry(factories map[string]DriverFactory) Registry {
	r := &registry{
		factories: make(map[string]DriverFactory, len(factories)),
	}
	for driver, factory := range factories {
		r.factories[driver] = factory
	}
	return r
}

func (r *registry) Register(driver string, factory DriverFactory) error {
	if driver == "" {
		return fmt.Errorf("driver name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[driver]; exists {
		return fmt.Errorf("driver %q is already registered", driver)
	}

	r.factories[driver] = factory
	return nil
}

func (r *registry) Create(driver string, opts DriverOptions) (Dialer, error) {
	r.mu.RLock()
	factory, exists := r.factories[driver]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("driver %q is not registered", driver)
	}
	return factory(opts), nil
}

func (r *registry) ListDrivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drivers := make([]string, 0, len(r.factories))
	for driver := range r.factories {
		drivers = append(drivers, driver)
	}
	return drivers
}
