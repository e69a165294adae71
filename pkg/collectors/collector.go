// Package collectors provides the report sections and their registry.
package collectors

import "github.com/rowjay007/server-stats/pkg/metric"

// Registry holds the registered collectors in report order.
type Registry struct {
	collectors []metric.Collector
}

// NewRegistry creates an empty collector registry.
func NewRegistry() *Registry {
	return &Registry{
		collectors: make([]metric.Collector, 0),
	}
}

// Register appends a collector; report sections follow registration order.
func (r *Registry) Register(c metric.Collector) {
	r.collectors = append(r.collectors, c)
}

// Collectors returns all registered collectors.
func (r *Registry) Collectors() []metric.Collector {
	return r.collectors
}

// GetByName returns a collector by section name, or nil if not found.
func (r *Registry) GetByName(name string) metric.Collector {
	for _, c := range r.collectors {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
