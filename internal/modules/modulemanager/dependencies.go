package modulemanager

import (
	"fmt"
)

// DependencyProvider is an optional interface for modules that declare dependencies
type DependencyProvider interface {
	// Dependencies returns the list of module IDs this module depends on
	Dependencies() []string
}

// initializationOrder sorts modules so dependencies come first. Modules
// without a relation keep their registration order.
func initializationOrder(modules []Module) ([]Module, error) {
	byID := make(map[string]Module, len(modules))
	for _, m := range modules {
		byID[m.ID()] = m
	}

	const (
		unvisited = iota
		inStack
		done
	)
	state := make(map[string]int, len(modules))
	order := make([]Module, 0, len(modules))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch state[id] {
		case done:
			return nil
		case inStack:
			return fmt.Errorf("circular dependency detected: %v", append(path, id))
		}
		state[id] = inStack
		path = append(path, id)

		module := byID[id]
		if dp, ok := module.(DependencyProvider); ok {
			for _, dep := range dp.Dependencies() {
				if _, exists := byID[dep]; !exists {
					return fmt.Errorf("module %s depends on missing module %s", id, dep)
				}
				if err := visit(dep, path); err != nil {
					return err
				}
			}
		}

		state[id] = done
		order = append(order, module)
		return nil
	}

	for _, m := range modules {
		if err := visit(m.ID(), nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}
