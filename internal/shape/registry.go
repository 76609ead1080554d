package shape

import (
	"fmt"
	"sort"
	"sync"
)

type Factory func() Model

var registry = struct {
	mu sync.RWMutex
	m  map[string]Factory
}{
	m: make(map[string]Factory),
}

func Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("model name is required")
	}
	if factory == nil {
		return fmt.Errorf("model factory is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrModelExists, name)
	}
	registry.m[name] = factory
	return nil
}

func Resolve(name string) (Model, error) {
	registry.mu.RLock()
	factory, ok := registry.m[name]
	registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	return factory(), nil
}

func List() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for n := range registry.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func mustRegister(name string, factory Factory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

func init() {
	mustRegister("cylinder", func() Model { return Cylinder{} })
	mustRegister("sphere", func() Model { return Sphere{} })
	mustRegister("core_shell_ellipsoid", func() Model { return CoreShellEllipsoid{} })
	mustRegister("gaussian_peak", func() Model { return GaussianPeak{} })
}
