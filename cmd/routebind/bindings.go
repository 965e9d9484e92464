package main

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/dmitrymomot/routebind/pkg/binding"
)

//go:embed bindings.yaml
var defaultBindings []byte

// loadBindings reads the binding file at path, or the built-in bindings when path is empty.
func loadBindings(path string) (*binding.Config, error) {
	if path == "" {
		return binding.LoadConfig(bytes.NewReader(defaultBindings))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bindings file: %w", err)
	}
	defer f.Close()

	return binding.LoadConfig(f)
}

func newResolver(registry *binding.Registry, cfg *binding.Config, opts ...binding.ResolverOption) (*binding.Resolver, error) {
	r := binding.NewResolver(registry, append(cfg.ResolverOptions(), opts...)...)
	if err := cfg.Apply(r, errorHandlers()); err != nil {
		return nil, err
	}
	return r, nil
}
