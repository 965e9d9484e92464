package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/routebind/pkg/binding"
)

func checkCmd() *cobra.Command {
	var bindingsFile string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate route bindings and print them",
		Long: `check loads the route bindings without connecting to any database
and prints what would be registered. It fails when a binding refers to
an entity the server does not provide.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return check(cmd.OutOrStdout(), bindingsFile)
		},
	}

	cmd.Flags().StringVarP(&bindingsFile, "bindings", "b", "", "route bindings YAML file (default: built-in bindings)")
	return cmd
}

func check(w io.Writer, path string) error {
	cfg, err := loadBindings(path)
	if err != nil {
		return err
	}

	registry := binding.NewRegistry()
	if err := registerModels(registry, nil, nil, 0); err != nil {
		return err
	}

	r, err := newResolver(registry, cfg)
	if err != nil {
		return err
	}

	binders := make(map[string]string, len(cfg.Explicit))
	var unknown []string
	for _, b := range cfg.Explicit {
		binders[b.Key] = b.Binder
		unknown = appendUnknown(unknown, registry, b.Binder)
	}
	for _, b := range cfg.Composite {
		unknown = appendUnknown(unknown, registry, b.Binder)
	}

	fmt.Fprintf(w, "explicit bindings: %d\n", len(r.Explicit()))
	for _, key := range r.Explicit() {
		fmt.Fprintf(w, "  %-12s %s\n", key, binders[key])
	}
	fmt.Fprintf(w, "implicit rules: %d\n", r.Implicit())
	for _, rule := range cfg.Implicit {
		fmt.Fprintf(w, "  %s\n", rule.Namespace)
	}
	fmt.Fprintf(w, "composite bindings: %d\n", len(r.Composite()))
	for i, keys := range r.Composite() {
		fmt.Fprintf(w, "  [%s] %s\n", strings.Join(keys, ", "), cfg.Composite[i].Binder)
	}
	fmt.Fprintf(w, "entities: %s\n", strings.Join(registry.Identifiers(), ", "))

	if len(unknown) > 0 {
		return fmt.Errorf("%w: unknown entities: %s", binding.ErrInvalidConfiguration, strings.Join(unknown, ", "))
	}
	return nil
}

// appendUnknown adds the entity part of a "Class" or "Class@method" reference
// when the registry cannot build it.
func appendUnknown(unknown []string, registry *binding.Registry, ref string) []string {
	entity, _, _ := strings.Cut(ref, "@")
	if registry.Exists(entity) {
		return unknown
	}
	return append(unknown, entity)
}
