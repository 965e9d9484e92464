package binding

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config is a declarative set of bindings, usually loaded from YAML.
//
//	separator: "\\"
//	explicit:
//	  - key: user
//	    binder: App\Models\User
//	    error_handler: not_found_as_nil
//	implicit:
//	  - namespace: App\Models
//	composite:
//	  - keys: [post, comment]
//	    binder: App\Repositories\PostRepository@FindWithComment
type Config struct {
	Separator string            `yaml:"separator"`
	Explicit  []ExplicitConfig  `yaml:"explicit"`
	Implicit  []ImplicitConfig  `yaml:"implicit"`
	Composite []CompositeConfig `yaml:"composite"`
}

// ExplicitConfig describes a Bind call. Binder is a "Class" or "Class@method" reference.
type ExplicitConfig struct {
	Key          string `yaml:"key"`
	Binder       string `yaml:"binder"`
	ErrorHandler string `yaml:"error_handler"`
}

// ImplicitConfig describes an ImplicitBind call.
type ImplicitConfig struct {
	Namespace    string `yaml:"namespace"`
	Prefix       string `yaml:"prefix"`
	Suffix       string `yaml:"suffix"`
	Method       string `yaml:"method"`
	ErrorHandler string `yaml:"error_handler"`
}

// CompositeConfig describes a CompositeBind call. Binder must be a "Class@method" reference.
type CompositeConfig struct {
	Keys         []string `yaml:"keys"`
	Binder       string   `yaml:"binder"`
	ErrorHandler string   `yaml:"error_handler"`
}

// LoadConfig decodes a YAML binding configuration. Unknown fields are rejected.
func LoadConfig(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, errors.Join(ErrInvalidConfiguration, err)
	}
	return &cfg, nil
}

// Validate checks the configuration without a resolver.
// Handler names are checked against handlers.
func (c *Config) Validate(handlers map[string]ErrorHandler) error {
	var errs []error

	for i, e := range c.Explicit {
		if e.Key == "" {
			errs = append(errs, fmt.Errorf("explicit[%d]: empty key", i))
		}
		if e.Binder == "" {
			errs = append(errs, fmt.Errorf("explicit[%d]: empty binder", i))
		}
		if _, err := lookupHandler(handlers, e.ErrorHandler); err != nil {
			errs = append(errs, fmt.Errorf("explicit[%d]: %w", i, err))
		}
	}

	for i, im := range c.Implicit {
		if im.Namespace == "" {
			errs = append(errs, fmt.Errorf("implicit[%d]: empty namespace", i))
		}
		if _, err := lookupHandler(handlers, im.ErrorHandler); err != nil {
			errs = append(errs, fmt.Errorf("implicit[%d]: %w", i, err))
		}
	}

	for i, cc := range c.Composite {
		if len(cc.Keys) < 2 {
			errs = append(errs, fmt.Errorf("composite[%d]: expected more than one wildcard, got %d", i, len(cc.Keys)))
		}
		if _, ok := Name(cc.Binder).(ByMethod); !ok {
			errs = append(errs, fmt.Errorf("composite[%d]: binder %q must be a Class@method reference", i, cc.Binder))
		}
		if _, err := lookupHandler(handlers, cc.ErrorHandler); err != nil {
			errs = append(errs, fmt.Errorf("composite[%d]: %w", i, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfiguration}, errs...)...)
	}
	return nil
}

// Apply validates the configuration and registers every binding on r.
// Nothing is registered when validation fails.
//
// Example:
//
//	cfg, err := binding.LoadConfig(f)
//	if err != nil {
//	    return err
//	}
//	err = cfg.Apply(resolver, map[string]binding.ErrorHandler{
//	    "not_found_as_nil": notFoundAsNil,
//	})
func (c *Config) Apply(r *Resolver, handlers map[string]ErrorHandler) error {
	if err := c.Validate(handlers); err != nil {
		return err
	}

	for _, e := range c.Explicit {
		h, _ := lookupHandler(handlers, e.ErrorHandler)
		r.Bind(e.Key, Name(e.Binder), WithErrorHandler(h))
	}

	for _, im := range c.Implicit {
		h, _ := lookupHandler(handlers, im.ErrorHandler)
		r.ImplicitBind(im.Namespace,
			WithPrefix(im.Prefix),
			WithSuffix(im.Suffix),
			WithMethod(im.Method),
			WithErrorHandler(h),
		)
	}

	for _, cc := range c.Composite {
		h, _ := lookupHandler(handlers, cc.ErrorHandler)
		if err := r.CompositeBind(cc.Keys, Name(cc.Binder), WithErrorHandler(h)); err != nil {
			return err
		}
	}

	return nil
}

// ResolverOptions returns the resolver options implied by the configuration.
func (c *Config) ResolverOptions() []ResolverOption {
	if c.Separator == "" {
		return nil
	}
	return []ResolverOption{WithSeparator(c.Separator)}
}

func lookupHandler(handlers map[string]ErrorHandler, name string) (ErrorHandler, error) {
	if name == "" {
		return nil, nil
	}
	h, ok := handlers[name]
	if !ok || h == nil {
		return nil, fmt.Errorf("unknown error handler %q", name)
	}
	return h, nil
}
