package binding

import "fmt"

// Param is a single named route parameter.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered set of route parameters.
// Keys are unique; Set replaces a value in place and keeps the original position.
type Params []Param

// NewParams builds Params from alternating key/value pairs.
// A trailing key without a value is ignored.
//
// Example:
//
//	params := binding.NewParams("post", "hello-world", "comment", "42")
func NewParams(pairs ...string) Params {
	p := make(Params, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Set(pairs[i], pairs[i+1])
	}
	return p
}

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return nil, false
}

// String returns the value under key formatted as a string.
// Returns empty string if the key doesn't exist.
func (p Params) String(key string) string {
	v, ok := p.Get(key)
	if !ok {
		return ""
	}
	return rawValue(v)
}

// Set stores value under key.
func (p *Params) Set(key string, value any) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Param{Key: key, Value: value})
}

// Keys returns parameter names in order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, param := range p {
		keys[i] = param.Key
	}
	return keys
}

// Values returns parameter values in order.
func (p Params) Values() []any {
	values := make([]any, len(p))
	for i, param := range p {
		values[i] = param.Value
	}
	return values
}

// Map returns the parameters as an unordered map.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, param := range p {
		m[param.Key] = param.Value
	}
	return m
}

// Clone returns a copy that can be modified independently.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	copy(out, p)
	return out
}

// rawValue converts a parameter value to the string handed to binders.
func rawValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
