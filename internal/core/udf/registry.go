package udf

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// Kind is the dimensionality of a parameter as seen by the Go function.
type Kind string

const (
	// Scalar parameters receive the top-left value of the argument.
	Scalar Kind = "scalar"
	// Matrix parameters receive the full 2-D argument as [][]any.
	Matrix Kind = "matrix"
)

// nameRe restricts function and parameter names to valid JavaScript
// identifiers in snake case.
var nameRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var namespaceRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidNamespace reports whether ns can prefix function ids.
func ValidNamespace(ns string) bool {
	return namespaceRe.MatchString(ns)
}

// Param describes a function parameter.
type Param struct {
	Name        string
	Description string
	Kind        Kind
	Optional    bool
}

// Impl is the Go implementation of a custom function. args has one entry
// per declared parameter, converted according to its Kind.
type Impl func(ctx context.Context, args []any) (any, error)

// Func is a custom function.
type Func struct {
	Name        string
	Description string
	Params      []Param
	// Volatile functions recalculate on every sheet calculation.
	Volatile bool
	// RequiresAddress makes the client send the calling cell's address.
	RequiresAddress bool
	Impl            Impl
}

// ID returns the identifier the client registers the function under.
func (f *Func) ID(namespace string) string {
	id := strings.ToUpper(f.Name)
	if namespace != "" {
		return strings.ToUpper(namespace) + "." + id
	}
	return id
}

// Registry is the set of custom functions served by the process. It is
// populated at startup and read-only afterwards, so lookups need no lock.
type Registry struct {
	namespace string
	funcs     map[string]*Func
}

// NewRegistry creates an empty registry. A non-empty namespace prefixes
// every function id.
func NewRegistry(namespace string) *Registry {
	return &Registry{
		namespace: namespace,
		funcs:     make(map[string]*Func),
	}
}

// Register adds f to the registry.
func (r *Registry) Register(f Func) error {
	if !nameRe.MatchString(f.Name) {
		return domain.ErrInvalidName.WithDetailsf("function name %q", f.Name)
	}
	if f.Impl == nil {
		return domain.ErrInvalidArguments.WithDetailsf("function %s has no implementation", f.Name)
	}
	if _, ok := r.funcs[f.Name]; ok {
		return domain.ErrInvalidName.WithDetailsf("function %s is already registered", f.Name)
	}

	optional := false
	for i, p := range f.Params {
		if !nameRe.MatchString(p.Name) {
			return domain.ErrInvalidName.WithDetailsf("parameter %q of %s", p.Name, f.Name)
		}
		switch p.Kind {
		case "":
			f.Params[i].Kind = Scalar
		case Scalar, Matrix:
		default:
			return domain.ErrInvalidArguments.WithDetailsf("parameter %s of %s has kind %q", p.Name, f.Name, p.Kind)
		}
		if optional && !p.Optional {
			return domain.ErrInvalidArguments.WithDetailsf("required parameter %s of %s follows an optional one", p.Name, f.Name)
		}
		optional = p.Optional
	}

	r.funcs[f.Name] = &f
	return nil
}

// MustRegister is Register that panics on error. It is meant for
// registering built-in functions at startup.
func (r *Registry) MustRegister(fs ...Func) *Registry {
	for _, f := range fs {
		if err := r.Register(f); err != nil {
			panic(err)
		}
	}
	return r
}

// Lookup finds a function by name, case-insensitively.
func (r *Registry) Lookup(name string) (*Func, bool) {
	f, ok := r.funcs[strings.ToLower(name)]
	return f, ok
}

// Funcs returns the registered functions sorted by name.
func (r *Registry) Funcs() []*Func {
	out := make([]*Func, 0, len(r.funcs))
	for _, f := range r.funcs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Namespace returns the id prefix of the registry.
func (r *Registry) Namespace() string {
	return r.namespace
}
