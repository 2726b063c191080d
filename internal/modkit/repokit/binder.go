package repokit

// Binder is a tiny factory that binds a domain repo to a specific Source
type Binder[T any] interface {
	Bind(Source) T
}

// BindFunc lets you create a Binder from a function
type BindFunc[T any] func(Source) T

// Bind calls the underlying function
func (f BindFunc[T]) Bind(s Source) T { return f(s) }

// RequireSource panics early on programmer error (nil s)
func RequireSource(s Source) Source {
	if s == nil {
		panic("repokit: nil Source")
	}
	return s
}

// MustBind is a convenience that validates s then binds
func MustBind[T any](b Binder[T], s Source) T {
	return b.Bind(RequireSource(s))
}
