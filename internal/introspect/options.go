package introspect

// Option configures introspection behavior.
type Option func(*options)

type options struct {
	schemas       []string
	excludeTables []string
}

func defaultOptions() *options {
	return &options{
		schemas: []string{"public"},
	}
}

// WithSchemas specifies which database schemas to introspect.
// If not specified, defaults to ["public"].
func WithSchemas(schemas ...string) Option {
	return func(o *options) {
		if len(schemas) > 0 {
			o.schemas = schemas
		}
	}
}

// WithExcludeTables specifies tables to leave out of the snapshot. Repeated
// options accumulate.
func WithExcludeTables(tables ...string) Option {
	return func(o *options) {
		o.excludeTables = append(o.excludeTables, tables...)
	}
}
