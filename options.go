package conftree

// Default directive key names.
const (
	DefaultImportsKey    = "imports"
	DefaultParametersKey = "parameters"
)

// Options controls how the processor treats directive keys in decoded
// documents. The zero value enables both directives under their default key
// names.
type Options struct {
	// ImportsKey is the top-level key holding import declarations. Empty
	// means "imports".
	ImportsKey string

	// ParametersKey is the top-level key holding parameter declarations.
	// Empty means "parameters".
	ParametersKey string

	// DisableImports turns import processing off. The imports key is then
	// kept in documents as plain data.
	DisableImports bool

	// DisableParameters turns parameter collection and placeholder
	// substitution off. The parameters key is then kept as plain data.
	DisableParameters bool
}

func (o Options) withDefaults() Options {
	if o.ImportsKey == "" {
		o.ImportsKey = DefaultImportsKey
	}

	if o.ParametersKey == "" {
		o.ParametersKey = DefaultParametersKey
	}

	return o
}
