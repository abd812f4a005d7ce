package conftree

// Decoder turns a configuration file into a configuration tree.
type Decoder interface {
	// Supports reports whether the decoder claims the given path, usually
	// by file extension.
	Supports(path string) bool

	// Decode reads and decodes the file at the given path.
	Decode(path string) (Value, error)
}

// Registry resolves decoders for configuration files. Decoders are tried in
// registration order and the first one that claims a path wins.
type Registry struct {
	decoders []Decoder
}

// NewRegistry creates a registry with the given decoders.
func NewRegistry(decoders ...Decoder) *Registry {
	return &Registry{decoders: decoders}
}

// Register appends a decoder to the registry.
func (r *Registry) Register(decoder Decoder) {
	r.decoders = append(r.decoders, decoder)
}

// Resolve returns the first registered decoder that claims the given path.
// When none does, an *UnsupportedFormatError is returned.
func (r *Registry) Resolve(path string) (Decoder, error) {
	for _, decoder := range r.decoders {
		if decoder.Supports(path) {
			return decoder, nil
		}
	}

	return nil, &UnsupportedFormatError{Path: path}
}

// Decoders returns the registered decoders in registration order.
func (r *Registry) Decoders() []Decoder {
	decoders := make([]Decoder, len(r.decoders))
	copy(decoders, r.decoders)

	return decoders
}

// DefaultDecoders returns the default decoder set: YAML, JSON and TOML.
func DefaultDecoders() []Decoder {
	return []Decoder{NewYAMLDecoder(), NewJSONDecoder(), NewTOMLDecoder()}
}
