package conftree

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	mapstruct "github.com/mitchellh/mapstructure"
)

const decoderTagName = "conf"

// Processor loads a configuration tree starting from one entry file, follows
// the imports the files declare, merges the decoded documents into a single
// tree and substitutes %name% placeholders from the collected parameter
// table.
//
// A Processor is reusable across sequential loads: all per-load state lives
// on the call stack. Concurrent use of one instance is not supported; give
// each goroutine its own.
type Processor struct {
	config   ProcessorConfig
	options  Options
	registry *Registry
	logger   *slog.Logger
}

// ProcessorConfig is a structure with configuration parameters for the
// processor.
type ProcessorConfig struct {
	// Decoders specifies the decoders available to the processor, tried in
	// order. When empty, DefaultDecoders is used.
	Decoders []Decoder

	// Cache, when set, short-circuits Load calls while its artifact is
	// fresh, and receives the merged tree afterwards.
	Cache Cache

	// Options controls directive key names and processing toggles.
	Options Options

	// Logger receives debug records of pipeline progress. When nil, logging
	// is disabled.
	Logger *slog.Logger
}

// Cache persists a merged configuration tree between loads.
type Cache interface {
	// IsFresh reports whether the artifact exists and is up to date with
	// every resource recorded on the last write.
	IsFresh() bool

	// Write persists the serialized tree together with the list of files it
	// was built from.
	Write(content []byte, resources []string) error

	// Path returns the artifact location.
	Path() string

	// Read decodes the persisted artifact.
	Read() (Value, error)
}

// loadState carries the mutable state of one load: decoded documents
// awaiting merge, the parameter table and the contributing file paths.
type loadState struct {
	configs   []Value
	params    *Mapping
	resources []string
	seen      map[string]struct{}
}

func newLoadState() *loadState {
	return &loadState{
		params: NewMapping(),
		seen:   make(map[string]struct{}),
	}
}

func (s *loadState) addResource(path string) {
	if _, ok := s.seen[path]; ok {
		return
	}

	s.seen[path] = struct{}{}
	s.resources = append(s.resources, path)
}

// NewProcessor method creates a new processor instance.
func NewProcessor(config ProcessorConfig) *Processor {
	logger := config.Logger

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Processor{
		config:  config,
		options: config.Options.withDefaults(),
		logger:  logger,
	}
}

// Load method loads the configuration tree rooted at the given entry file.
// When a cache is configured and fresh, the persisted artifact is returned
// without touching the sources; otherwise the full pipeline runs and its
// result is persisted through the cache before returning.
func (p *Processor) Load(path string) (Value, error) {
	cache := p.config.Cache

	if cache != nil && cache.IsFresh() {
		p.logger.Debug("configuration served from cache", "artifact", cache.Path())
		return cache.Read()
	}

	config, state, err := p.loadFile(path)

	if err != nil {
		return nil, err
	}

	if cache != nil {
		content, err := json.Marshal(config)

		if err != nil {
			return nil, fmt.Errorf("%s: cannot serialize configuration: %w",
				errPref, err)
		}

		if err := cache.Write(content, state.resources); err != nil {
			return nil, err
		}

		p.logger.Debug("configuration cached",
			"artifact", cache.Path(), "resources", len(state.resources))
	}

	return config, nil
}

// LoadFile method runs the load pipeline unconditionally, ignoring any
// configured cache.
func (p *Processor) LoadFile(path string) (Value, error) {
	config, _, err := p.loadFile(path)
	return config, err
}

func (p *Processor) loadFile(path string) (Value, *loadState, error) {
	state := newLoadState()

	if err := p.parseFile(state, path, ""); err != nil {
		return nil, nil, err
	}

	config, err := mergeAll(state.configs)

	if err != nil {
		return nil, nil, err
	}

	if !p.options.DisableParameters {
		if mapping, ok := config.(*Mapping); ok {
			if params, ok := mapping.Get(p.options.ParametersKey); ok {
				if paramsMap, ok := params.(*Mapping); ok {
					mergeParams(state.params, paramsMap)
					mapping.Delete(p.options.ParametersKey)
				}
			}
		}

		config = substitute(config, state.params)
	}

	p.logger.Debug("configuration loaded",
		"entry", path, "resources", len(state.resources))

	return config, state, nil
}

// parseFile decodes one file, collects its parameters, follows its imports
// and appends what remains of the document to the set awaiting merge. A
// non-empty key nests the document under that key.
func (p *Processor) parseFile(state *loadState, path, key string) error {
	decoder, err := p.Registry().Resolve(path)

	if err != nil {
		return err
	}

	doc, err := decoder.Decode(path)

	if err != nil {
		return err
	}

	p.logger.Debug("document decoded", "path", path)

	if mapping, ok := doc.(*Mapping); ok {
		if !p.options.DisableParameters {
			if params, ok := mapping.Get(p.options.ParametersKey); ok {
				if paramsMap, ok := params.(*Mapping); ok {
					substituted := substitute(paramsMap, state.params).(*Mapping)
					mergeParams(state.params, substituted)
					mapping.Delete(p.options.ParametersKey)
				}
			}
		}

		if !p.options.DisableImports {
			if err := p.processImports(state, mapping, path); err != nil {
				return err
			}
		}
	}

	if isEmpty(doc) {
		return nil
	}

	if key != "" {
		wrapper := NewMapping()
		wrapper.Set(key, doc)
		doc = wrapper
	}

	state.configs = append(state.configs, doc)
	state.addResource(path)

	return nil
}

// Registry method returns the processor's decoder registry, building it on
// first use.
func (p *Processor) Registry() *Registry {
	if p.registry == nil {
		decoders := p.config.Decoders

		if len(decoders) == 0 {
			decoders = DefaultDecoders()
		}

		p.registry = NewRegistry(decoders...)
	}

	return p.registry
}

// Cache method returns the configured cache, if any.
func (p *Processor) Cache() Cache {
	return p.config.Cache
}

// Options method returns the effective options, defaults applied.
func (p *Processor) Options() Options {
	return p.options
}

// Decoders method returns the decoders of the processor's registry.
func (p *Processor) Decoders() []Decoder {
	return p.Registry().Decoders()
}

// Decode method binds a configuration tree onto a structure. The conf tags
// defined on struct fields choose which keys map to which fields. Decoding
// is weakly typed: strings convert to numbers and booleans where the target
// field asks for it, single values convert to one-element slices, and so on.
func Decode(config Value, target any) error {
	decoder, err := mapstruct.NewDecoder(
		&mapstruct.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           target,
			TagName:          decoderTagName,
		},
	)

	if err != nil {
		return err
	}

	var raw any

	if config != nil {
		raw = config.Interface()
	}

	return decoder.Decode(raw)
}
