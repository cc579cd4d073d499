// Package models - registry for output parsers.
package models

import (
	"sort"
	"sync"

	"github.com/nvr-ai/go-yoloparse/models/postprocess"
	"github.com/nvr-ai/go-yoloparse/models/yolov7"
	"github.com/nvr-ai/go-yoloparse/tensors"
	"github.com/pkg/errors"
)

// ParseFunc is the parse-function prototype the hosting runtime calls for every frame.
//
// It returns false when the output could not be parsed; objects is then empty
// and the frame has no authoritative detections.
type ParseFunc func(
	layers []tensors.Layer,
	frame postprocess.Frame,
	params postprocess.DetectionParams,
	objects *[]postprocess.Object,
) bool

var (
	// ErrParserExists is returned when a name is registered twice.
	ErrParserExists = errors.New("parser already registered")
	// ErrParserNotFound is returned when a name has no registered parser.
	ErrParserNotFound = errors.New("parser not registered")
)

// Registry maps parse-function names to implementations.
//
// Prototype compatibility is enforced when a function is registered, so
// lookups on the per-frame path never fail on a signature mismatch.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]ParseFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]ParseFunc)}
}

// Register adds fn under name.
//
// Arguments:
//   - name: The lookup name, e.g. the DeepStream parse-bbox-func-name.
//   - fn: The parse function. Any value that is not a ParseFunc is rejected.
//
// Returns:
//   - An error if name is empty, fn is nil or has another signature, or name is taken.
func (r *Registry) Register(name string, fn any) error {
	if name == "" {
		return errors.New("parser name is empty")
	}

	var parse ParseFunc
	switch f := fn.(type) {
	case ParseFunc:
		parse = f
	case func([]tensors.Layer, postprocess.Frame, postprocess.DetectionParams, *[]postprocess.Object) bool:
		parse = f
	default:
		return errors.Errorf("parser %q does not match the parse function prototype: %T", name, fn)
	}
	if parse == nil {
		return errors.Errorf("parser %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.funcs[name]; ok {
		return errors.Wrap(ErrParserExists, name)
	}
	r.funcs[name] = parse
	return nil
}

// Lookup returns the parse function registered under name.
func (r *Registry) Lookup(name string) (ParseFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]
	if !ok {
		return nil, errors.Wrap(ErrParserNotFound, name)
	}
	return fn, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in parsers under their model name and
// their DeepStream symbol name.
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	for _, name := range []string{string(ModelNameYOLOv7), CustomParseFuncName} {
		if err := r.Register(name, ParseFunc(yolov7.ParseYolov7)); err != nil {
			panic(err)
		}
	}
	return r
}()

// NewParser returns the parse function registered in DefaultRegistry under name.
//
// Example:
//
// ```go
//
//	parse, err := models.NewParser(string(models.ModelNameYOLOv7))
//	if err != nil {
//	    log.Fatalf("Failed to find parser: %v", err)
//	}
//	var objects []postprocess.Object
//	ok := parse(layers, postprocess.Frame{Width: 640, Height: 640}, params, &objects)
//
// ```
func NewParser(name string) (ParseFunc, error) {
	return DefaultRegistry.Lookup(name)
}
