package format

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-h5store/h5store"
)

// ArrayDocument is a JSON document of named arrays. Arrays at or under the
// threshold are stored inline. Larger arrays, and arrays holding values
// JSON cannot represent (NaN, ±Inf), are written to a companion container
// and referenced by dataset path:
//
//	{
//	  "store": "frames.h5",
//	  "arrays": {
//	    "Meta/Scale": {"dims": [2], "values": [0.5, 2]},
//	    "Frames/0": {"dims": [64, 64], "dataset": "Frames/0"}
//	  }
//	}
//
// The companion is Companion when set, otherwise the document's file name
// with its extension replaced by ".h5". Writing a document that needs a
// companion without either fails with ErrNoCompanion.
type ArrayDocument struct {
	Base

	// Policy decides which arrays are off-loaded. Nil means a policy at
	// h5store.DefaultThreshold; a zero threshold off-loads every non-empty
	// array.
	Policy    *h5store.ThresholdPolicy
	Companion string
	Logger    *zap.Logger
}

var _ FileFormat = (*ArrayDocument)(nil)

type documentJSON struct {
	Store  string               `json:"store,omitempty"`
	Arrays map[string]arrayJSON `json:"arrays"`
}

type arrayJSON struct {
	Dims    []uint64  `json:"dims"`
	Values  []float64 `json:"values,omitempty"`
	Dataset string    `json:"dataset,omitempty"`
}

func (a *ArrayDocument) Identifier() string { return "h5store-arrays" }
func (a *ArrayDocument) Name() string       { return "Array document" }

func (a *ArrayDocument) Description() string {
	return "JSON document of named float64 arrays; large arrays live in a companion .h5 container."
}

func (a *ArrayDocument) SpecificationURL() string { return "https://www.json.org/" }
func (a *ArrayDocument) FileExtensions() []string { return []string{"json"} }
func (a *ArrayDocument) MimeTypes() []string      { return []string{"application/json"} }

func (a *ArrayDocument) NewInstance() FileFormat {
	return &ArrayDocument{
		Policy:    a.Policy,
		Companion: a.Companion,
		Logger:    a.Logger,
	}
}

func (a *ArrayDocument) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *ArrayDocument) policy() *h5store.ThresholdPolicy {
	if a.Policy != nil {
		return a.Policy
	}
	p := new(h5store.ThresholdPolicy)
	p.SetThreshold(h5store.DefaultThreshold)
	return p
}

// DefaultCompanion returns the companion container used for a document
// written to name when no Companion is set.
func DefaultCompanion(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".h5"
}

// companionPath returns where the companion container lives for writing,
// and the reference recorded in the document. A companion beside the
// document is recorded by base name.
func (a *ArrayDocument) companionPath() (path, ref string, err error) {
	name := a.FileName()
	switch {
	case a.Companion != "":
		path = a.Companion
	case name != "":
		path = DefaultCompanion(name)
	default:
		return "", "", ErrNoCompanion
	}
	if name != "" && filepath.Dir(path) == filepath.Dir(name) {
		return path, filepath.Base(path), nil
	}
	return path, path, nil
}

// resolveCompanion locates the container referenced as ref by a document
// being read.
func (a *ArrayDocument) resolveCompanion(ref string) (string, error) {
	switch {
	case a.Companion != "":
		return a.Companion, nil
	case ref == "":
		return "", fmt.Errorf("%w: document names no store", ErrMalformed)
	case filepath.IsAbs(ref):
		return ref, nil
	case a.FileName() != "":
		return filepath.Join(filepath.Dir(a.FileName()), ref), nil
	}
	return "", ErrNoCompanion
}

func (a *ArrayDocument) offload(p *h5store.ThresholdPolicy, values []float64) bool {
	if p.ExceedsThresholdValues(values) {
		return true
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// Write encodes doc as indented JSON, writing large arrays to the
// companion container first. The companion is replaced, not merged.
func (a *ArrayDocument) Write(w io.Writer, doc *Document) error {
	p := a.policy()
	out := documentJSON{Arrays: make(map[string]arrayJSON, doc.Len())}

	var large []*Array
	for _, name := range doc.Names() {
		arr, _ := doc.Get(name)
		entry := arrayJSON{Dims: arr.Dims}
		if entry.Dims == nil {
			entry.Dims = []uint64{}
		}
		if a.offload(p, arr.Values) {
			entry.Dataset = name
			large = append(large, arr)
		} else {
			entry.Values = arr.Values
		}
		out.Arrays[name] = entry
	}

	if len(large) > 0 {
		path, ref, err := a.companionPath()
		if err != nil {
			return a.fail(fmt.Errorf("array %q: %w", large[0].Name, err))
		}
		if err := a.writeCompanion(path, large); err != nil {
			return a.fail(err)
		}
		out.Store = ref
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return a.fail(fmt.Errorf("encoding document: %w", err))
	}
	return nil
}

func (a *ArrayDocument) writeCompanion(path string, arrays []*Array) (err error) {
	s := h5store.New(
		h5store.WithLogger(a.logger()),
		h5store.WithThreshold(a.policy().Threshold()),
	)
	if err := s.Open(path, h5store.ReadWriteTruncate); err != nil {
		return fmt.Errorf("opening companion: %w", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing companion: %w", cerr)
		}
	}()

	for _, arr := range arrays {
		if err := s.WriteDense(arr.Name, arr.Dims, arr.Values); err != nil {
			return fmt.Errorf("array %q: %w", arr.Name, err)
		}
		a.logger().Debug("offloaded array",
			zap.String("name", arr.Name),
			zap.String("store", path),
			zap.Uint64s("dims", arr.Dims),
		)
	}
	return nil
}

// Read decodes a document and adds its arrays to doc. Referenced arrays
// are loaded from the companion container. doc is left unchanged on error.
func (a *ArrayDocument) Read(r io.Reader, doc *Document) error {
	var in documentJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return a.fail(fmt.Errorf("%w: %w", ErrMalformed, err))
	}

	names := make([]string, 0, len(in.Arrays))
	for name := range in.Arrays {
		names = append(names, name)
	}
	sort.Strings(names)

	staged := NewDocument()
	var store *h5store.Store
	defer func() {
		if store != nil {
			_ = store.Close()
		}
	}()

	for _, name := range names {
		entry := in.Arrays[name]
		if _, dup := staged.Get(name); dup {
			return a.fail(fmt.Errorf("%w: array %q is listed twice", ErrMalformed, canonicalName(name)))
		}
		if entry.Dataset == "" {
			if err := staged.Set(name, entry.Dims, entry.Values); err != nil {
				return a.fail(fmt.Errorf("%w: %w", ErrMalformed, err))
			}
			continue
		}
		if len(entry.Values) > 0 {
			return a.fail(fmt.Errorf("%w: array %q has both values and a dataset", ErrMalformed, name))
		}

		if store == nil {
			path, err := a.resolveCompanion(in.Store)
			if err != nil {
				return a.fail(fmt.Errorf("array %q: %w", name, err))
			}
			store = h5store.New(h5store.WithLogger(a.logger()))
			if err := store.Open(path, h5store.ReadOnly); err != nil {
				store = nil
				return a.fail(fmt.Errorf("opening companion: %w", err))
			}
		}

		dims, values, err := store.ReadDense(entry.Dataset)
		if err != nil {
			return a.fail(fmt.Errorf("array %q: %w", name, err))
		}
		if !slices.Equal(dims, entry.Dims) {
			return a.fail(fmt.Errorf("%w: array %q: document dimensions %v, stored %v",
				ErrMalformed, name, entry.Dims, dims))
		}
		if err := staged.Set(name, dims, values); err != nil {
			return a.fail(fmt.Errorf("%w: %w", ErrMalformed, err))
		}
	}

	for name := range staged.arrays {
		if err := doc.conflict(name); err != nil {
			return a.fail(err)
		}
	}
	if doc.arrays == nil {
		doc.arrays = make(map[string]*Array, staged.Len())
	}
	for name, arr := range staged.arrays {
		doc.arrays[name] = arr
	}
	return nil
}
