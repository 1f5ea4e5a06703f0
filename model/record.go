// Package model defines the data shapes shared by every stage of the
// scanning pipeline: the direct dependency record produced by the
// scanner, its JSON wire form used by the cache store, and the
// emitted build record produced by the topological emitter.
package model

import (
	"encoding/json"

	"github.com/TheVeryDarkness/umake/oset"
)

// Record is one file's direct dependency record (§3, §4.A). All sets
// are insertion-ordered so downstream REFERENCE/DEPEND emission stays
// deterministic even though the wire format does not require it.
type Record struct {
	// Time is the scan timestamp, seconds since epoch.
	Time float64

	HeadersLibrary *oset.Set[string]
	HeadersLocal   *oset.Set[string]

	ModulesModule  *oset.Set[string]
	ModulesLibrary *oset.Set[string]
	ModulesLocal   *oset.Set[string]

	// Provide is the module name exported by `export module X;`, or
	// "" if this file does not provide a module.
	Provide string
	// Implement is the module name implemented by a bare `module X;`,
	// or "" if this file is not an implementation unit.
	Implement string

	Sources *oset.Set[string]
}

// NewRecord returns a Record with every set field initialized, ready
// for the scanner to populate.
func NewRecord() *Record {
	return &Record{
		HeadersLibrary: oset.New[string](),
		HeadersLocal:   oset.New[string](),
		ModulesModule:  oset.New[string](),
		ModulesLibrary: oset.New[string](),
		ModulesLocal:   oset.New[string](),
		Sources:        oset.New[string](),
	}
}

// wireRecord mirrors the umakeCache.json schema exactly (§6); it is
// the only place the nested on-disk shape needs to be known.
type wireRecord struct {
	Time    float64 `json:"time"`
	Headers struct {
		Library []string `json:"library"`
		Local   []string `json:"local"`
	} `json:"headers"`
	Modules struct {
		Module  []string `json:"module"`
		Library []string `json:"library"`
		Local   []string `json:"local"`
	} `json:"modules"`
	Provide   *string `json:"provide"`
	Implement *string `json:"implement"`
	Sources   struct {
		Sources []string `json:"sources"`
	} `json:"sources"`
}

// MarshalJSON serializes r in the normative umakeCache.json record shape.
func (r *Record) MarshalJSON() ([]byte, error) {
	var w wireRecord
	w.Time = r.Time
	w.Headers.Library = r.HeadersLibrary.Slice()
	w.Headers.Local = r.HeadersLocal.Slice()
	w.Modules.Module = r.ModulesModule.Slice()
	w.Modules.Library = r.ModulesLibrary.Slice()
	w.Modules.Local = r.ModulesLocal.Slice()
	if r.Provide != "" {
		w.Provide = &r.Provide
	}
	if r.Implement != "" {
		w.Implement = &r.Implement
	}
	w.Sources.Sources = r.Sources.Slice()
	return json.Marshal(w)
}

// UnmarshalJSON parses a record from its umakeCache.json shape.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Time = w.Time
	r.HeadersLibrary = oset.New(w.Headers.Library...)
	r.HeadersLocal = oset.New(w.Headers.Local...)
	r.ModulesModule = oset.New(w.Modules.Module...)
	r.ModulesLibrary = oset.New(w.Modules.Library...)
	r.ModulesLocal = oset.New(w.Modules.Local...)
	if w.Provide != nil {
		r.Provide = *w.Provide
	}
	if w.Implement != nil {
		r.Implement = *w.Implement
	}
	r.Sources = oset.New(w.Sources.Sources...)
	return nil
}

// Closure is the transitive closure record produced by the resolver
// for one file (§4.F): the union of modules.module and sources across
// every file reached from it.
type Closure struct {
	Modules *oset.Set[string]
	Sources *oset.Set[string]
}

// NewClosure returns an empty, ready-to-union Closure.
func NewClosure() *Closure {
	return &Closure{Modules: oset.New[string](), Sources: oset.New[string]()}
}

// EmitKind identifies which of the four manifest record kinds (§4.G)
// an EmitRecord represents.
type EmitKind int

const (
	EmitModule EmitKind = iota
	EmitImplement
	EmitTarget
	EmitObject
)

func (k EmitKind) String() string {
	switch k {
	case EmitModule:
		return "MODULE"
	case EmitImplement:
		return "IMPLEMENT"
	case EmitTarget:
		return "TARGET"
	case EmitObject:
		return "OBJECT"
	default:
		return "UNKNOWN"
	}
}

// ReferenceEntry is one module name in a REFERENCE clause, optionally
// followed by its partition-qualified names.
type ReferenceEntry struct {
	Module     string
	Partitions []string
}

// EmitRecord is one line of the build manifest (§3, §4.G).
type EmitRecord struct {
	Kind   EmitKind
	Name   string // module/target/object name
	Source string // root-relative source path

	// HasImplementMarker is true only for a MODULE record whose
	// module has registered partitions (rule 1 of §4.G).
	HasImplementMarker bool

	Depend    []string
	Reference []ReferenceEntry
}
