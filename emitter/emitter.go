// Package emitter implements the Topological Emitter (§4.G): a
// must-emit-one-per-pass algorithm that turns resolved records into
// an ordered build manifest of MODULE, IMPLEMENT, TARGET, and OBJECT
// records.
package emitter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/TheVeryDarkness/umake/modindex"
	"github.com/TheVeryDarkness/umake/model"
	"github.com/TheVeryDarkness/umake/oset"
	"github.com/TheVeryDarkness/umake/resolver"
)

// Target is one positional `<targetName> <sourcePath>` pair from the
// command line.
type Target struct {
	Name   string
	Source string
}

// Options configures one emission run.
type Options struct {
	Targets []Target
	// Order is the root-relative paths of every scanned file, in
	// discovery order (the walker's output order). It drives the
	// pending set's insertion order so output stays reproducible
	// across runs on the same input (§5); any path in Records but
	// absent from Order is appended afterward in sorted order as a
	// fallback.
	Order      []string
	AutoObject bool // --no-auto-obj inverted
	Records    map[string]*model.Record
	Idx        *modindex.Index
	Res        *resolver.Resolver
}

// pending describes one file awaiting emission.
type pending struct {
	path string
	kind model.EmitKind
	name string // module/target/implement name, as applicable
}

// Emit computes the ordered manifest for Options. It returns exactly
// one *model.EmitRecord per file in the pending set, in the order
// files become eligible, a CyclicImports error naming the files that
// never became eligible, or a CyclicDependency error propagated from
// the resolver when a pending file's closure re-enters a pure
// header-include cycle (§4.F, P6): module-import cycles and
// header-include cycles must both be reported, not just the former.
func Emit(opts Options) ([]*model.EmitRecord, error) {
	pend, order, err := buildPendingSet(opts)
	if err != nil {
		return nil, err
	}

	built := oset.New[string]()
	var out []*model.EmitRecord

	remaining := make(map[string]*pending, len(pend))
	for k, v := range pend {
		remaining[k] = v
	}

	for len(remaining) > 0 {
		emittedThisPass := false
		for _, path := range order {
			p, ok := remaining[path]
			if !ok {
				continue
			}
			if !ready(path, opts, built) {
				continue
			}
			rec, err := buildRecord(path, p, opts, built)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
			built.Add(path)
			delete(remaining, path)
			emittedThisPass = true
		}
		if !emittedThisPass {
			stuck := make([]string, 0, len(remaining))
			for _, path := range order {
				if _, ok := remaining[path]; ok {
					stuck = append(stuck, path)
				}
			}
			return nil, model.New(model.KindCyclicImports, strings.Join(stuck, ", "),
				"cyclic import dependency among %d files", len(stuck))
		}
	}
	return out, nil
}

// buildPendingSet collects the files requiring emission (§4.G): every
// target root, every module provider, every implementer, and (if
// auto-object inference is on) every file reached via the sources
// closure of any of the above. A cyclic closure encountered while
// seeding auto-object records is a fatal error, not a skip.
func buildPendingSet(opts Options) (map[string]*pending, []string, error) {
	pend := map[string]*pending{}
	var order []string

	add := func(path string, kind model.EmitKind, name string) {
		if _, ok := pend[path]; ok {
			return
		}
		pend[path] = &pending{path: path, kind: kind, name: name}
		order = append(order, path)
	}

	covered := map[string]struct{}{}
	paths := make([]string, 0, len(opts.Records))
	for _, path := range opts.Order {
		if _, ok := opts.Records[path]; !ok {
			continue
		}
		if _, dup := covered[path]; dup {
			continue
		}
		covered[path] = struct{}{}
		paths = append(paths, path)
	}
	var leftover []string
	for path := range opts.Records {
		if _, ok := covered[path]; !ok {
			leftover = append(leftover, path)
		}
	}
	sort.Strings(leftover)
	paths = append(paths, leftover...)

	for _, t := range opts.Targets {
		add(t.Source, model.EmitTarget, t.Name)
	}
	for _, path := range paths {
		if rec := opts.Records[path]; rec.Provide != "" {
			add(path, model.EmitModule, rec.Provide)
		}
	}
	for _, path := range paths {
		if rec := opts.Records[path]; rec.Implement != "" {
			if _, already := pend[path]; !already {
				add(path, model.EmitImplement, rec.Implement)
			}
		}
	}

	if opts.AutoObject {
		// Auto-object inference: every file reached via the sources
		// closure of anything already pending gets an OBJECT record,
		// unless it already has a richer kind.
		var seedPaths []string
		for _, path := range order {
			seedPaths = append(seedPaths, path)
		}
		for _, path := range seedPaths {
			c, err := opts.Res.Closure(path)
			if err != nil {
				return nil, nil, err
			}
			for _, src := range c.Sources.Slice() {
				add(src, model.EmitObject, "")
			}
		}
	}

	return pend, order, nil
}

// ready reports whether path's dependencies are already in built:
// every module in its direct modules.module must be provided by a
// built file, and (for an implementation unit) its interface must be
// built.
func ready(path string, opts Options, built *oset.Set[string]) bool {
	rec, ok := opts.Records[path]
	if !ok {
		return true
	}
	// Gate on F's own direct modules.module, not its transitive
	// closure (§4.G): every module F imports must already be built.
	for _, m := range rec.ModulesModule.Slice() {
		provider, ok := opts.Idx.ProviderOf(m)
		if !ok {
			// absent from the index: silently skipped, consistent
			// with the MissingModule warning-only handling (§4.F).
			continue
		}
		if !built.Has(provider) {
			return false
		}
	}
	if rec.Implement != "" {
		if iface, ok := opts.Idx.InterfaceOf(rec.Implement); ok && !built.Has(iface) {
			return false
		}
	}
	return true
}

// buildRecord renders path's EmitRecord per the kind selection and
// DEPEND/REFERENCE construction rules of §4.G. A cyclic closure
// (§4.F, P6) is returned as a fatal error rather than silently
// producing a record with an incomplete DEPEND clause.
func buildRecord(path string, p *pending, opts Options, built *oset.Set[string]) (*model.EmitRecord, error) {
	rec := opts.Records[path]

	out := &model.EmitRecord{Source: path}

	switch {
	case rec != nil && rec.Provide != "":
		out.Kind = model.EmitModule
		out.Name = rec.Provide
		out.HasImplementMarker = opts.Idx.HasPartitions(rec.Provide)
	case p.kind == model.EmitTarget:
		out.Kind = model.EmitTarget
		out.Name = p.name
	case rec != nil && rec.Implement != "":
		out.Kind = model.EmitImplement
		out.Name = rec.Implement
	default:
		out.Kind = model.EmitObject
		out.Name = escapeObjectName(path)
	}

	if rec == nil {
		return out, nil
	}

	closure, err := opts.Res.Closure(path)
	if err != nil {
		return nil, err
	}
	for _, src := range closure.Sources.Slice() {
		if src == path {
			continue
		}
		out.Depend = append(out.Depend, escapeObjectName(src))
	}

	for _, m := range rec.ModulesModule.Slice() {
		if _, ok := opts.Idx.ProviderOf(m); !ok {
			continue
		}
		entry := model.ReferenceEntry{Module: m}
		if opts.Idx.HasPartitions(m) {
			entry.Partitions = opts.Idx.Partitions(m)
		}
		out.Reference = append(out.Reference, entry)
	}

	return out, nil
}

func escapeObjectName(path string) string {
	r := strings.NewReplacer("/", "__", "\\", "__")
	return r.Replace(path)
}

// Format renders rec as one manifest line per §4.G/§6, without the
// trailing ";\n" record separator.
func Format(rec *model.EmitRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s SOURCE %s", rec.Kind, rec.Name, rec.Source)
	if rec.HasImplementMarker {
		b.WriteString(" IMPLEMENT")
	}
	if len(rec.Depend) > 0 {
		fmt.Fprintf(&b, " DEPEND %s", strings.Join(rec.Depend, " "))
	}
	if len(rec.Reference) > 0 {
		b.WriteString(" REFERENCE")
		for _, e := range rec.Reference {
			fmt.Fprintf(&b, " %s", e.Module)
			for _, p := range e.Partitions {
				fmt.Fprintf(&b, " %s", p)
			}
		}
	}
	return b.String()
}

// FormatManifest joins every record with the ";\n" separator required
// by §4.G, with no trailing separator after the final record.
func FormatManifest(recs []*model.EmitRecord) string {
	lines := make([]string, len(recs))
	for i, r := range recs {
		lines[i] = Format(r)
	}
	return strings.Join(lines, ";\n")
}
