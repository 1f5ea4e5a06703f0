// Package resolver implements the Transitive Resolver (§4.F): a
// memoized depth-first closure computation over each file's local
// headers, partition imports, implementation-to-interface link, and
// module imports.
package resolver

import (
	"path"
	"strings"

	"github.com/TheVeryDarkness/umake/internal/logging"
	"github.com/TheVeryDarkness/umake/modindex"
	"github.com/TheVeryDarkness/umake/model"
	"github.com/TheVeryDarkness/umake/oset"
)

// Resolver computes and memoizes per-file closures over a fixed set of
// live direct dependency records.
type Resolver struct {
	records map[string]*model.Record
	idx     *modindex.Index
	log     *logging.Logger

	memo map[string]*model.Closure
}

// New builds a Resolver over records (root-relative path -> direct
// dependency record) and the Module Index populated by the Scan
// Driver.
func New(records map[string]*model.Record, idx *modindex.Index, log *logging.Logger) *Resolver {
	return &Resolver{
		records: records,
		idx:     idx,
		log:     log,
		memo:    map[string]*model.Closure{},
	}
}

// Closure returns F's transitive closure, computing and memoizing it
// on first request. Cycles are reported as a fatal CyclicDependency
// error naming the re-entered file.
func (r *Resolver) Closure(f string) (*model.Closure, error) {
	return r.closure(f, map[string]struct{}{})
}

func (r *Resolver) closure(f string, touched map[string]struct{}) (*model.Closure, error) {
	if c, ok := r.memo[f]; ok {
		return c, nil
	}
	if _, onStack := touched[f]; onStack {
		return nil, model.New(model.KindCyclicDependency, f, "cyclic dependency re-enters %q", f)
	}
	touched[f] = struct{}{}
	defer delete(touched, f)

	rec, ok := r.records[f]
	if !ok {
		return model.NewClosure(), nil
	}

	acc := model.NewClosure()
	// A file's closure includes its own direct modules.module and
	// sources fields (§3's Closure record definition) in addition to
	// everything transitively reached below.
	acc.Modules.Union(rec.ModulesModule)
	acc.Sources.Union(rec.Sources)

	// 1. every local header included by F, resolved relative to F's
	// directory and re-expressed relative to root.
	dir := path.Dir(f)
	for _, h := range rec.HeadersLocal.Slice() {
		child := path.Clean(path.Join(dir, h))
		if err := r.absorb(child, acc, touched); err != nil {
			return nil, err
		}
	}

	// 2. for each imported partition of a module unit F, the file
	// providing that partition.
	for _, m := range rec.ModulesModule.Slice() {
		if !strings.Contains(m, ":") {
			continue
		}
		if provider, ok := r.idx.ProviderOf(m); ok {
			if err := r.absorb(provider, acc, touched); err != nil {
				return nil, err
			}
		}
	}

	// 3. for an implementation unit, the file providing its interface.
	if rec.Implement != "" {
		if provider, ok := r.idx.InterfaceOf(rec.Implement); ok {
			if err := r.absorb(provider, acc, touched); err != nil {
				return nil, err
			}
		}
	}

	// 4. every non-partition imported module, looked up in the Module
	// Index. Misses are warned, not fatal.
	for _, m := range rec.ModulesModule.Slice() {
		if strings.Contains(m, ":") {
			continue
		}
		provider, ok := r.idx.ProviderOf(m)
		if !ok {
			r.log.Warning("%s: missing module %q", f, m)
			continue
		}
		if err := r.absorb(provider, acc, touched); err != nil {
			return nil, err
		}
	}

	r.memo[f] = acc
	return acc, nil
}

// absorb folds child's closure (which already includes child's own
// direct modules.module/sources, per closure's definition) into acc.
func (r *Resolver) absorb(child string, acc *model.Closure, touched map[string]struct{}) error {
	childClosure, err := r.closure(child, touched)
	if err != nil {
		return err
	}
	acc.Modules.Union(childClosure.Modules)
	acc.Sources.Union(childClosure.Sources)
	return nil
}
