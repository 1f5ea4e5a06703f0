// Package modindex implements the Module Index (§4.E): the
// bidirectional name<->file maps for module interfaces and
// implementation units, plus the set of partitions registered under
// each primary module, consulted by the resolver and emitter.
package modindex

import (
	"github.com/TheVeryDarkness/umake/model"
	"github.com/TheVeryDarkness/umake/oset"
)

// Index holds the three maps that are always read together (§9): the
// provider map, the implementer map, and the per-primary partition
// sets.
type Index struct {
	moduleByName        map[string]string
	implByName           map[string]string
	partitionsByPrimary  map[string]*oset.Set[string]
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		moduleByName:        map[string]string{},
		implByName:          map[string]string{},
		partitionsByPrimary: map[string]*oset.Set[string]{},
	}
}

// RegisterProvide records that path provides module name, enforcing
// injectivity (§4.E, P4): registering the same name under a
// different path is a DuplicateProvide error. Registering the same
// (name, path) pair twice (e.g. reloading from cache) is a no-op.
func (idx *Index) RegisterProvide(name, path string) error {
	if name == "" {
		return nil
	}
	if existing, ok := idx.moduleByName[name]; ok && existing != path {
		return model.New(model.KindDuplicateProvide, path,
			"module %q already provided by %q", name, existing)
	}
	idx.moduleByName[name] = path
	return nil
}

// RegisterImplement records that path implements module name, with
// the same injectivity guarantee as RegisterProvide.
func (idx *Index) RegisterImplement(name, path string) error {
	if name == "" {
		return nil
	}
	if existing, ok := idx.implByName[name]; ok && existing != path {
		return model.New(model.KindDuplicateImplement, path,
			"module %q already implemented by %q", name, existing)
	}
	idx.implByName[name] = path
	return nil
}

// AddPartition registers suffix (e.g. ":part") as a partition of
// primary. Called directly by the scanner as it encounters partition
// imports (§4.A), since partition membership does not require
// injectivity the way provide/implement registration does.
func (idx *Index) AddPartition(primary, suffix string) {
	set, ok := idx.partitionsByPrimary[primary]
	if !ok {
		set = oset.New[string]()
		idx.partitionsByPrimary[primary] = set
	}
	set.Add(suffix)
}

// ProviderOf returns the file that provides module name, if any.
func (idx *Index) ProviderOf(name string) (string, bool) {
	p, ok := idx.moduleByName[name]
	return p, ok
}

// ImplementerOf returns the file that implements module name, if any.
func (idx *Index) ImplementerOf(name string) (string, bool) {
	p, ok := idx.implByName[name]
	return p, ok
}

// InterfaceOf returns the file providing implementedModule (the
// module an implementation unit implements), if that interface has
// been indexed. It is a lookup by module name, the same as ProviderOf.
func (idx *Index) InterfaceOf(implementedModule string) (string, bool) {
	return idx.ProviderOf(implementedModule)
}

// Partitions returns the partition suffixes registered under primary,
// in first-registration order.
func (idx *Index) Partitions(primary string) []string {
	set, ok := idx.partitionsByPrimary[primary]
	if !ok {
		return nil
	}
	return set.Slice()
}

// HasPartitions reports whether primary has any registered partitions.
func (idx *Index) HasPartitions(primary string) bool {
	set, ok := idx.partitionsByPrimary[primary]
	return ok && set.Len() > 0
}
