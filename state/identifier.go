package state

// Identifier resolves to a registered store name. Exactly two
// implementations exist: Name, a literal store name, and Descriptor, the
// static registration identity a store type exposes. Both converge on the
// same name-keyed lookup; no runtime type inspection is involved.
type Identifier interface {
	storeName() string
}

// Name identifies a store by its literal registry key.
type Name string

func (n Name) storeName() string { return string(n) }

// Descriptor is the canonical registration identity of a store type. Store
// packages expose one as a package-level var (e.g. stores.Volume) so
// callers can resolve a store without spelling its name.
type Descriptor struct {
	// Name is the unique key the store registers under.
	Name string
}

func (d Descriptor) storeName() string { return d.Name }
