package ports

// IDGenerator produces opaque node identifiers.
// Implementations should make collisions improbable; the engine still re-draws
// any id it has already issued.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a plain function to IDGenerator.
type IDGeneratorFunc func() string

// NewID calls f.
func (f IDGeneratorFunc) NewID() string {
	return f()
}
