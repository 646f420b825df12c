/*
Package ports defines the driven ports (interfaces) for the Arbor engine.

These interfaces decouple the tree engine from external implementations, so the
same engine can persist to memory, the filesystem, Redis or BadgerDB.

# Key Interfaces

  - BlobStore: a key-value store holding the serialized tree.
  - IDGenerator: produces opaque node identifiers.
*/
package ports
