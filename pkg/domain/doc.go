/*
Package domain contains the core tree model of the Arbor engine.

It defines the forest of named nodes and the pure operations that locate and
mutate nodes by identity. Nothing in this package performs I/O: persistence,
id generation and rendering live behind the ports and adapters.

# Key Entities

  - Node: a named element with an opaque id, ordered children and an expanded flag.
  - Tree: the ordered sequence of root-level nodes (a forest).
  - TreeDiff: the ids touched by a mutation, for reporting to callers.
  - LifecycleHooks: callbacks fired by the engine on mutations and store access.

# Snapshots

Every mutation returns a new Tree. Only the nodes on the path from the root to
the mutated node are copied; untouched siblings and subtrees are shared with the
previous snapshot. Callers must treat a Tree as read-only.
*/
package domain
