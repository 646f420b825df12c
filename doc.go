/*
Package arbor is a small hierarchical tree-state manager.

It keeps an in-memory forest of named nodes, applies add, rename, delete and
expand/collapse commands as immutable snapshots, and writes every change
through to a key-value store so the tree survives between sessions.

# Concept

The Engine is the single owner of the current Tree. A presentation layer
(CLI, HTTP API, MCP tools, or your own UI) asks the user for names, confirms
destructive actions, and then calls the engine with primitive commands. Each
command returns the new snapshot to render. Commands on unknown ids are silent
no-ops, so a caller never has to handle a "not found" error from the engine.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/adapters/memory"
	)

	func main() {
		ctx := context.Background()

		eng, err := arbor.New(memory.NewStore())
		if err != nil {
			log.Fatal(err)
		}
		if _, err := eng.Initialize(ctx); err != nil {
			log.Fatal(err)
		}

		tree := eng.AddNode(ctx, "", "Fruits")
		tree = eng.AddNode(ctx, tree[0].ID, "Apples")
		fmt.Println(tree[0].Children[0].Name) // Apples
	}

# Persistence

The tree is stored as a JSON array under a single key ("categoryTree" by
default). Stores implement ports.BlobStore; the module ships memory, file,
Redis and BadgerDB adapters, and an AES-GCM encryption middleware.

# Observability

Use WithLogger for structured logs and WithLifecycleHooks to receive an event
for every command and every store access. Package observability turns those
hooks into Prometheus metrics.
*/
package arbor
