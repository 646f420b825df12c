package domain

import (
	"context"
	"time"
)

// Command names the mutation that was requested.
type Command string

const (
	CommandAdd    Command = "add"
	CommandRename Command = "rename"
	CommandDelete Command = "delete"
	CommandToggle Command = "toggle"
)

// PersistOp names the store access that was attempted.
type PersistOp string

const (
	PersistLoad PersistOp = "load"
	PersistSave PersistOp = "save"
)

// MutationEvent describes a command applied to the tree.
type MutationEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Command   Command   `json:"command"`
	NodeID    string    `json:"node_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	// Changed is false when the command was a no-op (unknown id, same value).
	Changed bool `json:"changed"`
	// Size is the number of nodes after the command.
	Size int `json:"size"`
}

// PersistEvent describes a read or write against the durable store.
type PersistEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Op        PersistOp `json:"op"`
	Key       string    `json:"key"`
	Bytes     int       `json:"bytes"`
	Err       error     `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnMutation func(context.Context, *MutationEvent)
	OnPersist  func(context.Context, *PersistEvent)
}
