package models

import (
	"encoding/json"
	"fmt"
)

// EntityKind identifies which tracked entity a change event describes.
type EntityKind string

const (
	EntityParticipant EntityKind = "participant"
	EntityItem        EntityKind = "item"
	EntityClaim       EntityKind = "claim"
)

// OpKind identifies the mutation a change event carries.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// ChangeEvent is one inbound notification from the change stream. Delivery
// is at-least-once with no ordering guarantee, so consumers must apply events
// idempotently and commutatively.
//
// New carries the record after the mutation (insert, update); Old carries the
// record before it (update, delete). Payloads are raw JSON and are validated
// by the reducer, never trusted.
type ChangeEvent struct {
	Entity EntityKind      `json:"entity"`
	Op     OpKind          `json:"op"`
	New    json.RawMessage `json:"new,omitempty"`
	Old    json.RawMessage `json:"old,omitempty"`
}

func mustRaw(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// Domain models always marshal; a failure here is a programming error.
		panic(fmt.Sprintf("models: marshal change payload: %v", err))
	}
	return b
}

// ParticipantEvent builds a participant change event.
func ParticipantEvent(op OpKind, p Participant) ChangeEvent {
	ev := ChangeEvent{Entity: EntityParticipant, Op: op}
	if op == OpDelete {
		ev.Old = mustRaw(p)
	} else {
		ev.New = mustRaw(p)
	}
	return ev
}

// ItemEvent builds an item change event.
func ItemEvent(op OpKind, it Item) ChangeEvent {
	ev := ChangeEvent{Entity: EntityItem, Op: op}
	if op == OpDelete {
		ev.Old = mustRaw(it)
	} else {
		ev.New = mustRaw(it)
	}
	return ev
}

// ClaimEvent builds a claim change event.
func ClaimEvent(op OpKind, c Claim) ChangeEvent {
	ev := ChangeEvent{Entity: EntityClaim, Op: op}
	if op == OpDelete {
		ev.Old = mustRaw(c)
	} else {
		ev.New = mustRaw(c)
	}
	return ev
}
