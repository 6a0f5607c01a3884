// Package models defines the core domain models for Split Party.
//
// # Entities
//
//   - Bill: one shared-expense session (restaurant, tax, tip)
//   - Item: a single priced line on the bill
//   - Participant: a person splitting the bill
//   - Claim: a participant's assertion that they consumed a given item
//   - Snapshot: a client's local in-memory view of one bill
//   - ChangeEvent: an inbound notification describing one insert/update/delete
//
// # Identity
//
// Bills are identified by UUID strings so a bill link can be shared before any
// participant exists. Items and participants use integer ids assigned by
// storage. Claims have no id of their own; they are keyed by the
// (participant, item) pair.
//
// # Ownership
//
// A Snapshot is exclusively owned by the session event loop that holds it.
// Nothing else mutates it: all changes are either a local optimistic update or
// a reduced inbound ChangeEvent.
package models
