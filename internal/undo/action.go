// Package undo records scene mutations in a bounded log so they can be
// reverted and re-applied.
package undo

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/glowplan/internal/scene"
)

// Action is one reversible scene mutation. The set of implementations is
// closed: Add, Delete, Move and Resize.
type Action interface {
	// Type returns the log name, for example "ADD_LIGHT_STRING".
	Type() string
	isAction()
}

// Add records that Entity was appended to the scene.
type Add struct {
	Entity scene.Entity
}

// Delete records that Entity was removed from position Index of its
// collection.
type Delete struct {
	Entity      scene.Entity
	Index       int
	WasSelected bool
}

// Move records a change of position.
type Move struct {
	Kind     scene.Kind
	EntityID string
	Before   scene.Placement
	After    scene.Placement
}

// Resize records a change of size.
type Resize struct {
	Kind     scene.Kind
	EntityID string
	Before   scene.Placement
	After    scene.Placement
}

func (Add) isAction()    {}
func (Delete) isAction() {}
func (Move) isAction()   {}
func (Resize) isAction() {}

func (a Add) Type() string    { return typeName("ADD", a.Entity.EntityKind()) }
func (a Delete) Type() string { return typeName("DELETE", a.Entity.EntityKind()) }
func (a Move) Type() string   { return typeName("MOVE", a.Kind) }
func (a Resize) Type() string { return typeName("RESIZE", a.Kind) }

func typeName(op string, k scene.Kind) string {
	return op + "_" + strings.ToUpper(k.String())
}

// Op selects which action a move bracket records.
type Op int

const (
	OpMove Op = iota
	OpResize
)

func (o Op) String() string {
	if o == OpResize {
		return "resize"
	}
	return "move"
}

// Entry is an immutable log record.
type Entry struct {
	ID        string
	Action    Action
	Timestamp time.Time
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s", e.Action.Type(), entityID(e.Action))
}

func entityID(a Action) string {
	switch v := a.(type) {
	case Add:
		return v.Entity.EntityID()
	case Delete:
		return v.Entity.EntityID()
	case Move:
		return v.EntityID
	case Resize:
		return v.EntityID
	}
	return ""
}
