package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RootSentinel is the target folder id the backend reads as "no parent".
const RootSentinel = "root"

// ErrSelfNest is returned when a folder is dropped onto itself.
var ErrSelfNest = errors.New("cannot move a folder into itself")

// MoveRequest is a validated reparenting request.
type MoveRequest struct {
	ItemID         string
	Kind           Kind
	TargetFolderID string
}

// NewMoveRequest validates a drop and normalizes an empty target to RootSentinel.
func NewMoveRequest(itemID string, kind Kind, targetFolderID string) (MoveRequest, error) {
	targetFolderID = strings.TrimSpace(targetFolderID)
	if targetFolderID == "" {
		targetFolderID = RootSentinel
	}
	if itemID == "" {
		return MoveRequest{}, errors.New("move: empty item id")
	}
	if _, ok := ParseKind(string(kind)); !ok {
		return MoveRequest{}, fmt.Errorf("move: unknown kind %q", kind)
	}
	if kind == KindFolder && itemID == targetFolderID {
		return MoveRequest{}, ErrSelfNest
	}
	return MoveRequest{ItemID: itemID, Kind: kind, TargetFolderID: targetFolderID}, nil
}

// Mover issues the move request to the backend.
type Mover interface {
	Move(ctx context.Context, itemID string, kind Kind, targetFolderID string) error
}

// grab is an item picked up but not yet dropped.
type grab struct {
	id   string
	kind Kind
}

// DragDrop turns grab/drop gestures into move requests. The tree is never
// mutated locally; a successful move is followed by a Store refresh.
type DragDrop struct {
	mover    Mover
	store    *Store
	dragging *grab
}

// NewDragDrop creates a controller that moves through mover and refreshes store.
func NewDragDrop(mover Mover, store *Store) *DragDrop {
	return &DragDrop{mover: mover, store: store}
}

// Start picks up an item.
func (d *DragDrop) Start(id string, kind Kind) {
	d.dragging = &grab{id: id, kind: kind}
}

// Dragging returns the held item, if any.
func (d *DragDrop) Dragging() (id string, kind Kind, ok bool) {
	if d.dragging == nil {
		return "", "", false
	}
	return d.dragging.id, d.dragging.kind, true
}

// Cancel drops the held item without moving it.
func (d *DragDrop) Cancel() { d.dragging = nil }

// Drop moves the held item into targetFolderID ("" for root) and releases it.
func (d *DragDrop) Drop(ctx context.Context, targetFolderID string) error {
	if d.dragging == nil {
		return errors.New("move: nothing grabbed")
	}
	g := *d.dragging
	d.dragging = nil
	return d.OnDrop(ctx, g.id, g.kind, targetFolderID)
}

// OnDrop validates the drop, sends the move, then refreshes the store. Errors
// from the backend are returned as-is so their detail reaches the user.
func (d *DragDrop) OnDrop(ctx context.Context, draggedID string, kind Kind, targetFolderID string) error {
	req, err := NewMoveRequest(draggedID, kind, targetFolderID)
	if err != nil {
		return err
	}
	if err := d.mover.Move(ctx, req.ItemID, req.Kind, req.TargetFolderID); err != nil {
		return err
	}
	if d.store == nil {
		return nil
	}
	// The move itself succeeded; a failed refresh is logged by the store.
	_ = d.store.Refresh(ctx)
	return nil
}
