package roi

import "roilab/pkg/geometry"

// anchorOwner is the shape a control point belongs to. Moving an anchor goes
// through the owner so dependent anchors stay consistent and the shape
// primitive is recomputed.
type anchorOwner interface {
	anchorMoved(a *Anchor)
}

// Anchor is a draggable control point defining part of a shape's geometry.
type Anchor struct {
	owner anchorOwner
	index int
	pos   geometry.Point3D
}

func newAnchor(owner anchorOwner, index int, x, y, z float64) *Anchor {
	return &Anchor{owner: owner, index: index, pos: geometry.Point3D{X: x, Y: y, Z: z}}
}

// Position returns the anchor position.
func (a *Anchor) Position() geometry.Point3D { return a.pos }

// X returns the anchor X coordinate.
func (a *Anchor) X() float64 { return a.pos.X }

// Y returns the anchor Y coordinate.
func (a *Anchor) Y() float64 { return a.pos.Y }

// Z returns the anchor Z coordinate.
func (a *Anchor) Z() float64 { return a.pos.Z }

// Index returns the anchor's position in the owner's control point list.
func (a *Anchor) Index() int { return a.index }

// MoveTo repositions the anchor and notifies the owning shape. The owner
// repositions dependent anchors and recomputes its primitive; a single
// collapsed change event is published when the move happens inside a
// BeginUpdate/EndUpdate bracket.
func (a *Anchor) MoveTo(x, y, z float64) {
	a.pos = geometry.Point3D{X: x, Y: y, Z: z}
	a.owner.anchorMoved(a)
}

// set repositions the anchor without notifying the owner. Used by shapes
// while adjusting dependent anchors.
func (a *Anchor) set(x, y, z float64) {
	a.pos = geometry.Point3D{X: x, Y: y, Z: z}
}
