package graph

// DefaultNodeSize is assumed for nodes that carry no explicit size, e.g.
// when computing group bounding boxes.
var DefaultNodeSize = Size{W: 120, H: 48}

// GroupMargin is the padding a synthesized group keeps around the
// bounding box of its members.
const GroupMargin = 32.0

// DuplicateOffset is the position delta applied to duplicated nodes.
var DuplicateOffset = Vec2{X: 24, Y: 24}

// Vec2 is a point or delta on the canvas plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the component-wise sum of v and o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Size is a width/height pair in canvas units.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Rect is an axis-aligned rectangle on the canvas.
type Rect struct {
	Pos  Vec2 `json:"pos"`
	Size Size `json:"size"`
}

// Contains reports whether the point p lies inside r (edges inclusive).
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Pos.X && p.X <= r.Pos.X+r.Size.W &&
		p.Y >= r.Pos.Y && p.Y <= r.Pos.Y+r.Size.H
}

// Area returns the rectangle's area.
func (r Rect) Area() float64 {
	return r.Size.W * r.Size.H
}

// Expand returns r grown by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		Pos:  Vec2{X: r.Pos.X - margin, Y: r.Pos.Y - margin},
		Size: Size{W: r.Size.W + 2*margin, H: r.Size.H + 2*margin},
	}
}

// BoundsOf computes the bounding box of the given nodes. Nodes without an
// explicit size are assumed to be DefaultNodeSize. The second return is
// false when the slice is empty.
func BoundsOf(nodes []*Node) (Rect, bool) {
	if len(nodes) == 0 {
		return Rect{}, false
	}
	first := nodes[0].Bounds()
	minX, minY := first.Pos.X, first.Pos.Y
	maxX := first.Pos.X + first.Size.W
	maxY := first.Pos.Y + first.Size.H
	for _, n := range nodes[1:] {
		b := n.Bounds()
		if b.Pos.X < minX {
			minX = b.Pos.X
		}
		if b.Pos.Y < minY {
			minY = b.Pos.Y
		}
		if x := b.Pos.X + b.Size.W; x > maxX {
			maxX = x
		}
		if y := b.Pos.Y + b.Size.H; y > maxY {
			maxY = y
		}
	}
	return Rect{
		Pos:  Vec2{X: minX, Y: minY},
		Size: Size{W: maxX - minX, H: maxY - minY},
	}, true
}
