package pdf

// BoundingBox is a rectangle in page space, origin at the top-left.
type BoundingBox struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Width returns the width of the bounding box
func (b BoundingBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the height of the bounding box
func (b BoundingBox) Height() float64 {
	return b.Y1 - b.Y0
}

// Contains checks if a point is within the bounding box
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.X0 && x <= b.X1 && y >= b.Y0 && y <= b.Y1
}

// Metadata holds the document information dictionary entries the kiosk shows.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
}

// ObjectType identifies a drawable page object.
type ObjectType string

const (
	ObjectTypeText ObjectType = "text"
	ObjectTypeRect ObjectType = "rect"
)

// TextObject is one positioned run of text. Y is the baseline.
type TextObject struct {
	Text     string
	Font     string
	FontSize float64
	X        float64
	Y        float64
	Width    float64
}

// GetType returns ObjectTypeText.
func (t TextObject) GetType() ObjectType { return ObjectTypeText }

// RectObject is a rectangle path from the content stream.
type RectObject struct {
	BBox BoundingBox
}

// GetType returns ObjectTypeRect.
func (r RectObject) GetType() ObjectType { return ObjectTypeRect }

// Objects is the drawable content the pure-Go backends recover from a page.
type Objects struct {
	Texts []TextObject
	Rects []RectObject
}

// Empty reports whether the page yielded no drawable content.
func (o Objects) Empty() bool {
	return len(o.Texts) == 0 && len(o.Rects) == 0
}

// Default page size, US Letter in points, used when a page has no usable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)
