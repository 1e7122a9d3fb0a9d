package game

// CoordinateTranslator maps between (x, y) grid positions and flat field
// indexes. Translation does no bounds checking; use Contains for that.
type CoordinateTranslator struct {
	Width  int
	Height int
}

func NewCoordinateTranslator(width, height int) *CoordinateTranslator {
	return &CoordinateTranslator{Width: width, Height: height}
}

func (t *CoordinateTranslator) Resize(width, height int) {
	t.Width = width
	t.Height = height
}

func (t *CoordinateTranslator) XYToIndex(x, y int) int {
	return y*t.Width + x
}

func (t *CoordinateTranslator) IndexToXY(index int) (int, int) {
	return index % t.Width, index / t.Width
}

func (t *CoordinateTranslator) Contains(x, y int) bool {
	return x >= 0 && x < t.Width && y >= 0 && y < t.Height
}
