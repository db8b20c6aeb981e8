package parallel

// Grid is the global invocation space of one dispatch: the screen size
// rounded up to whole tiles.
type Grid struct {
	Width, Height int // global work size
	Tile          TileSize
	tilesX        int
	tilesY        int
}

// NewGrid builds the dispatch grid covering a width x height screen.
// A non-positive size yields an empty grid.
func NewGrid(width, height int, tile TileSize) Grid {
	if width <= 0 || height <= 0 || !tile.Valid() {
		return Grid{Tile: tile}
	}
	g := Grid{
		Width:  RoundUp(width, tile.X),
		Height: RoundUp(height, tile.Y),
		Tile:   tile,
	}
	g.tilesX = g.Width / tile.X
	g.tilesY = g.Height / tile.Y
	return g
}

// TileCount returns the number of work-groups.
func (g Grid) TileCount() int {
	return g.tilesX * g.tilesY
}

// TilesX returns the number of work-groups per row.
func (g Grid) TilesX() int {
	return g.tilesX
}

// TilesY returns the number of work-group rows.
func (g Grid) TilesY() int {
	return g.tilesY
}

// TileAt returns work-group (tx, ty).
func (g Grid) TileAt(tx, ty int) Tile {
	return Tile{
		X:       tx,
		Y:       ty,
		OriginX: tx * g.Tile.X,
		OriginY: ty * g.Tile.Y,
		Width:   g.Tile.X,
		Height:  g.Tile.Y,
	}
}

// Tiles returns all work-groups in row-major order.
func (g Grid) Tiles() []Tile {
	tiles := make([]Tile, 0, g.TileCount())
	for ty := range g.tilesY {
		for tx := range g.tilesX {
			tiles = append(tiles, g.TileAt(tx, ty))
		}
	}
	return tiles
}

// Dispatch invokes fn(x, y) once for every invocation of g, one pool task
// per tile, and returns when all invocations have completed. Invocation
// order is unspecified.
func Dispatch(pool *WorkerPool, g Grid, fn func(x, y int)) {
	tiles := g.Tiles()
	if len(tiles) == 0 {
		return
	}
	tasks := make([]func(), len(tiles))
	for i, t := range tiles {
		tasks[i] = func() {
			for y := t.OriginY; y < t.OriginY+t.Height; y++ {
				for x := t.OriginX; x < t.OriginX+t.Width; x++ {
					fn(x, y)
				}
			}
		}
	}
	pool.ExecuteAll(tasks)
}
