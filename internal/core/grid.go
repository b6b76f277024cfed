package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedMap reports an unreadable obstacle map.
var ErrMalformedMap = errors.New("malformed map")

// Cell addresses a grid cell by 0-based row and column.
type Cell struct {
	Row, Col int
}

// Add returns the cell offset by (dr, dc).
func (c Cell) Add(dr, dc int) Cell {
	return Cell{Row: c.Row + dr, Col: c.Col + dc}
}

// Grid is a rectangular obstacle map. It is immutable after construction
// and safe to share between goroutines.
type Grid struct {
	rows, cols int
	obstacle   [][]bool
}

// NewGrid builds a grid from rows of 0 (free) / 1 (obstacle) values.
func NewGrid(rows [][]int) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrMalformedMap)
	}
	cols := len(rows[0])
	g := &Grid{rows: len(rows), cols: cols, obstacle: make([][]bool, len(rows))}
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedMap, i, len(row), cols)
		}
		g.obstacle[i] = make([]bool, cols)
		for j, v := range row {
			switch v {
			case 0:
			case 1:
				g.obstacle[i][j] = true
			default:
				return nil, fmt.Errorf("%w: cell (%d,%d) holds %d, want 0 or 1", ErrMalformedMap, i, j, v)
			}
		}
	}
	return g, nil
}

// ParseMap reads the text map format: one line per row, space-separated
// 0 (free) / 1 (obstacle) values. Blank lines are skipped.
func ParseMap(r io.Reader) (*Grid, error) {
	var rows [][]int
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]int, len(fields))
		for j, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %q is not an integer", ErrMalformedMap, line, f)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewGrid(rows)
}

// LoadMap reads an obstacle map file.
func LoadMap(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := ParseMap(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of grid columns.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

// IsFree reports whether c is on the grid and not an obstacle.
func (g *Grid) IsFree(c Cell) bool {
	return g.InBounds(c) && !g.obstacle[c.Row][c.Col]
}

// FreeCells returns every free cell in row-major order.
func (g *Grid) FreeCells() []Cell {
	cells := make([]Cell, 0, g.rows*g.cols)
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			if !g.obstacle[i][j] {
				cells = append(cells, Cell{Row: i, Col: j})
			}
		}
	}
	return cells
}

// Text renders the grid in the map file format. ParseMap round-trips it.
func (g *Grid) Text() string {
	var b strings.Builder
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			if g.obstacle[i][j] {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
