package gcode

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// ErrBoardTooLarge is returned when a board cannot fit on an empty sheet in
// either orientation.
var ErrBoardTooLarge = errors.New("board does not fit on the sheet")

// Board is one rectangular wall piece to be cut from sheet stock.
type Board struct {
	Label  string  `json:"label"`
	Length float64 `json:"length"` // mm along the wall
	Width  float64 `json:"width"`  // mm, the shelf depth
}

// BoardsFromRuns turns wall runs into boards. Runs longer than maxLength are
// split into equal pieces, matching the purchase estimate.
func BoardsFromRuns(runs []model.WallRun, cellSize, maxLength, depth float64) []Board {
	var boards []Board
	for i, r := range runs {
		length := float64(r.Length) * cellSize
		if length <= 0 {
			continue
		}
		prefix := "V"
		if r.Horizontal {
			prefix = "H"
		}
		n := 1
		if maxLength > 0 {
			n = int(math.Ceil(length / maxLength))
		}
		for k := 0; k < n; k++ {
			label := fmt.Sprintf("%s%d", prefix, i+1)
			if n > 1 {
				label = fmt.Sprintf("%s%d.%d", prefix, i+1, k+1)
			}
			boards = append(boards, Board{Label: label, Length: length / float64(n), Width: depth})
		}
	}
	return boards
}

// Placement is a board positioned on a sheet. Rotated boards run along Y.
type Placement struct {
	Board   Board   `json:"board"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Rotated bool    `json:"rotated"`
}

// PlacedWidth returns the X extent of the placed board.
func (p Placement) PlacedWidth() float64 {
	if p.Rotated {
		return p.Board.Width
	}
	return p.Board.Length
}

// PlacedHeight returns the Y extent of the placed board.
func (p Placement) PlacedHeight() float64 {
	if p.Rotated {
		return p.Board.Length
	}
	return p.Board.Width
}

// Sheet is one stock sheet and the boards nested on it.
type Sheet struct {
	Index      int         `json:"index"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Placements []Placement `json:"placements"`
}

// Efficiency returns the percentage of the sheet area covered by boards.
func (s Sheet) Efficiency() float64 {
	area := s.Width * s.Height
	if area <= 0 {
		return 0
	}
	used := 0.0
	for _, p := range s.Placements {
		used += p.Board.Length * p.Board.Width
	}
	return used / area * 100
}

// NestOptions sizes the stock. Spacing is left between neighbouring boards
// and Margin along every sheet edge; both must cover the tool diameter for
// outside perimeter cuts.
type NestOptions struct {
	Width   float64
	Height  float64
	Spacing float64
	Margin  float64
}

// Nest places boards on as few sheets as it can, largest first, using a
// maximal-rectangles guillotine packer with best-area-fit.
func Nest(boards []Board, opts NestOptions) ([]Sheet, error) {
	usableW := opts.Width - 2*opts.Margin
	usableH := opts.Height - 2*opts.Margin
	if usableW <= 0 || usableH <= 0 {
		return nil, fmt.Errorf("sheet %.0fx%.0f leaves no room inside a %.1fmm margin", opts.Width, opts.Height, opts.Margin)
	}

	sorted := make([]Board, len(boards))
	copy(sorted, boards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Length*sorted[i].Width > sorted[j].Length*sorted[j].Width
	})

	var sheets []Sheet
	var packers []*guillotinePacker

	for _, b := range sorted {
		placed := false
		for i, gp := range packers {
			if pl, ok := gp.place(b); ok {
				sheets[i].Placements = append(sheets[i].Placements, pl)
				placed = true
				break
			}
		}
		if placed {
			continue
		}

		gp := newGuillotinePacker(rect{opts.Margin, opts.Margin, usableW, usableH}, opts.Spacing)
		pl, ok := gp.place(b)
		if !ok {
			return sheets, fmt.Errorf("%s (%.0fx%.0f mm): %w", b.Label, b.Length, b.Width, ErrBoardTooLarge)
		}
		packers = append(packers, gp)
		sheets = append(sheets, Sheet{
			Index:      len(sheets) + 1,
			Width:      opts.Width,
			Height:     opts.Height,
			Placements: []Placement{pl},
		})
	}
	return sheets, nil
}

// guillotinePacker keeps the free rectangles of one sheet and splits every
// rectangle a placement overlaps.
type guillotinePacker struct {
	freeRects []rect
	spacing   float64
}

type rect struct {
	x, y, w, h float64
}

func newGuillotinePacker(area rect, spacing float64) *guillotinePacker {
	return &guillotinePacker{
		freeRects: []rect{area},
		spacing:   spacing,
	}
}

// place inserts b lengthwise or rotated, whichever wastes less area.
func (gp *guillotinePacker) place(b Board) (Placement, bool) {
	fit := gp.bestFit(b.Length, b.Width)
	rotFit := gp.bestFit(b.Width, b.Length)
	rotated := rotFit >= 0 && (fit < 0 || rotFit < fit)
	if fit < 0 && !rotated {
		return Placement{}, false
	}

	w, h := b.Length, b.Width
	if rotated {
		w, h = h, w
	}
	ok, x, y := gp.insert(w, h)
	if !ok {
		return Placement{}, false
	}
	return Placement{Board: b, X: x, Y: y, Rotated: rotated}, true
}

// insert places a w x h piece in the best-area-fit free rectangle.
func (gp *guillotinePacker) insert(w, h float64) (bool, float64, float64) {
	bestIdx := -1
	bestAreaFit := float64(-1)
	ws := w + gp.spacing
	hs := h + gp.spacing

	for i, r := range gp.freeRects {
		if fitsIn(w, h, r) {
			areaFit := (r.w * r.h) - (w * h)
			if bestIdx < 0 || areaFit < bestAreaFit {
				bestIdx = i
				bestAreaFit = areaFit
			}
		}
	}

	if bestIdx < 0 {
		return false, 0, 0
	}

	chosen := gp.freeRects[bestIdx]
	gp.splitAroundPlacement(rect{x: chosen.x, y: chosen.y, w: ws, h: hs})
	return true, chosen.x, chosen.y
}

// fitsIn reports whether a piece fits in r. Spacing is reserved only when
// splitting, so it may run off the far edge of the usable area.
func fitsIn(w, h float64, r rect) bool {
	return w <= r.w+0.001 && h <= r.h+0.001
}

// bestFit returns the area left over by inserting w x h, or -1 if it does
// not fit anywhere.
func (gp *guillotinePacker) bestFit(w, h float64) float64 {
	best := float64(-1)
	for _, r := range gp.freeRects {
		if fitsIn(w, h, r) {
			areaFit := (r.w * r.h) - (w * h)
			if best < 0 || areaFit < best {
				best = areaFit
			}
		}
	}
	return best
}

// splitAroundPlacement replaces every free rect the placement overlaps with
// its maximal non-overlapping strips.
func (gp *guillotinePacker) splitAroundPlacement(placed rect) {
	var newRects []rect

	for _, r := range gp.freeRects {
		if !rectsOverlap(r, placed) {
			newRects = append(newRects, r)
			continue
		}

		if placed.x > r.x+0.001 {
			newRects = append(newRects, rect{x: r.x, y: r.y, w: placed.x - r.x, h: r.h})
		}
		if placed.x+placed.w < r.x+r.w-0.001 {
			newRects = append(newRects, rect{
				x: placed.x + placed.w, y: r.y,
				w: (r.x + r.w) - (placed.x + placed.w), h: r.h,
			})
		}
		if placed.y > r.y+0.001 {
			newRects = append(newRects, rect{x: r.x, y: r.y, w: r.w, h: placed.y - r.y})
		}
		if placed.y+placed.h < r.y+r.h-0.001 {
			newRects = append(newRects, rect{
				x: r.x, y: placed.y + placed.h,
				w: r.w, h: (r.y + r.h) - (placed.y + placed.h),
			})
		}
	}

	gp.freeRects = pruneContained(newRects)
}

// rectsOverlap returns true if two rectangles overlap (not just touch).
func rectsOverlap(a, b rect) bool {
	return a.x < b.x+b.w-0.001 && a.x+a.w > b.x+0.001 &&
		a.y < b.y+b.h-0.001 && a.y+a.h > b.y+0.001
}

func pruneContained(rects []rect) []rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			// Identical rects: keep only the first
			if i != j && containsRect(b, a) && (!containsRect(a, b) || j < i) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

func containsRect(outer, inner rect) bool {
	return outer.x <= inner.x+0.001 && outer.y <= inner.y+0.001 &&
		outer.x+outer.w >= inner.x+inner.w-0.001 &&
		outer.y+outer.h >= inner.y+inner.h-0.001
}
