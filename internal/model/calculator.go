package model

import (
	"math"
	"sort"
)

// WallRun is a maximal straight wall in low-res cell units. Horizontal runs
// start at intersection (Y, X) and extend right; vertical runs extend up.
type WallRun struct {
	Horizontal bool `json:"horizontal"`
	X          int  `json:"x"`
	Y          int  `json:"y"`
	Length     int  `json:"length"`
}

// BoardEstimate holds the results of a wall board purchasing calculation.
type BoardEstimate struct {
	Runs            int     `json:"runs"`              // Number of straight walls
	TotalLength     float64 `json:"total_length"`      // Sum of wall lengths (mm)
	PieceCount      int     `json:"piece_count"`       // Pieces after splitting walls longer than stock
	BoardsNeeded    int     `json:"boards_needed"`     // Boards used by first-fit packing
	BoardsWithWaste int     `json:"boards_with_waste"` // Recommended boards including waste factor
	Utilization     float64 `json:"utilization"`       // Percent of purchased length used by walls
	WastePercent    float64 `json:"waste_percent"`
	EstimatedCost   float64 `json:"estimated_cost"`
	PricePerBoard   float64 `json:"price_per_board"`
	KerfWidth       float64 `json:"kerf_width"`
}

// CalculateBoardEstimate packs wall runs onto stock boards of stockLength using
// first-fit decreasing, reserving kerfWidth after every cut piece.
func CalculateBoardEstimate(runs []WallRun, cellSize, stockLength, kerfWidth, wastePercent, pricePerBoard float64) BoardEstimate {
	est := BoardEstimate{
		Runs:          len(runs),
		WastePercent:  wastePercent,
		PricePerBoard: pricePerBoard,
		KerfWidth:     kerfWidth,
	}

	var pieces []float64
	for _, r := range runs {
		length := float64(r.Length) * cellSize
		est.TotalLength += length
		if stockLength <= 0 {
			continue
		}
		// Walls longer than a board are split into equal pieces
		n := int(math.Ceil(length / stockLength))
		for i := 0; i < n; i++ {
			pieces = append(pieces, length/float64(n))
		}
	}
	est.PieceCount = len(pieces)
	if stockLength <= 0 || len(pieces) == 0 {
		return est
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(pieces)))
	var remaining []float64
	for _, p := range pieces {
		placed := false
		for i := range remaining {
			if remaining[i] >= p {
				remaining[i] -= p + kerfWidth
				placed = true
				break
			}
		}
		if !placed {
			remaining = append(remaining, stockLength-p-kerfWidth)
		}
	}

	est.BoardsNeeded = len(remaining)
	wasteFactor := 1.0 + (wastePercent / 100.0)
	est.BoardsWithWaste = int(math.Ceil(float64(est.BoardsNeeded) * wasteFactor))
	if est.BoardsWithWaste < est.BoardsNeeded {
		est.BoardsWithWaste = est.BoardsNeeded
	}
	est.Utilization = est.TotalLength / (float64(est.BoardsNeeded) * stockLength) * 100.0
	est.EstimatedCost = float64(est.BoardsWithWaste) * pricePerBoard
	return est
}
