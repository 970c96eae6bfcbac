package engine

import (
	"math"
)

// neighbours lists the eight compass offsets as (dy, dx).
var neighbours = [8][2]int{
	{1, -1}, {1, 0}, {1, 1},
	{0, -1}, {0, 1},
	{-1, -1}, {-1, 0}, {-1, 1},
}

// ScoreBreakdown keeps the individual penalty terms of the last CalcScore.
type ScoreBreakdown struct {
	Overlap        float64 `json:"overlap"`
	Cluster        float64 `json:"cluster"`
	BottomLift     float64 `json:"bottom_lift"`
	BottomEmptyRow float64 `json:"bottom_empty_row"`
	Space          float64 `json:"space"`
	Aspect         float64 `json:"aspect"`
}

// Total returns the floored sum of all terms.
func (b ScoreBreakdown) Total() int {
	return int(math.Floor(b.Overlap + b.Cluster + b.BottomLift + b.BottomEmptyRow + b.Space + b.Aspect))
}

// CalcScore scores the current layout (lower is better) and sets Valid.
// It depends only on the layout and placements, so repeated calls agree.
func (s *Solution) CalcScore() int {
	l := s.Layout
	n := float64(s.enabledCount())
	n3 := n * n * n

	var b ScoreBreakdown

	overlap := 0
	for y := range l {
		for x := range l[y] {
			if k := len(l[y][x].Occupants); k > 1 {
				overlap += k - 1
			}
		}
	}
	b.Overlap = float64(overlap)
	if overlap > 0 {
		b.Overlap *= n3
	}

	sumAnneal := s.assignAnnealScores()
	b.Cluster = s.clusterPenalty()

	lift, emptyRow := s.bottomPenalties()
	b.BottomLift = float64(lift)
	if lift > 0 {
		b.BottomLift *= n3
	}
	b.BottomEmptyRow = float64(emptyRow) * n / 1.5

	totalCells := l.Height() * l.Width()
	b.Space = float64(sumAnneal+totalCells) * 0.1

	if h := l.Height(); h > 0 {
		target := s.AspectRatioPref.Target()
		rr := (float64(l.Width()) / float64(h)) / target
		d := math.Max(rr, 1/rr) - 1
		b.Aspect = d * d * n * n * 5
	}

	s.Breakdown = b
	s.Score = b.Total()
	s.Valid = lift == 0 && overlap == 0
	return s.Score
}

// assignAnnealScores sets AnnealScore on every cell and returns their sum.
func (s *Solution) assignAnnealScores() int {
	l := s.Layout
	sum := 0
	for y := range l {
		for x := range l[y] {
			cell := &l[y][x]
			if cell.Occupied() {
				cell.AnnealScore = 0
				continue
			}
			occupied := 0
			for _, d := range neighbours {
				if l.Occupied(y+d[0], x+d[1]) {
					occupied++
				}
			}
			cell.AnnealScore = 8 - occupied
			sum += cell.AnnealScore
		}
	}
	return sum
}

// clusterPenalty punishes large contiguous voids: neighbouring cells with the
// same high anneal score add 2^(score-limit) each.
func (s *Solution) clusterPenalty() float64 {
	l := s.Layout
	limit := s.ClusterLimit
	if limit < 1 {
		limit = 1
	}
	var total float64
	for y := range l {
		for x := range l[y] {
			score := l[y][x].AnnealScore
			if score < limit {
				continue
			}
			weight := math.Pow(2, float64(score-limit))
			checked := 0
			for _, d := range neighbours {
				ny, nx := y+d[0], x+d[1]
				if !l.InBounds(ny, nx) {
					continue
				}
				checked++
				if l[ny][nx].AnnealScore == score {
					total += weight
				}
			}
			if score == 8 {
				total += float64(8 - checked)
			}
		}
	}
	return total
}

// bottomPenalties returns the summed posY of floating bottom shapes and the
// summed anneal scores of fully empty rows directly under shapes.
func (s *Solution) bottomPenalties() (lift, emptyRow int) {
	l := s.Layout
	for _, p := range s.Placements {
		if !p.Enabled {
			continue
		}
		buf := p.Shape.Buffer

		bottom := true
		for bx := 0; bx < buf.Width() && bottom; bx++ {
			lowest := -1
			for by := 0; by < buf.Height(); by++ {
				if buf[by][bx] {
					lowest = by
					break
				}
			}
			if lowest < 0 {
				continue
			}
			for y := p.PosY + lowest - 1; y >= 0; y-- {
				if l.Occupied(y, p.PosX+bx) {
					bottom = false
					break
				}
			}
		}
		if bottom {
			lift += p.PosY
		}

		if p.PosY == 0 {
			continue
		}
		row := p.PosY - 1
		empty, sum := true, 0
		for x := p.PosX; x < p.PosX+buf.Width(); x++ {
			if l.Occupied(row, x) {
				empty = false
				break
			}
			if l.InBounds(row, x) {
				sum += l[row][x].AnnealScore
			}
		}
		if empty {
			emptyRow += sum
		}
	}
	return lift, emptyRow
}

func (s *Solution) enabledCount() int {
	n := 0
	for _, p := range s.Placements {
		if p.Enabled {
			n++
		}
	}
	return n
}
