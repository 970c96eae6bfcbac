package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed (cutting move in XY plane)
	MovePlunge                  // G1 with Z decreasing: plunging into material
	MoveRetract                 // G0/G1 with Z increasing: retracting from material
)

// Move is a single parsed G0/G1 movement.
type Move struct {
	Line     int // 1-based source line
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
}

var coordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// Parse reads G-code into moves, tracking absolute position from the
// origin. Lines other than G0/G1 are ignored.
func Parse(code string) []Move {
	var moves []Move
	curX, curY, curZ, curFeed := 0.0, 0.0, 0.0, 0.0

	for n, line := range strings.Split(code, "\n") {
		line = stripComment(line)
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		word := strings.Fields(upper)[0]
		isRapid := word == "G0" || word == "G00"
		isFeed := word == "G1" || word == "G01"
		if !isRapid && !isFeed {
			continue
		}

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		for _, m := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				newX = val
			case "Y":
				newY = val
			case "Z":
				newZ = val
			case "F":
				newFeed = val
			}
		}

		moves = append(moves, Move{
			Line:     n + 1,
			Type:     classifyMove(isRapid, curZ, newZ, curX, curY, newX, newY),
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			FeedRate: newFeed,
		})

		curX, curY, curZ, curFeed = newX, newY, newZ, newFeed
	}

	return moves
}

// stripComment removes ";" and "( )" comments and surrounding space.
func stripComment(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.Index(line, "("); idx >= 0 {
		if end := strings.Index(line[idx:], ")"); end >= 0 {
			line = line[:idx] + line[idx+end+1:]
		} else {
			line = line[:idx]
		}
	}
	return strings.TrimSpace(line)
}

func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// CutLength returns the XY distance travelled by feed moves below Z0.
func CutLength(moves []Move) float64 {
	total := 0.0
	for _, m := range moves {
		if m.Type == MoveFeed && m.ToZ < 0 {
			total += math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
		}
	}
	return total
}
