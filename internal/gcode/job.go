package gcode

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// Job is the full set of sheet programs for one layout's walls.
type Job struct {
	Boards     []Board
	Sheets     []Sheet
	Programs   []string
	Violations []Violation
}

// NewJob splits runs into boards, nests them on sheets and generates a
// program for each sheet. Boards are cut from sheet stock, so runs are split
// at the longer sheet side rather than the purchased board length.
func NewJob(runs []model.WallRun, s model.Settings) (*Job, error) {
	cnc := s.CNC
	if cnc.BoardDepth <= 0 {
		return nil, fmt.Errorf("board depth must be positive, got %.1f", cnc.BoardDepth)
	}

	margin := cnc.ToolDiameter
	maxLength := math.Max(cnc.SheetWidth, cnc.SheetHeight) - 2*margin
	boards := BoardsFromRuns(runs, s.CellSize, maxLength, cnc.BoardDepth)
	if len(boards) == 0 {
		return nil, fmt.Errorf("layout has no walls to cut")
	}

	sheets, err := Nest(boards, NestOptions{
		Width:   cnc.SheetWidth,
		Height:  cnc.SheetHeight,
		Spacing: math.Max(s.KerfWidth, cnc.ToolDiameter),
		Margin:  margin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to nest boards: %w", err)
	}

	gen := New(cnc, s.BoardThickness)
	job := &Job{Boards: boards, Sheets: sheets, Programs: gen.GenerateAll(sheets)}
	for i, code := range job.Programs {
		job.Violations = append(job.Violations, CheckBounds(sheets[i], Parse(code))...)
	}
	return job, nil
}

// WriteFiles saves each sheet program as name-sheetN.nc under dir.
func (j *Job) WriteFiles(dir, name string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	paths := make([]string, 0, len(j.Programs))
	for i, code := range j.Programs {
		path := filepath.Join(dir, fmt.Sprintf("%s-sheet%d.nc", name, i+1))
		if err := os.WriteFile(path, []byte(code), 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
