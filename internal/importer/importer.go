// Package importer reads shape footprints from text grids, CSV files, Excel
// workbooks and DXF drawings. It supports automatic delimiter detection,
// blank-line separated blocks and optional title lines.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/CubbyCut/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Shapes   []*model.Shape
	Errors   []string
	Warnings []string
}

// Options controls how imported footprints become shapes.
type Options struct {
	Clearance int     // buffer clearance in low-res cells
	CellSize  float64 // low-res cell size in mm, used to rasterize DXF outlines
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Clearance: model.DefaultClearance, CellSize: 25}
}

// titlePrefix starts a line naming the block that follows.
const titlePrefix = "title:"

// filledValues are the cell values that mark a filled high-res cell.
var filledValues = map[string]bool{
	"#": true, "x": true, "1": true, "true": true, "y": true, "yes": true,
}

// Import picks an importer from the file extension.
func Import(path string, opts Options) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportExcel(path, opts.Clearance)
	case ".dxf":
		return ImportDXF(path, opts.CellSize, opts.Clearance)
	default:
		return ImportText(path, opts.Clearance)
	}
}

// DetectCSVDelimiter reads the content and determines the most likely CSV
// delimiter. It tries comma, semicolon, tab and pipe; the one producing the
// most consistent column count wins. Zero means the rows are plain character
// grids.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	var bestDelimiter rune
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Only delimiters that split the first row count
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// isFilled reports whether a cell value marks a filled cell.
func isFilled(cell string) bool {
	return filledValues[strings.ToLower(strings.TrimSpace(cell))]
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// block is one shape's worth of text rows, top row first.
type block struct {
	title string
	line  int // first line number, for messages
	rows  []string
}

// splitBlocks groups lines into blank-line separated blocks.
func splitBlocks(r io.Reader) ([]block, error) {
	var blocks []block
	var cur *block
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			cur = nil
			continue
		}
		if cur == nil {
			blocks = append(blocks, block{line: lineNum})
			cur = &blocks[len(blocks)-1]
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), titlePrefix) {
			cur.title = strings.TrimSpace(trimmed[len(titlePrefix):])
			continue
		}
		cur.rows = append(cur.rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// blockGrid turns a block into a high-res grid. Delimited rows are split into
// fields; undelimited rows are read one character per cell.
func blockGrid(b block, delimiter rune) (model.Grid, error) {
	if delimiter == 0 {
		return model.ParseGrid(b.rows), nil
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(b.rows, "\n")))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return rowsToGrid(records), nil
}

// rowsToGrid converts table rows, top row first, into a floor-first grid.
func rowsToGrid(rows [][]string) model.Grid {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	g := model.NewGrid(len(rows), width)
	for i, r := range rows {
		y := len(rows) - 1 - i
		for x, cell := range r {
			g[y][x] = isFilled(cell)
		}
	}
	return g
}

// ImportText imports shapes from a text or CSV file. Each blank-line
// separated block is one shape; a "title:" line names it.
func ImportText(path string, clearance int) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ImportTextFromReader(bytes.NewReader(data), base, clearance)
}

// ImportTextFromReader imports shapes from text, naming untitled blocks
// after name.
func ImportTextFromReader(r io.Reader, name string, clearance int) ImportResult {
	result := ImportResult{}

	data, err := io.ReadAll(r)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read input: %v", err))
		return result
	}

	blocks, err := splitBlocks(bytes.NewReader(data))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read input: %v", err))
		return result
	}
	if len(blocks) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	for i, b := range blocks {
		if len(b.rows) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Line %d: Title without rows", b.line))
			continue
		}

		delimiter := DetectCSVDelimiter([]byte(strings.Join(b.rows, "\n")))
		grid, err := blockGrid(b, delimiter)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: Cannot read CSV: %v", b.line, err))
			continue
		}

		title := b.title
		if title == "" {
			title = name
			if len(blocks) > 1 {
				title = fmt.Sprintf("%s %d", name, i+1)
			}
		}
		result.add(title, grid, clearance, fmt.Sprintf("Line %d", b.line))
	}

	return result
}

// ImportExcel imports shapes from an Excel workbook. Every worksheet is one
// shape named after the sheet; filled cells hold '#', 'x', '1' or similar.
func ImportExcel(path string, clearance int) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Sheet %q: Cannot read Excel data: %v", sheet, err))
			continue
		}

		// Drop trailing empty rows so the grid floor is the last drawn row
		for len(rows) > 0 && isEmptyRow(rows[len(rows)-1]) {
			rows = rows[:len(rows)-1]
		}
		if len(rows) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Sheet %q is empty, skipping", sheet))
			continue
		}

		result.add(sheet, rowsToGrid(rows), clearance, fmt.Sprintf("Sheet %q", sheet))
	}

	return result
}

// add builds a shape from grid and records it, or records why it could not.
func (r *ImportResult) add(title string, grid model.Grid, clearance int, where string) {
	shape, err := model.NewShape(title, grid, clearance)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", where, err))
		return
	}
	r.Shapes = append(r.Shapes, shape)
}
