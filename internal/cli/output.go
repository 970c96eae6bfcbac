package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/CubbyCut/internal/export"
	"github.com/piwi3910/CubbyCut/internal/gcode"
	"github.com/piwi3910/CubbyCut/internal/importer"
	"github.com/piwi3910/CubbyCut/internal/model"
	"github.com/piwi3910/CubbyCut/internal/pipeline"
	"github.com/piwi3910/CubbyCut/internal/project"
	"github.com/piwi3910/CubbyCut/internal/store"
)

// Output formats accepted by --format.
const (
	FormatJSON   = "json"
	FormatDXF    = "dxf"
	FormatPDF    = "pdf"
	FormatLabels = "labels"
	FormatXLSX   = "xlsx"
	FormatGCode  = "gcode"
)

var allFormats = []string{FormatJSON, FormatDXF, FormatPDF, FormatLabels, FormatXLSX, FormatGCode}

// outputOptions control where results are written.
type outputOptions struct {
	dir     string
	name    string
	formats string
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.dir, "output", "o", ".", "output directory")
	cmd.Flags().StringVarP(&o.name, "name", "n", "", "base name of output files (default from the first input)")
	cmd.Flags().StringVarP(&o.formats, "format", "f", "json,pdf", "comma-separated formats: "+strings.Join(allFormats, ", "))
}

// parseFormats splits and validates a comma-separated format list.
func parseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{FormatJSON}, nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		valid := false
		for _, known := range allFormats {
			if f == known {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("unknown format %q (want %s)", f, strings.Join(allFormats, ", "))
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

// baseName derives an output name from an input path.
func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// outputPath maps a format to its file name. G-code is written one file per
// sheet by writeGCode instead.
func outputPath(dir, name, format string) string {
	switch format {
	case FormatLabels:
		return filepath.Join(dir, name+"-labels.pdf")
	case FormatJSON:
		return filepath.Join(dir, name+".solution.json")
	default:
		return filepath.Join(dir, name+"."+format)
	}
}

// writeOutputs writes plan in every requested format and returns the paths.
// Labels are skipped with a warning when the layout has no closed cubbies.
func (c *CLI) writeOutputs(plan export.Plan, dir, name string, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	for _, f := range formats {
		path := outputPath(dir, name, f)
		var err error
		switch f {
		case FormatJSON:
			err = project.SaveSolution(path, plan.Solution)
		case FormatDXF:
			err = export.ExportDXF(path, plan)
		case FormatPDF:
			err = export.ExportPDF(path, plan)
		case FormatLabels:
			err = export.ExportLabels(path, plan)
			if errors.Is(err, export.ErrNoCubbies) {
				c.printWarning("No closed cubbies, skipped labels")
				continue
			}
		case FormatXLSX:
			err = export.ExportCutList(path, plan)
		case FormatGCode:
			var paths []string
			paths, err = c.writeGCode(plan, dir, name)
			written = append(written, paths...)
			if err != nil {
				return written, fmt.Errorf("write %s: %w", f, err)
			}
			continue
		}
		if err != nil {
			return written, fmt.Errorf("write %s: %w", f, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// writeGCode nests the wall boards on sheet stock and writes one program per sheet.
func (c *CLI) writeGCode(plan export.Plan, dir, name string) ([]string, error) {
	job, err := gcode.NewJob(plan.Runs, plan.Settings)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("nested boards", "boards", len(job.Boards), "sheets", len(job.Sheets))
	for _, v := range job.Violations {
		c.printWarning("%s", v)
	}
	return job.WriteFiles(dir, name)
}

// importShapes loads every input file, reporting warnings and per-file errors.
// It fails only when no shape could be read.
func (c *CLI) importShapes(paths []string, settings model.Settings) ([]*model.Shape, error) {
	opts := importer.Options{Clearance: settings.Clearance, CellSize: settings.CellSize}

	var shapes []*model.Shape
	for _, path := range paths {
		res := importer.Import(path, opts)
		for _, w := range res.Warnings {
			c.printWarning("%s: %s", filepath.Base(path), w)
		}
		for _, e := range res.Errors {
			c.printError("%s: %s", filepath.Base(path), e)
		}
		c.Logger.Debug("imported", "file", path, "shapes", len(res.Shapes))
		shapes = append(shapes, res.Shapes...)
	}
	if len(shapes) == 0 {
		return nil, fmt.Errorf("no shapes found in %s", strings.Join(paths, ", "))
	}
	return shapes, nil
}

// printResult summarises a grown layout.
func (c *CLI) printResult(res *pipeline.Result) {
	sol := res.Solution
	c.printKeyValue("Layout", fmt.Sprintf("%d x %d cells", sol.Layout.Width(), sol.Layout.Height()))
	c.printKeyValue("Score", fmt.Sprintf("%d", sol.Score))
	c.printKeyValue("Valid", fmt.Sprintf("%t", sol.Valid))
	c.printKeyValue("Walls", fmt.Sprintf("%d boards, %.0f mm", res.Estimate.Runs, res.Estimate.TotalLength))
	c.printKeyValue("Stock", fmt.Sprintf("%d boards (%d with waste)", res.Estimate.BoardsNeeded, res.Estimate.BoardsWithWaste))
	if res.Estimate.EstimatedCost > 0 {
		c.printKeyValue("Cost", fmt.Sprintf("%.2f", res.Estimate.EstimatedCost))
	}
	c.printKeyValue("Coverage", fmt.Sprintf("%.1f%%", res.Coverage()))
	for _, cb := range res.Cubbies {
		c.printDetail("%-20s %d cells", cb.Title, cb.Area)
	}
	if res.Stuck != nil {
		c.printWarning("Wall growth stuck: %v", res.Stuck)
	}
}

// newStoreRun converts a pipeline result into a history record.
func newStoreRun(title string, res *pipeline.Result) *store.Run {
	run := &store.Run{
		Title:      title,
		Seed:       res.Seed,
		Stuck:      res.Stuck != nil,
		WallLength: res.WallLength(),
		Solution:   res.Solution,
	}
	for _, cb := range res.Cubbies {
		run.Cubbies = append(run.Cubbies, store.CubbyArea{Index: cb.Index, Title: cb.Title, Area: cb.Area})
	}
	return run
}

// saveRuns stores results in the run history and returns their ids.
func (c *CLI) saveRuns(ctx context.Context, cfg model.AppConfig, title string, results ...*pipeline.Result) ([]string, error) {
	s, err := c.openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var ids []string
	for _, res := range results {
		run := newStoreRun(title, res)
		if err := s.SaveRun(ctx, run); err != nil {
			return ids, fmt.Errorf("save run: %w", err)
		}
		ids = append(ids, run.ID)
	}
	return ids, nil
}
