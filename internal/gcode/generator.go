// Package gcode nests cubby wall boards on sheet stock and writes the
// toolpaths that cut them out.
package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/CubbyCut/internal/model"
)

// Generator produces G-code for nested sheets.
type Generator struct {
	Settings model.CNCSettings
	CutDepth float64 // board thickness, mm
	profile  model.GCodeProfile
}

func New(settings model.CNCSettings, cutDepth float64) *Generator {
	return &Generator{
		Settings: settings,
		CutDepth: cutDepth,
		profile:  model.GetGCodeProfile(settings.Profile),
	}
}

// Passes returns the number of depth passes needed to cut through a board.
func (g *Generator) Passes() int {
	if g.Settings.PassDepth <= 0 || g.CutDepth <= g.Settings.PassDepth {
		return 1
	}
	return int(math.Ceil(g.CutDepth / g.Settings.PassDepth))
}

// GenerateSheet produces G-code for a single sheet's boards.
func (g *Generator) GenerateSheet(sheet Sheet) string {
	var b strings.Builder

	g.writeHeader(&b, sheet)
	for i, p := range sheet.Placements {
		g.writeBoard(&b, p, i+1)
	}
	g.writeFooter(&b)

	return b.String()
}

// GenerateAll produces one program per sheet.
func (g *Generator) GenerateAll(sheets []Sheet) []string {
	codes := make([]string, 0, len(sheets))
	for _, s := range sheets {
		codes = append(codes, g.GenerateSheet(s))
	}
	return codes
}

func (g *Generator) writeHeader(b *strings.Builder, sheet Sheet) {
	p := g.profile

	b.WriteString(g.comment(fmt.Sprintf("CubbyCut wall boards, sheet %d", sheet.Index)))
	b.WriteString(g.comment(fmt.Sprintf("Stock: %.1f x %.1f mm", sheet.Width, sheet.Height)))
	b.WriteString(g.comment(fmt.Sprintf("Boards: %d, Efficiency: %.1f%%", len(sheet.Placements), sheet.Efficiency())))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.1fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		g.Settings.ToolDiameter, g.Settings.FeedRate, g.Settings.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.1fmm in %d passes", g.CutDepth, g.Passes())))
	b.WriteString(g.comment("Profile: " + p.Name))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}
	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
	}

	// Lift before the first rapid so nothing drags across the sheet
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("Job complete"))
	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
	for _, code := range p.EndCode {
		b.WriteString(strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ)) + "\n")
	}
}

// writeBoard cuts around the outside of a placed board, pass by pass. Tabs
// are left on the final pass only.
func (g *Generator) writeBoard(b *strings.Builder, p Placement, n int) {
	toolR := g.Settings.ToolDiameter / 2.0

	x0 := p.X - toolR
	y0 := p.Y - toolR
	x1 := p.X + p.PlacedWidth() + toolR
	y1 := p.Y + p.PlacedHeight() + toolR

	b.WriteString(g.comment(fmt.Sprintf("Board %d: %s (%.1f x %.1f)%s",
		n, p.Board.Label, p.Board.Length, p.Board.Width, rotatedStr(p.Rotated))))

	passes := g.Passes()
	tabs := g.calculateTabs(x1-x0, y1-y0)

	for pass := 1; pass <= passes; pass++ {
		depth := g.CutDepth
		if passes > 1 {
			depth = math.Min(float64(pass)*g.Settings.PassDepth, g.CutDepth)
		}

		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, passes, depth)))
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove, g.format(x0), g.format(y0)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))

		if pass == passes && len(tabs) > 0 {
			g.writePerimeterWithTabs(b, x0, y0, x1, y1, depth, tabs)
		} else {
			g.writePerimeter(b, x0, y0, x1, y1)
		}

		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	}

	b.WriteString("\n")
}

func (g *Generator) writePerimeter(b *strings.Builder, x0, y0, x1, y1 float64) {
	p := g.profile
	b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove, g.format(x1), g.format(y0), g.format(g.Settings.FeedRate)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(x1), g.format(y1)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(x0), g.format(y1)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(x0), g.format(y0)))
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	s := fmt.Sprintf("%.*f", g.profile.DecimalPlaces, v)
	if strings.Trim(s, "-0.") == "" {
		// Avoid "-0.000"
		return fmt.Sprintf("%.*f", g.profile.DecimalPlaces, 0.0)
	}
	return s
}

// tab is a holding tab centred at pos along one side of the perimeter.
type tab struct {
	side int // 0=bottom, 1=right, 2=top, 3=left
	pos  float64
}

// calculateTabs spaces TabsPerSide tabs evenly along each side of a w x h
// toolpath. Sides too short to hold their tabs get none.
func (g *Generator) calculateTabs(w, h float64) []tab {
	n := g.Settings.TabsPerSide
	if n <= 0 || g.Settings.TabWidth <= 0 || g.Settings.TabHeight <= 0 {
		return nil
	}

	var tabs []tab
	for side := 0; side < 4; side++ {
		length := w
		if side == 1 || side == 3 {
			length = h
		}
		if float64(n)*g.Settings.TabWidth*2 > length {
			continue
		}
		spacing := length / float64(n+1)
		for t := 1; t <= n; t++ {
			tabs = append(tabs, tab{side: side, pos: spacing * float64(t)})
		}
	}
	return tabs
}

func (g *Generator) writePerimeterWithTabs(b *strings.Builder, x0, y0, x1, y1, depth float64, tabs []tab) {
	tabDepth := math.Max(depth-g.Settings.TabHeight, 0)

	// Clockwise from the start corner, matching writePerimeter
	g.writeSideWithTabs(b, x0, y0, x1, y0, depth, tabDepth, tabsForSide(tabs, 0))
	g.writeSideWithTabs(b, x1, y0, x1, y1, depth, tabDepth, tabsForSide(tabs, 1))
	g.writeSideWithTabs(b, x1, y1, x0, y1, depth, tabDepth, tabsForSide(tabs, 2))
	g.writeSideWithTabs(b, x0, y1, x0, y0, depth, tabDepth, tabsForSide(tabs, 3))
}

func tabsForSide(tabs []tab, side int) []tab {
	var out []tab
	for _, t := range tabs {
		if t.side == side {
			out = append(out, t)
		}
	}
	return out
}

func (g *Generator) writeSideWithTabs(b *strings.Builder, x0, y0, x1, y1, cutDepth, tabDepth float64, tabs []tab) {
	feed := g.profile.FeedMove
	if len(tabs) == 0 {
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", feed, g.format(x1), g.format(y1), g.format(g.Settings.FeedRate)))
		return
	}

	dx := x1 - x0
	dy := y1 - y0
	length := math.Hypot(dx, dy)
	if length < 0.001 {
		return
	}
	nx := dx / length
	ny := dy / length
	tw := g.Settings.TabWidth

	for _, t := range tabs {
		start := t.pos - tw/2
		end := t.pos + tw/2

		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", feed,
			g.format(x0+nx*start), g.format(y0+ny*start), g.format(g.Settings.FeedRate)))
		b.WriteString(fmt.Sprintf("%s Z%s\n", feed, g.format(-tabDepth)))
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", feed, g.format(x0+nx*end), g.format(y0+ny*end)))
		b.WriteString(fmt.Sprintf("%s Z%s\n", feed, g.format(-cutDepth)))
	}

	b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", feed, g.format(x1), g.format(y1), g.format(g.Settings.FeedRate)))
}

func rotatedStr(r bool) string {
	if r {
		return " [rotated]"
	}
	return ""
}
