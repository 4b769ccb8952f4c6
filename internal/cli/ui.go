package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/diceplan/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary values
	colorGreen  = lipgloss.Color("35")  // Green - success, optimal plans
	colorYellow = lipgloss.Color("220") // Amber - warnings, cut-short searches
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for costs and counters.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleLabel  = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleBorder = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an "→ path" line for a written file.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// =============================================================================
// Search Summary
// =============================================================================

// formatCost prints costs the way the plan text does.
func formatCost(c float64) string {
	return strconv.FormatFloat(c, 'g', -1, 64)
}

// summaryRows lists the statistics shown after a search.
func summaryRows(res *pipeline.Result) [][]string {
	status := "optimal"
	if !res.Optimal {
		status = "best found (" + res.Stop + ")"
	}
	if res.Cached {
		status += ", cached"
	}
	return [][]string{
		{"Problem", fmt.Sprintf("d%d from d%d", res.Target, res.Source)},
		{"Cost", formatCost(res.Cost)},
		{"Naive cost", formatCost(res.InitialCost)},
		{"Status", status},
		{"Iterations", strconv.Itoa(res.Stats.Iterations)},
		{"Visited", strconv.Itoa(res.Stats.Visited)},
		{"Improvements", strconv.Itoa(res.Stats.Improvements)},
		{"Elapsed", res.Stats.Elapsed.Round(time.Millisecond).String()},
	}
}

// printSummary draws the search statistics as a two-column table.
func printSummary(w io.Writer, res *pipeline.Result) {
	rows := summaryRows(res)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == 0 {
				return base.Inherit(styleLabel)
			}
			if row >= 0 && row < len(rows) && rows[row][0] == "Status" {
				if res.Optimal {
					return base.Inherit(StyleSuccess)
				}
				return base.Inherit(StyleWarning)
			}
			return base.Inherit(StyleNumber)
		})
	fmt.Fprintln(w, t.Render())
}
