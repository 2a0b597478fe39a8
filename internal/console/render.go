package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/eugenenazirov/quality-control/internal/inspection"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			MarginBottom(1)
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB347"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7BD88F"))
)

func renderPieces(approved, rejected []inspection.Piece) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Approved pieces") + "\n")
	if len(approved) == 0 {
		b.WriteString("No approved pieces yet.\n")
	}
	for _, p := range approved {
		b.WriteString("- " + p.String() + "\n")
	}

	b.WriteString("\n" + headingStyle.Render("Rejected pieces") + "\n")
	if len(rejected) == 0 {
		b.WriteString("No rejected pieces yet.\n")
	}
	for _, p := range rejected {
		b.WriteString("- " + p.String() + "\n")
	}

	return b.String()
}

func renderBoxes(closed []inspection.Box, open inspection.Box) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Closed boxes") + "\n")
	if len(closed) == 0 {
		b.WriteString("No box has been closed yet.\n")
	}
	for _, box := range closed {
		fmt.Fprintf(&b, "\nBOX %d (closed, %d/%d pieces):\n", box.Number, box.Len(), inspection.BoxCapacity)
		writeBoxPieces(&b, box)
	}

	b.WriteString("\n" + headingStyle.Render("Open box") + "\n")
	if open.Len() == 0 {
		b.WriteString("The open box is empty (waiting for approved pieces or just closed).\n")
		return b.String()
	}
	fmt.Fprintf(&b, "BOX %d (open, %d/%d pieces):\n", open.Number, open.Len(), inspection.BoxCapacity)
	writeBoxPieces(&b, open)

	return b.String()
}

func writeBoxPieces(b *strings.Builder, box inspection.Box) {
	for _, p := range box.Pieces {
		fmt.Fprintf(b, "  > ID: %s | Weight: %sg\n", p.ID, inspection.FormatMeasure(p.Weight))
	}
}

func renderReport(r inspection.Report) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("[ TOTALS ]") + "\n")
	fmt.Fprintf(&b, "Pieces inspected: %d\n", r.TotalInspected)
	fmt.Fprintf(&b, "Approved: %d\n", r.TotalApproved)
	fmt.Fprintf(&b, "Rejected: %d\n", r.TotalRejected)

	b.WriteString("\n" + headingStyle.Render("[ BOXES ]") + "\n")
	fmt.Fprintf(&b, "Closed boxes: %d\n", r.ClosedBoxes)
	fmt.Fprintf(&b, "Pieces in open box: %d/%d\n", r.OpenBoxCount, r.BoxCapacity)
	fmt.Fprintf(&b, "Boxes in use (closed + open): %d\n", r.BoxesInUse)

	fmt.Fprintf(&b, "\n%s\n", headingStyle.Render(fmt.Sprintf("[ REJECTION REASONS · %s ]", r.Policy)))
	reasons := r.SortedReasons()
	if len(reasons) == 0 {
		b.WriteString("No rejected pieces (all criteria met).\n")
	}
	for _, rc := range reasons {
		fmt.Fprintf(&b, "- %s: %d piece(s)\n", rc.Reason, rc.Count)
	}

	return b.String()
}
