// Package export renders the ledger as a two-sheet workbook: a summary of
// counts and rejection reasons, and one detail row per inspected piece.
//
// Workbooks are built in memory (Build) and written separately (Encode,
// WriteDir) so the tabular content can be tested without touching disk.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/quality-control/internal/inspection"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Sheet names.
const (
	SheetSummary = "summary"
	SheetPieces  = "pieces"
)

var (
	// ErrUnknownFormat is returned for an unsupported export format.
	ErrUnknownFormat = errors.New("export format must be csv, json or yaml")
	// ErrUnknownSheet is returned when a CSV export names a sheet that does not exist.
	ErrUnknownSheet = errors.New("sheet must be summary or pieces")
)

// PieceColumns is the header of the pieces sheet.
var PieceColumns = []string{"id", "weight", "color", "length", "status", "rejection_reason"}

var summaryColumns = []string{"section", "item", "value"}

// ParseFormat resolves a format name, accepting "yml" as YAML.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Sheet is one table of the workbook.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Workbook holds both sheets plus the structured data they were derived from.
type Workbook struct {
	Summary Sheet
	Pieces  Sheet

	doc document
}

// Sheet returns the sheet with the given name.
func (w Workbook) Sheet(name string) (Sheet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SheetSummary:
		return w.Summary, nil
	case SheetPieces:
		return w.Pieces, nil
	default:
		return Sheet{}, fmt.Errorf("%w: %q", ErrUnknownSheet, name)
	}
}

type document struct {
	Summary summary            `json:"summary" yaml:"summary"`
	Pieces  []inspection.Piece `json:"pieces" yaml:"pieces"`
}

type summary struct {
	TotalInspected   int                      `json:"totalInspected" yaml:"total_inspected"`
	TotalApproved    int                      `json:"totalApproved" yaml:"total_approved"`
	TotalRejected    int                      `json:"totalRejected" yaml:"total_rejected"`
	ClosedBoxes      int                      `json:"closedBoxes" yaml:"closed_boxes"`
	OpenBoxCount     int                      `json:"openBoxCount" yaml:"open_box_count"`
	BoxesInUse       int                      `json:"boxesInUse" yaml:"boxes_in_use"`
	BoxCapacity      int                      `json:"boxCapacity" yaml:"box_capacity"`
	ReasonPolicy     inspection.ReasonPolicy  `json:"reasonPolicy" yaml:"reason_policy"`
	RejectionReasons []inspection.ReasonCount `json:"rejectionReasons" yaml:"rejection_reasons"`
}

// Build lays out the summary and pieces sheets for the given ledger state.
// Pieces are written in the order given.
func Build(pieces []inspection.Piece, report inspection.Report) Workbook {
	reasons := report.SortedReasons()

	summarySheet := Sheet{
		Name:   SheetSummary,
		Header: summaryColumns,
		Rows: [][]string{
			{"totals", "inspected", strconv.Itoa(report.TotalInspected)},
			{"totals", "approved", strconv.Itoa(report.TotalApproved)},
			{"totals", "rejected", strconv.Itoa(report.TotalRejected)},
			{"boxes", "closed", strconv.Itoa(report.ClosedBoxes)},
			{"boxes", "open_box_pieces", fmt.Sprintf("%d/%d", report.OpenBoxCount, report.BoxCapacity)},
			{"boxes", "in_use", strconv.Itoa(report.BoxesInUse)},
		},
	}
	for _, rc := range reasons {
		summarySheet.Rows = append(summarySheet.Rows, []string{"rejection_reasons", rc.Reason, strconv.Itoa(rc.Count)})
	}

	piecesSheet := Sheet{
		Name:   SheetPieces,
		Header: PieceColumns,
		Rows:   make([][]string, 0, len(pieces)),
	}
	for _, p := range pieces {
		piecesSheet.Rows = append(piecesSheet.Rows, []string{
			p.ID,
			inspection.FormatMeasure(p.Weight),
			p.Color,
			inspection.FormatMeasure(p.Length),
			p.Status(),
			p.RejectionReason,
		})
	}

	return Workbook{
		Summary: summarySheet,
		Pieces:  piecesSheet,
		doc: document{
			Summary: summary{
				TotalInspected:   report.TotalInspected,
				TotalApproved:    report.TotalApproved,
				TotalRejected:    report.TotalRejected,
				ClosedBoxes:      report.ClosedBoxes,
				OpenBoxCount:     report.OpenBoxCount,
				BoxesInUse:       report.BoxesInUse,
				BoxCapacity:      report.BoxCapacity,
				ReasonPolicy:     report.Policy,
				RejectionReasons: reasons,
			},
			Pieces: append([]inspection.Piece{}, pieces...),
		},
	}
}

// Encode writes the workbook to w. CSV carries a single sheet, selected by
// sheet; JSON and YAML carry both and ignore it.
func Encode(w io.Writer, format Format, wb Workbook, sheet string) error {
	switch format {
	case FormatCSV:
		s, err := wb.Sheet(sheet)
		if err != nil {
			return err
		}
		return WriteCSV(w, s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(wb.doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(wb.doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteCSV writes one sheet, header first.
func WriteCSV(w io.Writer, s Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Header); err != nil {
		return fmt.Errorf("write %s header: %w", s.Name, err)
	}
	if err := cw.WriteAll(s.Rows); err != nil {
		return fmt.Errorf("write %s rows: %w", s.Name, err)
	}
	return nil
}

// WriteDir writes the workbook into dir and returns the created file paths.
// CSV produces summary.csv and pieces.csv; JSON and YAML produce a single
// workbook file.
func WriteDir(dir string, format Format, wb Workbook) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	type target struct {
		name  string
		sheet string
	}
	var targets []target
	switch format {
	case FormatCSV:
		targets = []target{
			{name: SheetSummary + ".csv", sheet: SheetSummary},
			{name: SheetPieces + ".csv", sheet: SheetPieces},
		}
	case FormatJSON, FormatYAML:
		targets = []target{{name: "workbook." + string(format)}}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	paths := make([]string, 0, len(targets))
	for _, t := range targets {
		path := filepath.Join(dir, t.name)
		if err := writeFile(path, format, wb, t.sheet); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, format Format, wb Workbook, sheet string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := Encode(f, format, wb, sheet); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
