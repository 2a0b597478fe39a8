package inspection

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// BoxCapacity is the number of approved pieces that closes a box.
	BoxCapacity = 10

	// DuplicateReason is the rejection reason recorded for a repeated id.
	DuplicateReason = "Duplicate ID."
	// UnknownReason is reported for a rejected piece that carries no reason.
	UnknownReason = "Unknown reason."
	// ReasonSeparator joins the violations of a single piece.
	ReasonSeparator = "; "

	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Piece is one manufactured unit with its measurements and inspection outcome.
type Piece struct {
	ID              string  `json:"id" yaml:"id"`
	Weight          float64 `json:"weight" yaml:"weight"`
	Color           string  `json:"color" yaml:"color"`
	Length          float64 `json:"length" yaml:"length"`
	Approved        bool    `json:"approved" yaml:"approved"`
	RejectionReason string  `json:"rejectionReason,omitempty" yaml:"rejection_reason,omitempty"`
}

// NewPiece builds an unclassified piece. The color is normalised to lowercase.
func NewPiece(id string, weight float64, color string, length float64) Piece {
	return Piece{
		ID:     id,
		Weight: weight,
		Color:  normalizeColor(color),
		Length: length,
	}
}

// Status returns StatusApproved or StatusRejected.
func (p Piece) Status() string {
	if p.Approved {
		return StatusApproved
	}
	return StatusRejected
}

func (p Piece) String() string {
	status := "APPROVED"
	if !p.Approved {
		status = fmt.Sprintf("REJECTED (%s)", p.RejectionReason)
	}
	return fmt.Sprintf("ID: %s | Weight: %sg | Color: %s | Length: %scm | Status: %s",
		p.ID, FormatMeasure(p.Weight), DisplayColor(p.Color), FormatMeasure(p.Length), status)
}

// Box is an ordered group of approved pieces. Number is the 1-based packing
// position and never changes once assigned.
type Box struct {
	Number int     `json:"number" yaml:"number"`
	Closed bool    `json:"closed" yaml:"closed"`
	Pieces []Piece `json:"pieces" yaml:"pieces"`
}

// Len returns the current population of the box.
func (b Box) Len() int {
	return len(b.Pieces)
}

func (b Box) clone() Box {
	b.Pieces = clonePieces(b.Pieces)
	return b
}

// ReasonPolicy selects how rejection reasons are consolidated in a Report.
type ReasonPolicy string

const (
	// ReasonPolicyWhole counts each piece's full reason string as one key.
	ReasonPolicyWhole ReasonPolicy = "whole"
	// ReasonPolicySplit splits reasons on ReasonSeparator and counts each violation.
	ReasonPolicySplit ReasonPolicy = "split"
)

// ParseReasonPolicy resolves a policy name. The empty string selects ReasonPolicyWhole.
func ParseReasonPolicy(raw string) (ReasonPolicy, error) {
	switch ReasonPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ReasonPolicyWhole:
		return ReasonPolicyWhole, nil
	case ReasonPolicySplit:
		return ReasonPolicySplit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownReasonPolicy, raw)
	}
}

// Report summarises the ledger at one point in time.
type Report struct {
	TotalInspected   int            `json:"totalInspected" yaml:"total_inspected"`
	TotalApproved    int            `json:"totalApproved" yaml:"total_approved"`
	TotalRejected    int            `json:"totalRejected" yaml:"total_rejected"`
	ClosedBoxes      int            `json:"closedBoxes" yaml:"closed_boxes"`
	BoxesInUse       int            `json:"boxesInUse" yaml:"boxes_in_use"`
	OpenBoxCount     int            `json:"openBoxCount" yaml:"open_box_count"`
	BoxCapacity      int            `json:"boxCapacity" yaml:"box_capacity"`
	Policy           ReasonPolicy   `json:"reasonPolicy" yaml:"reason_policy"`
	RejectionReasons map[string]int `json:"rejectionReasons" yaml:"rejection_reasons"`
}

// ReasonCount is one entry of a consolidated rejection-reason breakdown.
type ReasonCount struct {
	Reason string `json:"reason" yaml:"reason"`
	Count  int    `json:"count" yaml:"count"`
}

// SortedReasons returns the rejection reasons ordered by count (descending)
// and then by text.
func (r Report) SortedReasons() []ReasonCount {
	out := make([]ReasonCount, 0, len(r.RejectionReasons))
	for reason, count := range r.RejectionReasons {
		out = append(out, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// EventKind identifies a box transition.
type EventKind string

const (
	// EventBoxClosed fires when the open box reaches BoxCapacity and is closed.
	EventBoxClosed EventKind = "box_closed"
	// EventClosedBoxAltered fires when a removal shrinks an already closed box.
	EventClosedBoxAltered EventKind = "closed_box_altered"
)

// Event describes a box transition. Population is the box size after the change.
type Event struct {
	Kind       EventKind
	Box        int
	Population int
	PieceID    string
}

// EventHandler receives ledger events synchronously.
type EventHandler func(Event)

// FormatMeasure renders a measurement without trailing zeros or float noise.
func FormatMeasure(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return decimal.NewFromFloat(v).String()
}

// DisplayColor capitalises a normalised color for human output.
func DisplayColor(color string) string {
	r, size := utf8.DecodeRuneInString(color)
	if r == utf8.RuneError {
		return color
	}
	return string(unicode.ToUpper(r)) + color[size:]
}

func normalizeColor(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}

func clonePieces(src []Piece) []Piece {
	out := make([]Piece, len(src))
	copy(out, src)
	return out
}
