package inspection

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Submission is the raw text of a piece registration as typed by an operator.
type Submission struct {
	ID     string
	Weight string
	Color  string
	Length string
}

// ParseSubmission converts raw operator input into an unclassified Piece.
func ParseSubmission(s Submission) (Piece, error) {
	weight, err := parseMeasure("weight", s.Weight)
	if err != nil {
		return Piece{}, err
	}
	length, err := parseMeasure("length", s.Length)
	if err != nil {
		return Piece{}, err
	}
	return ValidatePiece(s.ID, weight, s.Color, length)
}

// ValidatePiece applies the boundary checks that must pass before a piece is
// handed to a Ledger: a non-empty id and positive, finite measurements.
func ValidatePiece(id string, weight float64, color string, length float64) (Piece, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Piece{}, ErrEmptyID
	}
	if err := checkMeasure("weight", weight); err != nil {
		return Piece{}, err
	}
	if err := checkMeasure("length", length); err != nil {
		return Piece{}, err
	}
	return NewPiece(id, weight, color, length), nil
}

func parseMeasure(field, raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, raw, ErrInvalidNumber)
	}
	return value, nil
}

func checkMeasure(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s: %w", field, ErrInvalidNumber)
	}
	if value <= 0 {
		return fmt.Errorf("%s %s: %w", field, FormatMeasure(value), ErrNonPositiveMeasure)
	}
	return nil
}
