package inspection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubmission(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      Submission
		want    Piece
		wantErr error
	}{
		{
			name: "Valid",
			in:   Submission{ID: " P1 ", Weight: "100.5", Color: "Blue", Length: " 15 "},
			want: Piece{ID: "P1", Weight: 100.5, Color: "blue", Length: 15},
		},
		{
			name: "OutOfRangeStillParses",
			in:   Submission{ID: "P2", Weight: "500", Color: "red", Length: "1"},
			want: Piece{ID: "P2", Weight: 500, Color: "red", Length: 1},
		},
		{
			name:    "EmptyID",
			in:      Submission{ID: "   ", Weight: "100", Color: "blue", Length: "15"},
			wantErr: ErrEmptyID,
		},
		{
			name:    "NonNumericWeight",
			in:      Submission{ID: "P3", Weight: "heavy", Color: "blue", Length: "15"},
			wantErr: ErrInvalidNumber,
		},
		{
			name:    "NonNumericLength",
			in:      Submission{ID: "P3", Weight: "100", Color: "blue", Length: ""},
			wantErr: ErrInvalidNumber,
		},
		{
			name:    "NaN",
			in:      Submission{ID: "P3", Weight: "NaN", Color: "blue", Length: "15"},
			wantErr: ErrInvalidNumber,
		},
		{
			name:    "ZeroWeight",
			in:      Submission{ID: "P4", Weight: "0", Color: "blue", Length: "15"},
			wantErr: ErrNonPositiveMeasure,
		},
		{
			name:    "NegativeLength",
			in:      Submission{ID: "P4", Weight: "100", Color: "blue", Length: "-2"},
			wantErr: ErrNonPositiveMeasure,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSubmission(tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidatePieceRejectsInfinity(t *testing.T) {
	_, err := ValidatePiece("P1", math.Inf(1), "blue", 15)
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestParseReasonPolicy(t *testing.T) {
	for raw, want := range map[string]ReasonPolicy{
		"":        ReasonPolicyWhole,
		"whole":   ReasonPolicyWhole,
		" Split ": ReasonPolicySplit,
	} {
		got, err := ParseReasonPolicy(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseReasonPolicy("merge")
	assert.ErrorIs(t, err, ErrUnknownReasonPolicy)
}

func TestPieceString(t *testing.T) {
	p := NewLedger().Inspect(NewPiece("P1", 100, "azul", 15.5))
	assert.Equal(t, "ID: P1 | Weight: 100g | Color: Azul | Length: 15.5cm | Status: APPROVED", p.String())

	r := NewLedger().Inspect(NewPiece("P2", 100, "red", 15))
	assert.Equal(t, "ID: P2 | Weight: 100g | Color: Red | Length: 15cm | Status: REJECTED (Color (Red) is not Blue or Green.)", r.String())
}

func TestFormatMeasure(t *testing.T) {
	assert.Equal(t, "100", FormatMeasure(100))
	assert.Equal(t, "0.1", FormatMeasure(0.1))
	assert.Equal(t, "NaN", FormatMeasure(math.NaN()))
	assert.Equal(t, "", DisplayColor(""))
}
