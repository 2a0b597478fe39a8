package inspection

import (
	"slices"
	"sort"
	"strings"
)

// Ledger owns all inspection state: every inspected piece by id, the approved
// and rejected sequences, the closed boxes and the single open box.
//
// The id mapping keeps the first piece seen for an id. A repeated id is
// rejected as DuplicateReason and tracked only in the rejected sequence.
type Ledger struct {
	policy   ReasonPolicy
	handlers []EventHandler

	pieces   map[string]Piece
	approved []Piece
	rejected []Piece
	closed   []Box
	open     Box
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithReasonPolicy sets how Report consolidates rejection reasons.
func WithReasonPolicy(policy ReasonPolicy) Option {
	return func(l *Ledger) {
		if policy != "" {
			l.policy = policy
		}
	}
}

// WithEventHandler subscribes h to box events. It may be given more than once.
func WithEventHandler(h EventHandler) Option {
	return func(l *Ledger) {
		if h != nil {
			l.handlers = append(l.handlers, h)
		}
	}
}

// NewLedger returns an empty ledger with one empty open box.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		policy: ReasonPolicyWhole,
		pieces: make(map[string]Piece),
		open:   Box{Number: 1},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the reason consolidation policy in effect.
func (l *Ledger) Policy() ReasonPolicy {
	return l.policy
}

// Inspect classifies p, files it into the approved or rejected sequence and
// packs approved pieces. The classified piece is returned.
func (l *Ledger) Inspect(p Piece) Piece {
	p.ID = strings.TrimSpace(p.ID)
	p.Color = normalizeColor(p.Color)
	p.Approved = false
	p.RejectionReason = ""

	if _, exists := l.pieces[p.ID]; exists {
		p.RejectionReason = DuplicateReason
		l.rejected = append(l.rejected, p)
		return p
	}

	if violations := Violations(p); len(violations) > 0 {
		p.RejectionReason = strings.Join(violations, ReasonSeparator)
		l.rejected = append(l.rejected, p)
	} else {
		p.Approved = true
		l.approved = append(l.approved, p)
		l.pack(p)
	}

	l.pieces[p.ID] = p
	return p
}

// pack appends p to the open box. A full box is moved to the closed sequence
// and replaced, so the closed box shares no backing array with the open one.
func (l *Ledger) pack(p Piece) {
	l.open.Pieces = append(l.open.Pieces, p)
	if len(l.open.Pieces) < BoxCapacity {
		return
	}

	full := l.open
	full.Closed = true
	l.closed = append(l.closed, full)
	l.open = Box{Number: full.Number + 1}

	l.emit(Event{
		Kind:       EventBoxClosed,
		Box:        full.Number,
		Population: len(full.Pieces),
		PieceID:    p.ID,
	})
}

// Remove deletes the piece with the given id from every collection. It
// reports false, leaving state untouched, when the id is unknown.
//
// Closed boxes keep their status and number after losing a piece; nothing is
// repacked.
//
// Duplicate rejections recorded under the same id are dropped too, even when
// the removed piece was approved. Removing an approved id therefore lowers
// TotalRejected by the number of repeated attempts under that id.
func (l *Ledger) Remove(id string) bool {
	id = strings.TrimSpace(id)

	p, ok := l.pieces[id]
	if !ok {
		return false
	}
	delete(l.pieces, id)

	if p.Approved {
		l.approved = withoutID(l.approved, id)
		l.open.Pieces = withoutID(l.open.Pieces, id)

		for i := range l.closed {
			box := &l.closed[i]
			if !containsID(box.Pieces, id) {
				continue
			}
			box.Pieces = withoutID(box.Pieces, id)
			l.emit(Event{
				Kind:       EventClosedBoxAltered,
				Box:        box.Number,
				Population: len(box.Pieces),
				PieceID:    id,
			})
		}
	}

	l.rejected = withoutID(l.rejected, id)
	return true
}

// Report computes the consolidated counts. It does not modify the ledger.
func (l *Ledger) Report() Report {
	boxesInUse := len(l.closed)
	if len(l.open.Pieces) > 0 {
		boxesInUse++
	}

	reasons := make(map[string]int)
	for _, p := range l.rejected {
		reason := p.RejectionReason
		if reason == "" {
			reason = UnknownReason
		}
		if l.policy == ReasonPolicySplit {
			for _, part := range strings.Split(reason, ReasonSeparator) {
				reasons[part]++
			}
			continue
		}
		reasons[reason]++
	}

	return Report{
		TotalInspected:   len(l.pieces),
		TotalApproved:    len(l.approved),
		TotalRejected:    len(l.rejected),
		ClosedBoxes:      len(l.closed),
		BoxesInUse:       boxesInUse,
		OpenBoxCount:     len(l.open.Pieces),
		BoxCapacity:      BoxCapacity,
		Policy:           l.policy,
		RejectionReasons: reasons,
	}
}

// Approved returns a copy of the approved pieces in arrival order.
func (l *Ledger) Approved() []Piece {
	return clonePieces(l.approved)
}

// Rejected returns a copy of the rejected pieces in arrival order, duplicates included.
func (l *Ledger) Rejected() []Piece {
	return clonePieces(l.rejected)
}

// ClosedBoxes returns copies of the closed boxes in closing order.
func (l *Ledger) ClosedBoxes() []Box {
	out := make([]Box, len(l.closed))
	for i, b := range l.closed {
		out[i] = b.clone()
	}
	return out
}

// OpenBox returns a copy of the box currently being filled.
func (l *Ledger) OpenBox() Box {
	return l.open.clone()
}

// Pieces returns every piece in the id mapping ordered by id.
func (l *Ledger) Pieces() []Piece {
	out := make([]Piece, 0, len(l.pieces))
	for _, p := range l.pieces {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup returns the piece bound to id in the mapping.
func (l *Ledger) Lookup(id string) (Piece, bool) {
	p, ok := l.pieces[strings.TrimSpace(id)]
	return p, ok
}

// Contains reports whether id is bound in the mapping.
func (l *Ledger) Contains(id string) bool {
	_, ok := l.pieces[strings.TrimSpace(id)]
	return ok
}

func (l *Ledger) emit(e Event) {
	for _, h := range l.handlers {
		h(e)
	}
}

func withoutID(pieces []Piece, id string) []Piece {
	return slices.DeleteFunc(pieces, func(p Piece) bool {
		return p.ID == id
	})
}

func containsID(pieces []Piece, id string) bool {
	return slices.ContainsFunc(pieces, func(p Piece) bool {
		return p.ID == id
	})
}
