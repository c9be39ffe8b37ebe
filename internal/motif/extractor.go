package motif

import (
	"fmt"

	"github.com/atinm/chesstactics/internal/board"
	"github.com/atinm/chesstactics/internal/replayer"
)

// Extract implements spec §4.7: it replays the position sequence, runs
// every detector, and aggregates the result into a Features record. The
// detectors do not share mutable state and could be fanned out per
// position; occurrences are appended here in (ply, motif-kind) order to
// satisfy the ordering guarantee in spec §5 regardless of how a caller
// chooses to parallelize detector execution.
func Extract(gameURL string, positions []replayer.Position) (*Features, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("motif: extract %s: no positions", gameURL)
	}

	features := newFeatures()
	features.NumMoves = len(positions) - 1

	boards := make([]board.Board, len(positions))
	for i, pos := range positions {
		placement, err := pos.Placement()
		if err != nil {
			return nil, fmt.Errorf("motif: extract %s ply %d: %w", gameURL, pos.Ply, err)
		}
		b, err := board.ParseFEN(placement)
		if err != nil {
			return nil, fmt.Errorf("motif: extract %s ply %d: %w", gameURL, pos.Ply, err)
		}
		boards[i] = b
	}

	for i := 1; i < len(positions); i++ {
		pos := positions[i]
		cur := boards[i]
		prev := boards[i-1]

		// WhiteToMove on position i is whose turn it is *now*; the mover
		// of the ply that produced position i is the other side.
		mover := board.White
		if pos.WhiteToMove {
			mover = board.Black
		}

		for _, occ := range DetectPins(cur, gameURL, pos.Ply, pos.MoveNumber) {
			features.record(occ)
		}
		for _, occ := range DetectCrossPins(cur, gameURL, pos.Ply, pos.MoveNumber) {
			features.record(occ)
		}
		for _, occ := range DetectForks(cur, mover, gameURL, pos.Ply, pos.MoveNumber) {
			features.record(occ)
		}
		for _, occ := range DetectSkewers(cur, mover, gameURL, pos.Ply, pos.MoveNumber) {
			features.record(occ)
		}
		for _, occ := range DetectDiscoveredAttacks(prev, cur, mover, gameURL, pos.Ply, pos.MoveNumber) {
			features.record(occ)
		}

		for _, occ := range moveMetadataOccurrences(pos, mover, gameURL) {
			features.record(occ)
		}
	}

	return features, nil
}

// moveMetadataOccurrences implements the open-question decision in
// SPEC_FULL.md §5.1: a position flagged promotion && checkmate emits
// PROMOTION, CHECKMATE, and PROMOTION_WITH_CHECKMATE, each once.
func moveMetadataOccurrences(pos replayer.Position, mover board.Side, gameURL string) []Occurrence {
	var out []Occurrence

	base := Occurrence{
		GameURL:    gameURL,
		Ply:        pos.Ply,
		MoveNumber: pos.MoveNumber,
		Side:       mover.String(),
		MovedPiece: pos.MovedPieceSAN,
	}

	switch {
	case pos.IsPromotion && pos.IsCheckmate:
		p := base
		p.Motif = Promotion
		p.Description = fmt.Sprintf("%s promotes to %s", pos.MovedPieceSAN, pos.PromotedTo)
		out = append(out, p)

		cm := base
		cm.Motif = Checkmate
		cm.IsMate = true
		cm.Description = fmt.Sprintf("%s delivers checkmate", pos.MovedPieceSAN)
		out = append(out, cm)

		pcm := base
		pcm.Motif = PromotionWithCheckmate
		pcm.IsMate = true
		pcm.Description = fmt.Sprintf("%s promotes to %s with checkmate", pos.MovedPieceSAN, pos.PromotedTo)
		out = append(out, pcm)

	case pos.IsPromotion && pos.IsCheck:
		p := base
		p.Motif = Promotion
		p.Description = fmt.Sprintf("%s promotes to %s", pos.MovedPieceSAN, pos.PromotedTo)
		out = append(out, p)

		c := base
		c.Motif = Check
		c.Description = fmt.Sprintf("%s gives check", pos.MovedPieceSAN)
		out = append(out, c)

		pc := base
		pc.Motif = PromotionWithCheck
		pc.Description = fmt.Sprintf("%s promotes to %s with check", pos.MovedPieceSAN, pos.PromotedTo)
		out = append(out, pc)

	case pos.IsPromotion:
		p := base
		p.Motif = Promotion
		p.Description = fmt.Sprintf("%s promotes to %s", pos.MovedPieceSAN, pos.PromotedTo)
		out = append(out, p)

	case pos.IsCheckmate:
		cm := base
		cm.Motif = Checkmate
		cm.IsMate = true
		cm.Description = fmt.Sprintf("%s delivers checkmate", pos.MovedPieceSAN)
		out = append(out, cm)

	case pos.IsCheck:
		c := base
		c.Motif = Check
		c.Description = fmt.Sprintf("%s gives check", pos.MovedPieceSAN)
		out = append(out, c)
	}

	return out
}
