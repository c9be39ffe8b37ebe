package motif

import (
	"fmt"

	"github.com/atinm/chesstactics/internal/board"
)

// pieceValue returns the relative value class used by fork/skewer value
// comparisons: knight and heavier pieces have value >= 2.
func pieceValue(absVal int) int {
	return absVal
}

// DetectForks implements spec §4.4. mover is the side that just moved (the
// attacker); its pieces are scanned for forks against the opponent.
func DetectForks(b board.Board, mover board.Side, gameURL string, ply, moveNumber int) []Occurrence {
	var out []Occurrence

	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := b.At(r, c)
			if piece == 0 || board.SideOf(piece) != mover {
				continue
			}

			targets := board.AttackedSquares(b, r, c)
			var hit []struct{ Row, Col int }
			for _, sq := range targets {
				occ := b.At(sq.Row, sq.Col)
				if occ == 0 || board.SideOf(occ) == mover {
					continue
				}
				if pieceValue(abs(occ)) >= board.Knight {
					hit = append(hit, sq)
				}
			}

			if len(hit) >= 2 {
				var targetDescs []string
				for _, sq := range hit {
					occ := b.At(sq.Row, sq.Col)
					targetDescs = append(targetDescs, fmt.Sprintf("%s%s",
						board.PieceLetter(abs(occ)), board.SquareName(sq.Row, sq.Col)))
				}
				out = append(out, Occurrence{
					GameURL:    gameURL,
					Ply:        ply,
					Motif:      Fork,
					MoveNumber: moveNumber,
					Side:       mover.String(),
					Attacker: fmt.Sprintf("%s%s", board.PieceLetter(abs(piece)),
						board.SquareName(r, c)),
					Target: joinTargets(targetDescs),
					Description: fmt.Sprintf("%s%s forks %s",
						board.PieceLetter(abs(piece)), board.SquareName(r, c), joinTargets(targetDescs)),
				})
			}
		}
	}

	return out
}

func joinTargets(targets []string) string {
	out := ""
	for i, t := range targets {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}
