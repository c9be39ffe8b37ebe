package motif

import (
	"fmt"

	"github.com/atinm/chesstactics/internal/board"
)

// DetectDiscoveredAttacks implements spec §4.6: operates on a two-position
// sliding window (before, after) and the side that moved between them.
func DetectDiscoveredAttacks(before, after board.Board, mover board.Side, gameURL string, ply, moveNumber int) []Occurrence {
	var out []Occurrence

	vacated := vacatedSquares(before, after, mover)

	for _, v := range vacated {
		vacatedPiece := before.At(v.Row, v.Col)
		toR, toC, destKnown := findDestination(before, after, v.Row, v.Col, vacatedPiece)

		for _, d := range board.QueenDirections {
			back := d.Negate()
			br, bc, ok := board.Walk(after, v.Row, v.Col, back)
			if !ok {
				continue
			}
			revealed := after.At(br, bc)
			if board.SideOf(revealed) != mover {
				continue
			}
			if destKnown && br == toR && bc == toC {
				continue
			}
			if !board.SlidesAlong(abs(revealed), back) {
				continue
			}

			fr, fc, ok := board.Walk(after, v.Row, v.Col, d)
			if !ok {
				continue
			}
			target := after.At(fr, fc)
			if target == 0 || board.SideOf(target) == mover {
				continue
			}

			movedTo := "??"
			if destKnown {
				movedTo = board.SquareName(toR, toC)
			}

			out = append(out, Occurrence{
				GameURL:      gameURL,
				Ply:          ply,
				Motif:        DiscoveredAttack,
				MoveNumber:   moveNumber,
				Side:         mover.String(),
				IsDiscovered: true,
				MovedPiece: fmt.Sprintf("%s%s-%s",
					board.PieceLetter(abs(vacatedPiece)), board.SquareName(v.Row, v.Col), movedTo),
				Attacker: fmt.Sprintf("%s%s", board.PieceLetter(abs(revealed)), board.SquareName(br, bc)),
				Target:   fmt.Sprintf("%s%s", board.PieceLetter(abs(target)), board.SquareName(fr, fc)),
				Description: fmt.Sprintf("%s%s moving away from %s reveals %s%s attacking %s%s",
					board.PieceLetter(abs(vacatedPiece)), movedTo, board.SquareName(v.Row, v.Col),
					board.PieceLetter(abs(revealed)), board.SquareName(br, bc),
					board.PieceLetter(abs(target)), board.SquareName(fr, fc)),
			})
		}
	}

	return out
}

func vacatedSquares(before, after board.Board, mover board.Side) []struct{ Row, Col int } {
	var out []struct{ Row, Col int }
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			bp := before.At(r, c)
			if bp == 0 || board.SideOf(bp) != mover {
				continue
			}
			if after.At(r, c) == 0 {
				out = append(out, struct{ Row, Col int }{r, c})
			}
		}
	}
	return out
}

// findDestination scans the after-board for a square holding the same
// signed piece value that vacated (v.Row, v.Col), excluding the square
// itself. Promotions change the piece value and so are reported unknown
// ("??", ok=false) per spec §4.6.
func findDestination(before, after board.Board, vr, vc, vacatedPiece int) (r, c int, ok bool) {
	for rr := 0; rr < 8; rr++ {
		for cc := 0; cc < 8; cc++ {
			if rr == vr && cc == vc {
				continue
			}
			if after.At(rr, cc) != vacatedPiece {
				continue
			}
			// Skip squares that already held this exact piece value before
			// the move (ambiguous candidates / pieces that didn't move).
			if before.At(rr, cc) == vacatedPiece {
				continue
			}
			return rr, cc, true
		}
	}
	return 0, 0, false
}
