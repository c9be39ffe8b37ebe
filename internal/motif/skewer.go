package motif

import (
	"fmt"

	"github.com/atinm/chesstactics/internal/board"
)

// DetectSkewers implements spec §4.5. mover is the side that just moved.
func DetectSkewers(b board.Board, mover board.Side, gameURL string, ply, moveNumber int) []Occurrence {
	var out []Occurrence

	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			attacker := b.At(r, c)
			if attacker == 0 || board.SideOf(attacker) != mover {
				continue
			}
			av := abs(attacker)
			if av != board.Bishop && av != board.Rook && av != board.Queen {
				continue
			}

			for _, d := range board.QueenDirections {
				if !board.SlidesAlong(av, d) {
					continue
				}

				fr, fc, ok := board.Walk(b, r, c, d)
				if !ok {
					continue
				}
				front := b.At(fr, fc)
				if board.SideOf(front) == mover {
					continue
				}

				br, bc, ok := board.Walk(b, fr, fc, d)
				if !ok {
					continue
				}
				back := b.At(br, bc)
				if board.SideOf(back) == mover {
					continue
				}

				if abs(front) > abs(back) {
					out = append(out, Occurrence{
						GameURL:    gameURL,
						Ply:        ply,
						Motif:      Skewer,
						MoveNumber: moveNumber,
						Side:       mover.String(),
						Attacker: fmt.Sprintf("%s%s", board.PieceLetter(av), board.SquareName(r, c)),
						Target: fmt.Sprintf("%s%s/%s%s",
							board.PieceLetter(abs(front)), board.SquareName(fr, fc),
							board.PieceLetter(abs(back)), board.SquareName(br, bc)),
						Description: fmt.Sprintf("%s%s skewers %s%s through to %s%s",
							board.PieceLetter(av), board.SquareName(r, c),
							board.PieceLetter(abs(front)), board.SquareName(fr, fc),
							board.PieceLetter(abs(back)), board.SquareName(br, bc)),
					})
				}
			}
		}
	}

	return out
}
