package motif

import (
	"fmt"

	"github.com/atinm/chesstactics/internal/board"
)

// pinFinding is one pinned piece along one direction from its king.
type pinFinding struct {
	pinnedRow, pinnedCol     int
	attackerRow, attackerCol int
	attacker                 int
	direction                board.Direction
}

// findPins scans every queen direction from each king and returns every
// (pinned piece, direction, attacker) triple found, per spec §4.2.
func findPins(b board.Board) []pinFinding {
	var findings []pinFinding

	for _, side := range []board.Side{board.White, board.Black} {
		kr, kc := board.FindKing(b, side)
		if kr < 0 {
			continue
		}

		for _, d := range board.QueenDirections {
			br, bc, ok := board.Walk(b, kr, kc, d)
			if !ok {
				continue
			}
			if board.SideOf(b.At(br, bc)) != side {
				continue
			}
			ar, ac, ok := board.Walk(b, br, bc, d)
			if !ok {
				continue
			}
			attacker := b.At(ar, ac)
			if board.SideOf(attacker) == side {
				continue
			}
			if !board.SlidesAlong(abs(attacker), d) {
				continue
			}
			findings = append(findings, pinFinding{
				pinnedRow: br, pinnedCol: bc,
				attackerRow: ar, attackerCol: ac,
				attacker:  attacker,
				direction: d,
			})
		}
	}

	return findings
}

// DetectPins implements spec §4.2: one occurrence per (pinned piece,
// direction).
func DetectPins(b board.Board, gameURL string, ply, moveNumber int) []Occurrence {
	var out []Occurrence
	for _, f := range findPins(b) {
		pinned := b.At(f.pinnedRow, f.pinnedCol)
		side := board.SideOf(pinned)
		out = append(out, Occurrence{
			GameURL:    gameURL,
			Ply:        ply,
			Motif:      Pin,
			MoveNumber: moveNumber,
			Side:       side.String(),
			Attacker: fmt.Sprintf("%s%s", board.PieceLetter(abs(f.attacker)),
				board.SquareName(f.attackerRow, f.attackerCol)),
			Target: fmt.Sprintf("%s%s", board.PieceLetter(abs(pinned)),
				board.SquareName(f.pinnedRow, f.pinnedCol)),
			Description: fmt.Sprintf("%s%s pinned by %s%s along (%d,%d)",
				board.PieceLetter(abs(pinned)), board.SquareName(f.pinnedRow, f.pinnedCol),
				board.PieceLetter(abs(f.attacker)), board.SquareName(f.attackerRow, f.attackerCol),
				f.direction.DR, f.direction.DC),
		})
	}
	return out
}

// findRelativePins generalizes findPins to any same-side anchor piece, not
// only the king: a pinned piece must lie on a queen-direction ray between
// an enemy sliding attacker and a friendlier piece shielded behind it. This
// generalization is what makes spec §4.3's cross-pin ("pinned along two
// distinct directions simultaneously") geometrically possible at all: a
// single square has exactly one direction vector relative to a fixed king,
// so a piece can never be a §4.2 king-pin candidate along two directions
// from the same king. Anchoring on any friendly piece — the ordinary
// "absolute" pin against the king plus a "relative" pin shielding a second
// valuable piece along a different axis — is the standard chess-tactics
// reading of "cross-pin" and is what DESIGN.md records as the resolution.
func findRelativePins(b board.Board) []pinFinding {
	var findings []pinFinding

	for ar := 0; ar < 8; ar++ {
		for ac := 0; ac < 8; ac++ {
			anchor := b.At(ar, ac)
			if anchor == 0 {
				continue
			}
			side := board.SideOf(anchor)

			for _, d := range board.QueenDirections {
				br, bc, ok := board.Walk(b, ar, ac, d)
				if !ok {
					continue
				}
				if board.SideOf(b.At(br, bc)) != side {
					continue
				}
				arr, acc, ok := board.Walk(b, br, bc, d)
				if !ok {
					continue
				}
				attacker := b.At(arr, acc)
				if board.SideOf(attacker) == side {
					continue
				}
				if !board.SlidesAlong(abs(attacker), d) {
					continue
				}
				findings = append(findings, pinFinding{
					pinnedRow: br, pinnedCol: bc,
					attackerRow: arr, attackerCol: acc,
					attacker:  attacker,
					direction: d,
				})
			}
		}
	}

	return findings
}

// DetectCrossPins implements spec §4.3: fires once per piece pinned along
// two or more distinct directions in the same position.
func DetectCrossPins(b board.Board, gameURL string, ply, moveNumber int) []Occurrence {
	type key struct{ r, c int }
	byPiece := map[key][]pinFinding{}
	for _, f := range findRelativePins(b) {
		k := key{f.pinnedRow, f.pinnedCol}
		byPiece[k] = dedupeDirection(byPiece[k], f)
	}

	var out []Occurrence
	for k, findings := range byPiece {
		if len(findings) < 2 {
			continue
		}
		pinned := b.At(k.r, k.c)
		side := board.SideOf(pinned)
		out = append(out, Occurrence{
			GameURL:    gameURL,
			Ply:        ply,
			Motif:      CrossPin,
			MoveNumber: moveNumber,
			Side:       side.String(),
			Target: fmt.Sprintf("%s%s", board.PieceLetter(abs(pinned)),
				board.SquareName(k.r, k.c)),
			Description: fmt.Sprintf("%s%s is cross-pinned along %d directions",
				board.PieceLetter(abs(pinned)), board.SquareName(k.r, k.c), len(findings)),
		})
	}
	return out
}

// dedupeDirection appends f only if no existing finding already pins the
// same square along the same direction (multiple anchors can walk into the
// same ray).
func dedupeDirection(existing []pinFinding, f pinFinding) []pinFinding {
	for _, e := range existing {
		if e.direction == f.direction {
			return existing
		}
	}
	return append(existing, f)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
