package replayer

import (
	"fmt"
	"strings"

	"github.com/atinm/chesstactics/internal/board"
)

// gameState is the running board the replayer advances one SAN token at a
// time. It mirrors the "origin lookup by piece type, then mutate" shape of
// pgntools.PgnBoard.UpdateBoard (clinaresl/pgnparser), adapted to the
// row/col board and Direction helpers already in internal/board rather than
// that package's precomputed flat-index threat tables.
type gameState struct {
	b      board.Board
	toMove board.Side
}

func newGameState() (*gameState, error) {
	b, err := board.ParseFEN(strings.Fields(startFEN)[0])
	if err != nil {
		return nil, fmt.Errorf("replayer: starting position is malformed: %w", err)
	}
	return &gameState{b: b, toMove: board.White}, nil
}

// fen renders the current board plus side-to-move as a full FEN string.
// Castling rights, en passant target, and move counters are not tracked by
// the detectors this feeds, so they're emitted as placeholders.
func (g *gameState) fen(fullMove int) string {
	turn := "w"
	if g.toMove == board.Black {
		turn = "b"
	}
	return fmt.Sprintf("%s %s - - 0 %d", g.b.Placement(), turn, fullMove)
}

// applySAN mutates g to reflect san, the move text for g.toMove's side.
func (g *gameState) applySAN(san string) error {
	move := strings.TrimRight(san, "+#!?")
	if move == "" {
		return fmt.Errorf("empty move")
	}

	switch move {
	case "O-O", "0-0":
		return g.applyCastle(true)
	case "O-O-O", "0-0-0":
		return g.applyCastle(false)
	}

	promotion := byte(0)
	if idx := strings.IndexByte(move, '='); idx >= 0 {
		if idx+1 >= len(move) {
			return fmt.Errorf("malformed promotion in %q", san)
		}
		promotion = move[idx+1]
		move = move[:idx]
	}

	capture := strings.ContainsRune(move, 'x')
	move = strings.ReplaceAll(move, "x", "")

	pieceType := board.Pawn
	rest := move
	if len(move) > 0 && isPieceLetter(move[0]) {
		pieceType = pieceFromLetter(move[0])
		rest = move[1:]
	}
	if len(rest) < 2 {
		return fmt.Errorf("malformed move %q", san)
	}

	destCol, destRow, err := squareFromAlgebraic(rest[len(rest)-2], rest[len(rest)-1])
	if err != nil {
		return fmt.Errorf("malformed destination in %q: %w", san, err)
	}

	var wantFile, wantRank byte
	for i := 0; i < len(rest)-2; i++ {
		switch c := rest[i]; {
		case c >= 'a' && c <= 'h':
			wantFile = c
		case c >= '1' && c <= '8':
			wantRank = c
		}
	}

	srcRow, srcCol, err := g.findSource(pieceType, destRow, destCol, wantFile, wantRank, capture)
	if err != nil {
		return fmt.Errorf("%s: %w", san, err)
	}

	g.move(srcRow, srcCol, destRow, destCol, pieceType, promotion)
	g.toMove = g.toMove.Opposite()
	return nil
}

func (g *gameState) applyCastle(kingSide bool) error {
	row := 7
	if g.toMove == board.Black {
		row = 0
	}
	kingCol, rookCol, newKingCol, newRookCol := 4, 7, 6, 5
	if !kingSide {
		rookCol, newKingCol, newRookCol = 0, 2, 3
	}
	king, rook := g.b[row][kingCol], g.b[row][rookCol]
	if board.SideOf(king) != g.toMove || board.SideOf(rook) != g.toMove {
		return fmt.Errorf("castle: king or rook missing from starting square")
	}
	g.b[row][kingCol], g.b[row][rookCol] = 0, 0
	g.b[row][newKingCol], g.b[row][newRookCol] = king, rook
	g.toMove = g.toMove.Opposite()
	return nil
}

// move relocates the piece at (srcRow, srcCol) to (destRow, destCol),
// resolving promotion and en passant capture along the way.
func (g *gameState) move(srcRow, srcCol, destRow, destCol, pieceType int, promotion byte) {
	moving := g.b[srcRow][srcCol]
	if pieceType == board.Pawn && srcCol != destCol && g.b[destRow][destCol] == 0 {
		// En passant: the captured pawn sits beside the mover, on its
		// starting rank, not on the destination square.
		g.b[srcRow][destCol] = 0
	}
	g.b[srcRow][srcCol] = 0
	if promotion != 0 {
		promoted := pieceFromLetter(promotion)
		if g.toMove == board.Black {
			promoted = -promoted
		}
		g.b[destRow][destCol] = promoted
		return
	}
	g.b[destRow][destCol] = moving
}

func (g *gameState) findSource(pieceType, destRow, destCol int, wantFile, wantRank byte, capture bool) (int, int, error) {
	switch pieceType {
	case board.Pawn:
		return g.findPawnSource(destRow, destCol, wantFile, capture)
	case board.Knight:
		return g.findLeaperSource(board.Knight, destRow, destCol, wantFile, wantRank, board.KnightOffsets)
	case board.King:
		return g.findLeaperSource(board.King, destRow, destCol, wantFile, wantRank, board.QueenDirections)
	case board.Bishop:
		return g.findSliderSource(board.Bishop, destRow, destCol, wantFile, wantRank, board.Diagonal)
	case board.Rook:
		return g.findSliderSource(board.Rook, destRow, destCol, wantFile, wantRank, board.Orthogonal)
	case board.Queen:
		return g.findSliderSource(board.Queen, destRow, destCol, wantFile, wantRank, board.QueenDirections)
	default:
		return 0, 0, fmt.Errorf("unknown piece type %d", pieceType)
	}
}

func (g *gameState) findPawnSource(destRow, destCol int, wantFile byte, capture bool) (int, int, error) {
	want, step := board.Pawn, 1
	if g.toMove == board.Black {
		want, step = -board.Pawn, -1
	}

	if capture {
		srcRow, srcCol := destRow+step, destCol
		if wantFile != 0 {
			srcCol = int(wantFile - 'a')
		}
		if !board.InBounds(srcRow, srcCol) || g.b[srcRow][srcCol] != want {
			return 0, 0, fmt.Errorf("no pawn found for capture to %s", board.SquareName(destRow, destCol))
		}
		return srcRow, srcCol, nil
	}

	oneBack := destRow + step
	if board.InBounds(oneBack, destCol) && g.b[oneBack][destCol] == want {
		return oneBack, destCol, nil
	}
	twoBack := destRow + 2*step
	if board.InBounds(oneBack, destCol) && g.b[oneBack][destCol] == 0 &&
		board.InBounds(twoBack, destCol) && g.b[twoBack][destCol] == want {
		return twoBack, destCol, nil
	}
	return 0, 0, fmt.Errorf("no pawn found for move to %s", board.SquareName(destRow, destCol))
}

// findLeaperSource handles knights and kings: pieces whose reachability
// from a candidate square doesn't depend on the squares in between.
func (g *gameState) findLeaperSource(pieceType, destRow, destCol int, wantFile, wantRank byte, offsets []board.Direction) (int, int, error) {
	want := pieceType
	if g.toMove == board.Black {
		want = -pieceType
	}
	var candidates [][2]int
	for _, off := range offsets {
		r, c := destRow-off.DR, destCol-off.DC
		if !board.InBounds(r, c) || g.b[r][c] != want {
			continue
		}
		if !matchesQualifier(r, c, wantFile, wantRank) {
			continue
		}
		candidates = append(candidates, [2]int{r, c})
	}
	return onlyCandidate(candidates, destRow, destCol)
}

// findSliderSource handles bishops, rooks, and queens: scan every square
// holding the right piece and check the ray to the destination is both a
// permitted direction and unobstructed, the same two checks
// pgntools.getOriginGeneric makes by walking precomputed threat lists.
func (g *gameState) findSliderSource(pieceType, destRow, destCol int, wantFile, wantRank byte, directions []board.Direction) (int, int, error) {
	want := pieceType
	if g.toMove == board.Black {
		want = -pieceType
	}
	var candidates [][2]int
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if g.b[r][c] != want || !matchesQualifier(r, c, wantFile, wantRank) {
				continue
			}
			dir, ok := straightDirection(r, c, destRow, destCol)
			if !ok || !containsDirection(directions, dir) {
				continue
			}
			if !slidePathClear(g.b, r, c, destRow, destCol, dir) {
				continue
			}
			candidates = append(candidates, [2]int{r, c})
		}
	}
	return onlyCandidate(candidates, destRow, destCol)
}

func matchesQualifier(row, col int, wantFile, wantRank byte) bool {
	name := board.SquareName(row, col)
	if wantFile != 0 && name[0] != wantFile {
		return false
	}
	if wantRank != 0 && name[1] != wantRank {
		return false
	}
	return true
}

func onlyCandidate(candidates [][2]int, destRow, destCol int) (int, int, error) {
	switch len(candidates) {
	case 0:
		return 0, 0, fmt.Errorf("no piece found that can reach %s", board.SquareName(destRow, destCol))
	case 1:
		return candidates[0][0], candidates[0][1], nil
	default:
		return 0, 0, fmt.Errorf("ambiguous move to %s", board.SquareName(destRow, destCol))
	}
}

func straightDirection(srcRow, srcCol, destRow, destCol int) (board.Direction, bool) {
	dr, dc := destRow-srcRow, destCol-srcCol
	if dr == 0 && dc == 0 {
		return board.Direction{}, false
	}
	if dr != 0 && dc != 0 && abs(dr) != abs(dc) {
		return board.Direction{}, false
	}
	return board.Direction{DR: sign(dr), DC: sign(dc)}, true
}

func containsDirection(dirs []board.Direction, d board.Direction) bool {
	for _, x := range dirs {
		if x == d {
			return true
		}
	}
	return false
}

// slidePathClear reports whether every square strictly between src and dest
// along d is empty, so a sliding piece at src can reach dest.
func slidePathClear(b board.Board, srcRow, srcCol, destRow, destCol int, d board.Direction) bool {
	r, c := srcRow+d.DR, srcCol+d.DC
	for r != destRow || c != destCol {
		if b[r][c] != 0 {
			return false
		}
		r += d.DR
		c += d.DC
	}
	return true
}

func squareFromAlgebraic(file, rank byte) (col, row int, err error) {
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, 0, fmt.Errorf("square %q out of range", string([]byte{file, rank}))
	}
	return int(file - 'a'), 7 - int(rank-'1'), nil
}

func pieceFromLetter(l byte) int {
	switch l {
	case 'N':
		return board.Knight
	case 'B':
		return board.Bishop
	case 'R':
		return board.Rook
	case 'Q':
		return board.Queen
	case 'K':
		return board.King
	default:
		return board.Pawn
	}
}

func isPieceLetter(c byte) bool {
	switch c {
	case 'N', 'B', 'R', 'Q', 'K':
		return true
	default:
		return false
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
