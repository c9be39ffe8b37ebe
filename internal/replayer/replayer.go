// Package replayer defines the contract the motif extractor consumes to
// obtain the ordered sequence of positions in a game, and a reference
// implementation good enough to drive the detectors against real chess.com
// PGN text: it walks each SAN move against an internal board to produce a
// real per-ply FEN, including standard disambiguation, captures, castling,
// en passant, and promotion. NAGs and variations are skipped rather than
// parsed; a production deployment may swap in a hardened reader behind the
// same interface.
package replayer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Position is one ply snapshot in a game, as produced by a Replayer.
type Position struct {
	MoveNumber  int
	WhiteToMove bool
	FEN         string
	Ply         int

	// Move metadata for the ply that produced this position (empty for
	// position 0, the initial position). The extractor reads these
	// directly rather than inferring promotion/check from the board.
	IsPromotion  bool
	IsCheck      bool
	IsCheckmate  bool
	PromotedTo   string // "" unless IsPromotion
	MovedPieceSAN string
	FromSquare   string
	ToSquare     string
}

// Placement returns the first whitespace-separated field of the FEN, the
// only part the board model parses.
func (p Position) Placement() (string, error) {
	fields := strings.Fields(p.FEN)
	if len(fields) == 0 {
		return "", fmt.Errorf("replayer: empty FEN on ply %d", p.Ply)
	}
	return fields[0], nil
}

// Replayer reconstructs the ordered position sequence of a game from PGN
// text, alongside its header map.
type Replayer interface {
	ParseGame(pgn string) (headers map[string]string, positions []Position, err error)
}

var headerRE = regexp.MustCompile(`(?m)^\[(\w+)\s+"([^"]*)"\]`)

// SimpleReplayer is a reference Replayer: it extracts PGN headers with a
// regexp (the teacher scrapes UCI engine output the same way) and applies
// each SAN move to an internal board (internal/replayer/sanmove.go) to
// produce a real Position.FEN per ply, plus the check/mate/promotion suffix
// flags SAN encodes directly. It does not verify check legality or pin
// legality when choosing among ambiguous movers of the same type and
// color — SAN's own disambiguation letters are trusted as given rather than
// re-derived from board state, unlike a full legal-move generator.
type SimpleReplayer struct{}

// NewSimpleReplayer returns a SimpleReplayer.
func NewSimpleReplayer() *SimpleReplayer {
	return &SimpleReplayer{}
}

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseGame extracts headers, then walks the movetext token by token,
// applying each SAN move to a running board so every Position.FEN reflects
// the board after that ply, not just the starting position. A move this
// package's minimal SAN walker can't resolve (see sanmove.go) aborts the
// whole game with an error, matching the per-game error handling the
// worker already applies to a failed ParseGame call.
func (r *SimpleReplayer) ParseGame(pgn string) (map[string]string, []Position, error) {
	headers := map[string]string{}
	for _, m := range headerRE.FindAllStringSubmatch(pgn, -1) {
		headers[m[1]] = m[2]
	}

	movetext := stripHeaders(pgn)
	tokens := tokenizeMovetext(movetext)

	state, err := newGameState()
	if err != nil {
		return nil, nil, err
	}

	positions := []Position{{MoveNumber: 1, WhiteToMove: true, FEN: startFEN, Ply: 0}}

	moveNum := 1
	white := true
	ply := 0

	for _, tok := range tokens {
		if isMoveNumberToken(tok) {
			n, err := strconv.Atoi(strings.TrimRight(tok, "."))
			if err == nil {
				moveNum = n
			}
			continue
		}
		if isResultToken(tok) {
			continue
		}

		san := tok
		ply++

		if err := state.applySAN(san); err != nil {
			return nil, nil, fmt.Errorf("replayer: ply %d (%s): %w", ply, san, err)
		}

		pos := Position{
			MoveNumber:    moveNum,
			WhiteToMove:   !white,
			FEN:           state.fen(moveNum),
			Ply:           ply,
			MovedPieceSAN: san,
		}
		pos.IsCheckmate = strings.HasSuffix(san, "#")
		pos.IsCheck = !pos.IsCheckmate && strings.HasSuffix(san, "+")
		if idx := strings.Index(san, "="); idx >= 0 && idx+1 < len(san) {
			pos.IsPromotion = true
			pos.PromotedTo = string(san[idx+1])
		}

		positions = append(positions, pos)
		white = !white
	}

	return headers, positions, nil
}

func stripHeaders(pgn string) string {
	return headerRE.ReplaceAllString(pgn, "")
}

var moveNumberRE = regexp.MustCompile(`^\d+\.+$`)

func isMoveNumberToken(tok string) bool {
	return moveNumberRE.MatchString(tok)
}

func isResultToken(tok string) bool {
	switch tok {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	default:
		return false
	}
}

// tokenizeMovetext splits movetext into move/move-number/result tokens,
// discarding brace comments, parenthesized variations, and NAGs ($n) rather
// than parsing them.
func tokenizeMovetext(movetext string) []string {
	fields := strings.Fields(movetext)
	out := make([]string, 0, len(fields))
	inComment := false
	variationDepth := 0
	for _, f := range fields {
		if inComment {
			if strings.Contains(f, "}") {
				inComment = false
			}
			continue
		}
		if strings.HasPrefix(f, "{") {
			if !strings.Contains(f, "}") {
				inComment = true
			}
			continue
		}
		if variationDepth > 0 {
			variationDepth += strings.Count(f, "(") - strings.Count(f, ")")
			continue
		}
		if strings.HasPrefix(f, "(") {
			variationDepth = strings.Count(f, "(") - strings.Count(f, ")")
			if variationDepth < 0 {
				variationDepth = 0
			}
			continue
		}
		if strings.HasPrefix(f, "$") {
			continue
		}
		out = append(out, f)
	}
	return out
}

