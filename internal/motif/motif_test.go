package motif

import (
	"testing"

	"github.com/atinm/chesstactics/internal/board"
	"github.com/stretchr/testify/require"
)

func mustBoard(t *testing.T, fen string) board.Board {
	t.Helper()
	b, err := board.ParseFEN(fen)
	require.NoError(t, err)
	return b
}

// S1: Pin by rook along a file. King(7,4), knight(5,4), rook(0,4).
func TestDetectPinsRookAlongFile(t *testing.T) {
	b := mustBoard(t, "k3r3/8/8/8/8/4N3/8/4K3")
	occs := DetectPins(b, "g1", 10, 5)
	require.Len(t, occs, 1)
	require.Equal(t, Pin, occs[0].Motif)
	require.Equal(t, "white", occs[0].Side)
}

// Cross-pin — the queen is absolutely pinned to the king along the file by
// the rook, and relatively pinned to the knight along the diagonal by the
// bishop: two distinct pin directions on the same piece in one position.
func TestDetectCrossPin(t *testing.T) {
	b := mustBoard(t, "4r2k/8/1b6/8/8/4Q3/8/4K1N1")
	occs := DetectCrossPins(b, "g1", 12, 6)
	require.Len(t, occs, 1)
	require.Equal(t, CrossPin, occs[0].Motif)
}

// S3: Knight fork of queen and rook; with pawn instead of queen, no fork.
func TestDetectForkKnightForksQueenAndRook(t *testing.T) {
	b := mustBoard(t, "7k/8/2q1r3/8/3N4/8/8/K7")
	occs := DetectForks(b, board.White, "g1", 3, 2)
	require.Len(t, occs, 1)
	require.Equal(t, Fork, occs[0].Motif)
}

func TestDetectForkRequiresTwoHeavyTargets(t *testing.T) {
	b := mustBoard(t, "7k/8/2p1r3/8/3N4/8/8/K7")
	occs := DetectForks(b, board.White, "g1", 3, 2)
	require.Empty(t, occs, "fork must not fire with only one value>=2 target")
}

// S4: Skewer — rook(4,0), queen(4,3), pawn(4,5).
func TestDetectSkewer(t *testing.T) {
	b := mustBoard(t, "7k/8/8/8/R2q1p2/8/8/K7")
	occs := DetectSkewers(b, board.White, "g1", 4, 2)
	require.Len(t, occs, 1)
	require.Equal(t, Skewer, occs[0].Motif)
}

func TestDetectSkewerRequiresValueOrdering(t *testing.T) {
	// Front piece (pawn) is lighter than back piece (queen): not a skewer.
	b := mustBoard(t, "7k/8/8/8/R2p1q2/8/8/K7")
	occs := DetectSkewers(b, board.White, "g1", 4, 2)
	require.Empty(t, occs)
}

func TestDetectDiscoveredAttack(t *testing.T) {
	// White rook a1, white knight a5 (blocker), black queen a8. Knight
	// hops off the file to b3, revealing the rook's attack on the queen.
	before := mustBoard(t, "q7/8/8/N7/8/8/8/R3K2k")
	after := mustBoard(t, "q7/8/8/8/8/1N6/8/R3K2k")
	occs := DetectDiscoveredAttacks(before, after, board.White, "g1", 20, 10)
	require.Len(t, occs, 1)
	require.Equal(t, DiscoveredAttack, occs[0].Motif)
	require.True(t, occs[0].IsDiscovered)
}

func TestDetectDiscoveredAttackLocalityIsPairwise(t *testing.T) {
	// Detector must depend only on the two boards passed in, not on any
	// prior call's state.
	before := mustBoard(t, "q7/8/8/N7/8/8/8/R3K2k")
	after := mustBoard(t, "q7/8/8/8/8/1N6/8/R3K2k")
	first := DetectDiscoveredAttacks(before, after, board.White, "g1", 20, 10)
	second := DetectDiscoveredAttacks(before, after, board.White, "g1", 20, 10)
	require.Equal(t, first, second)
}
