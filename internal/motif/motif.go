// Package motif implements the per-position tactical-motif detectors and
// the feature extractor that drives them across a full game.
package motif

// Motif names a recognized tactical pattern.
type Motif string

const (
	Pin                    Motif = "PIN"
	CrossPin               Motif = "CROSS_PIN"
	Fork                   Motif = "FORK"
	Skewer                 Motif = "SKEWER"
	DiscoveredAttack       Motif = "DISCOVERED_ATTACK"
	Check                  Motif = "CHECK"
	Checkmate              Motif = "CHECKMATE"
	Promotion              Motif = "PROMOTION"
	PromotionWithCheck     Motif = "PROMOTION_WITH_CHECK"
	PromotionWithCheckmate Motif = "PROMOTION_WITH_CHECKMATE"
)

// AllMotifs lists every motif the system recognizes, in the order feature
// rows expose their boolean flags.
var AllMotifs = []Motif{
	Pin, CrossPin, Fork, Skewer, DiscoveredAttack,
	Check, Checkmate, Promotion, PromotionWithCheck, PromotionWithCheckmate,
}

// Occurrence is one firing of a motif in one position of one game.
type Occurrence struct {
	GameURL     string
	Ply         int
	Motif       Motif
	MoveNumber  int
	Side        string // "white" | "black"
	Description string

	Attacker   string
	Target     string
	MovedPiece string

	IsDiscovered bool
	IsMate       bool
}

// Features is the per-game aggregate the extractor produces.
type Features struct {
	NumMoves    int
	Motifs      map[Motif]bool
	Occurrences []Occurrence
}

// HasMotif reports whether the feature set recorded at least one
// occurrence of m.
func (f *Features) HasMotif(m Motif) bool {
	return f.Motifs[m]
}

func newFeatures() *Features {
	return &Features{Motifs: map[Motif]bool{}}
}

func (f *Features) record(o Occurrence) {
	f.Occurrences = append(f.Occurrences, o)
	f.Motifs[o.Motif] = true
}
