package orchestrator

import "fmt"

// Margin band thresholds in percent. Exactly 15% and exactly 30% are
// Moderate.
const (
	FavorableAbove   = 30.0
	UnfavorableBelow = 15.0
)

// MarginBand is the interpretation of a sale margin.
type MarginBand int

const (
	MarginUnfavorable MarginBand = iota
	MarginModerate
	MarginFavorable
)

func (b MarginBand) String() string {
	switch b {
	case MarginFavorable:
		return "favorable"
	case MarginModerate:
		return "moderate"
	default:
		return "unfavorable"
	}
}

// Label is the recommendation text shown to the reader.
func (b MarginBand) Label() string {
	switch b {
	case MarginFavorable:
		return "FAVORÁVEL - considerar venda"
	case MarginModerate:
		return "MODERADA - aguardar"
	default:
		return "BAIXA - não vender agora"
	}
}

// MarginPercent returns (price - totalCost) / totalCost * 100.
func MarginPercent(price, totalCost float64) (float64, error) {
	if totalCost <= 0 {
		return 0, fmt.Errorf("total cost must be positive, got %v", totalCost)
	}
	return (price - totalCost) / totalCost * 100, nil
}

// ClassifyMargin maps a margin percentage to its band. The three bands
// partition the real line: (30, +inf), [15, 30], (-inf, 15).
func ClassifyMargin(pct float64) MarginBand {
	switch {
	case pct > FavorableAbove:
		return MarginFavorable
	case pct >= UnfavorableBelow:
		return MarginModerate
	default:
		return MarginUnfavorable
	}
}
