package engine

import "github.com/kingrea/pathway/internal/pathway"

// Observer receives run progress. Implementations must be safe for
// concurrent use when one Engine serves several runs at once.
type Observer interface {
	TermCommitted(runID string, term pathway.Term, cumulativeUnits float64)
	RunFinished(result Result)
}

type nopObserver struct{}

func (nopObserver) TermCommitted(string, pathway.Term, float64) {}

func (nopObserver) RunFinished(Result) {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (o Observers) TermCommitted(runID string, term pathway.Term, units float64) {
	for _, obs := range o {
		obs.TermCommitted(runID, term, units)
	}
}

func (o Observers) RunFinished(result Result) {
	for _, obs := range o {
		obs.RunFinished(result)
	}
}
