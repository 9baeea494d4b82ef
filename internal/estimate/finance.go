package estimate

import "errors"

// ErrMarginBlocked is returned when markup+overhead reaches 100% and the
// margin formula is undefined. Callers surface this as a blocked state
// instead of a price.
var ErrMarginBlocked = errors.New("markup plus overhead must be below 100%")

// FinancialSummary is the derived pricing view for a set of validated items.
// It is recomputed on every markup/overhead change and never persisted by
// the core.
type FinancialSummary struct {
	Base     float64 `json:"base"`
	Markup   float64 `json:"markup"`
	Overhead float64 `json:"overhead"`
	Final    float64 `json:"final"`
}

// Summarize derives the financial summary for items with the caller-supplied
// markup and overhead percentages. Convention puts overhead in [5,25] and
// markup in [10,50] but that is a UI concern; the only hard rule here is the
// divide-by-zero guard at markup+overhead >= 100.
func Summarize(items []LineItem, markup, overhead float64) (FinancialSummary, error) {
	if markup+overhead >= 100 {
		return FinancialSummary{}, ErrMarginBlocked
	}
	var base float64
	for _, it := range items {
		base += it.Total
	}
	return FinancialSummary{
		Base:     base,
		Markup:   markup,
		Overhead: overhead,
		Final:    base / (1 - (markup+overhead)/100),
	}, nil
}
