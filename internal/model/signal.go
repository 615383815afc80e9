package model

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}

// SignalTier maps a total score range to a recommendation.
type SignalTier struct {
	Label   string `json:"label"`
	Neutral bool   `json:"neutral"`
}

// ScanSignal is the final output of the strategy engine for one symbol.
type ScanSignal struct {
	Symbol     string        `json:"symbol"`
	Factors    []FactorScore `json:"factors"`
	TotalScore float64       `json:"total_score"`
	Tier       SignalTier    `json:"tier"`
	WarningMsg string        `json:"warning,omitempty"`
}
