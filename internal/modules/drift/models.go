package drift

// SeriesReport is the drift assessment of one measurement series.
type SeriesReport struct {
	Series   string   `json:"series"`
	Points   int      `json:"points"`
	Latest   float64  `json:"latest"`
	Mean     float64  `json:"mean"`
	StdDev   float64  `json:"std_dev"`
	Sma      *float64 `json:"sma,omitempty"`
	Ema      *float64 `json:"ema,omitempty"`
	ZScore   float64  `json:"z_score"`
	Drifting bool     `json:"drifting"`
}

// CoherenceStatus is one qubit's latest T1/T2 coherence check.
type CoherenceStatus struct {
	Qubit int     `json:"qubit"`
	T1    float64 `json:"t1"`
	T2    float64 `json:"t2"`
	// Ratio is T2 / (2*T1); values above 1 violate the physical bound.
	Ratio     float64 `json:"ratio"`
	Violation bool    `json:"violation"`
}

// Report is a full drift scan over one backend's history.
type Report struct {
	Backend        string         `json:"backend"`
	Window         int            `json:"window"`
	Threshold      float64        `json:"threshold"`
	Series         []SeriesReport `json:"series"`
	DriftingSeries []string       `json:"drifting_series"`

	// Coherence holds the T1/T2 check for every qubit with both series
	// recorded; CoherenceViolations lists the qubits over the bound.
	Coherence           []CoherenceStatus `json:"coherence,omitempty"`
	CoherenceViolations []int             `json:"coherence_violations,omitempty"`
}
