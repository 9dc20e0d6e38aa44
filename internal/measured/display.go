package measured

// Series is one display-ready curve pair.
type Series struct {
	Freq     []float64
	MagDB    []float64
	PhaseDeg []float64
}

// Display runs the condition -> decimate -> thin path for both transfer
// directions. Phase conditioning runs on the full raw sequence before
// binning: unwrap needs every sample to track fast transitions, and bin
// averaging would alias wrap jumps. Raw values stay untouched so option
// toggles re-derive from the same data.
func (d *Dataset) Display(bins, budget int, opts PhaseOptions) (fwd, inv Series) {
	if budget < 1 {
		budget = DefaultPointBudget
	}
	fwd = displaySeries(d.Freq, d.MagDBFwd, d.PhaseDegFwd, bins, budget, opts)
	inv = displaySeries(d.Freq, d.MagDBInv, d.PhaseDegInv, bins, budget, opts)
	return fwd, inv
}

func displaySeries(freq, magDB, phaseDeg []float64, bins, budget int, opts PhaseOptions) Series {
	phase := ConditionPhase(phaseDeg, opts)
	f, m, p := DecimateLog(freq, magDB, phase, bins)
	fThin, pThin := Thin(f, p, budget)
	fThin, mThin := Thin(f, m, budget)
	return Series{Freq: fThin, MagDB: mThin, PhaseDeg: pThin}
}
