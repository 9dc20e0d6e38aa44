package bode

// Point is one report-table row: curve values interpolated at a single
// report frequency.
type Point struct {
	Freq     float64
	MagDB    float64
	PhaseDeg float64
}

// Report samples the evaluated curves at the report frequencies.
func Report(g Grid, magDB, phaseDeg []float64, report []float64) []Point {
	rows := make([]Point, len(report))
	for i, f := range report {
		rows[i] = Point{
			Freq:     f,
			MagDB:    Interp(f, g.Freq, magDB),
			PhaseDeg: Interp(f, g.Freq, phaseDeg),
		}
	}
	return rows
}

// DiffRow pairs reference and adjusted report points with their differences,
// matching the seven-column comparison table.
type DiffRow struct {
	Freq      float64
	MagRef    float64
	MagAdj    float64
	MagDiff   float64
	PhaseRef  float64
	PhaseAdj  float64
	PhaseDiff float64
}

// Compare builds the reference-vs-adjusted table at the report frequencies.
// ref and adj must be evaluated on the same grid.
func Compare(g Grid, refMag, refPhase, adjMag, adjPhase, report []float64) []DiffRow {
	rows := make([]DiffRow, len(report))
	for i, f := range report {
		mr := Interp(f, g.Freq, refMag)
		ma := Interp(f, g.Freq, adjMag)
		pr := Interp(f, g.Freq, refPhase)
		pa := Interp(f, g.Freq, adjPhase)
		rows[i] = DiffRow{
			Freq: f, MagRef: mr, MagAdj: ma, MagDiff: ma - mr,
			PhaseRef: pr, PhaseAdj: pa, PhaseDiff: pa - pr,
		}
	}
	return rows
}
