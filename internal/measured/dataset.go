package measured

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"strconv"
	"strings"
)

// Load failures.
var (
	// ErrMissingColumn indicates the required freq_hz column is absent.
	ErrMissingColumn = errors.New("measured: csv must contain a freq_hz column")

	// ErrUnsupportedSchema indicates neither recognized column set is present.
	ErrUnsupportedSchema = errors.New("measured: csv must contain (freq_hz,h_real,h_imag) or (freq_hz,mag_db,phase_deg)")

	// ErrEmptyData indicates a csv with a header but no data rows.
	ErrEmptyData = errors.New("measured: csv contains no data rows")
)

// Dataset holds the filtered raw series derived at load time: frequencies in
// Hz plus dB-magnitude/degree-phase for the forward transfer Hf and its
// inverse 1/Hf, aligned by index.
type Dataset struct {
	Freq        []float64
	MagDBFwd    []float64
	PhaseDegFwd []float64
	MagDBInv    []float64
	PhaseDegInv []float64
}

// Len is the number of retained samples.
func (d *Dataset) Len() int { return len(d.Freq) }

// Load reads a transfer-function CSV from disk. A missing file surfaces as
// fs.ErrNotExist via the returned error.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a comma-delimited record with a header row in one of the two
// supported schemas and runs the derive and filter stages.
func Parse(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingColumn
	}
	if err != nil {
		return nil, fmt.Errorf("measured: read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	freqIdx, ok := col["freq_hz"]
	if !ok {
		return nil, ErrMissingColumn
	}

	realIdx, haveReal := col["h_real"]
	imagIdx, haveImag := col["h_imag"]
	magIdx, haveMag := col["mag_db"]
	phaseIdx, havePhase := col["phase_deg"]

	complexSchema := haveReal && haveImag
	polarSchema := haveMag && havePhase
	if !complexSchema && !polarSchema {
		return nil, ErrUnsupportedSchema
	}

	var freq []float64
	var hf []complex128
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("measured: read row: %w", err)
		}
		f, err := field(rec, freqIdx)
		if err != nil {
			return nil, err
		}
		var h complex128
		if complexSchema {
			re, err := field(rec, realIdx)
			if err != nil {
				return nil, err
			}
			im, err := field(rec, imagIdx)
			if err != nil {
				return nil, err
			}
			h = complex(re, im)
		} else {
			magDB, err := field(rec, magIdx)
			if err != nil {
				return nil, err
			}
			phaseDeg, err := field(rec, phaseIdx)
			if err != nil {
				return nil, err
			}
			mag := math.Pow(10, magDB/20)
			h = cmplx.Rect(mag, phaseDeg*math.Pi/180)
		}
		freq = append(freq, f)
		hf = append(hf, h)
	}
	if len(freq) == 0 {
		return nil, ErrEmptyData
	}
	return derive(freq, hf), nil
}

func field(rec []string, idx int) (float64, error) {
	if idx >= len(rec) {
		return 0, fmt.Errorf("measured: short row (%d fields)", len(rec))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
	if err != nil {
		// Tolerate unparseable cells the way the filter stage tolerates
		// non-finite samples: the row gets dropped.
		return math.NaN(), nil
	}
	return v, nil
}

// derive computes both transfer directions and drops any sample where the
// frequency is invalid or any derived value is non-finite (a zero crossing
// of Hf blows up the inverse, for example).
func derive(freq []float64, hf []complex128) *Dataset {
	d := &Dataset{}
	for i, f := range freq {
		hinv := 1 / hf[i]
		magFwd := magDB(cmplx.Abs(hf[i]))
		phaseFwd := cmplx.Phase(hf[i]) * 180 / math.Pi
		magInv := magDB(cmplx.Abs(hinv))
		phaseInv := cmplx.Phase(hinv) * 180 / math.Pi

		if !math.IsInf(f, 0) && !math.IsNaN(f) && f > 0 &&
			finite(magFwd) && finite(phaseFwd) && finite(magInv) && finite(phaseInv) {
			d.Freq = append(d.Freq, f)
			d.MagDBFwd = append(d.MagDBFwd, magFwd)
			d.PhaseDegFwd = append(d.PhaseDegFwd, phaseFwd)
			d.MagDBInv = append(d.MagDBInv, magInv)
			d.PhaseDegInv = append(d.PhaseDegInv, phaseInv)
		}
	}
	return d
}

func magDB(mag float64) float64 {
	eps := math.Nextafter(1, 2) - 1
	return 20 * math.Log10(math.Max(mag, eps))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
