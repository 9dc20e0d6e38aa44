package measured

// savgol runs a centered Savitzky-Golay filter: a degree-order polynomial is
// least-squares fitted over each odd-length window and evaluated at the
// sample position. Near the edges the first/last full window's polynomial is
// evaluated at the off-center offsets, so the output covers every index.
// window must be odd, >= order+2 and <= len(data).
func savgol(data []float64, window, order int) []float64 {
	n := len(data)
	half := window / 2
	if n < window {
		out := make([]float64, n)
		copy(out, data)
		return out
	}

	// weights[t+half][j] evaluates the window polynomial at offset t from
	// the window center using sample j of the window.
	weights := savgolWeights(window, order)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var center, offset int
		switch {
		case i < half:
			center = half
			offset = i - half
		case i >= n-half:
			center = n - half - 1
			offset = i - center
		default:
			center = i
			offset = 0
		}
		row := weights[offset+half]
		acc := 0.0
		for j := 0; j < window; j++ {
			acc += row[j] * data[center-half+j]
		}
		out[i] = acc
	}
	return out
}

// savgolWeights solves the least-squares design once per (window, order):
// W = V * (A'A)^-1 * A', where A is the window Vandermonde matrix and V the
// evaluation Vandermonde for every offset in the window.
func savgolWeights(window, order int) [][]float64 {
	half := window / 2
	terms := order + 1

	// A'A (Gram matrix) and A' rows.
	gram := make([][]float64, terms)
	for r := range gram {
		gram[r] = make([]float64, terms)
		for c := range gram[r] {
			sum := 0.0
			for j := -half; j <= half; j++ {
				sum += intPow(float64(j), r+c)
			}
			gram[r][c] = sum
		}
	}
	inv := invert(gram)

	// pinv = (A'A)^-1 * A', terms x window.
	pinv := make([][]float64, terms)
	for r := 0; r < terms; r++ {
		pinv[r] = make([]float64, window)
		for j := 0; j < window; j++ {
			x := float64(j - half)
			sum := 0.0
			for k := 0; k < terms; k++ {
				sum += inv[r][k] * intPow(x, k)
			}
			pinv[r][j] = sum
		}
	}

	weights := make([][]float64, window)
	for t := -half; t <= half; t++ {
		row := make([]float64, window)
		for j := 0; j < window; j++ {
			sum := 0.0
			for k := 0; k < terms; k++ {
				sum += intPow(float64(t), k) * pinv[k][j]
			}
			row[j] = sum
		}
		weights[t+half] = row
	}
	return weights
}

func intPow(x float64, p int) float64 {
	out := 1.0
	for i := 0; i < p; i++ {
		out *= x
	}
	return out
}

// invert performs Gauss-Jordan elimination with partial pivoting on a small
// symmetric positive-definite matrix.
func invert(m [][]float64) [][]float64 {
	n := len(m)
	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(aug[r][col]) > abs(aug[pivot][col]) {
				pivot = r
			}
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		pv := aug[col][col]
		for c := 0; c < 2*n; c++ {
			aug[col][c] /= pv
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			for c := 0; c < 2*n; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}
	out := make([][]float64, n)
	for i := range out {
		out[i] = aug[i][n:]
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
