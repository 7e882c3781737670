package imaging

// Threshold binarizes img in place: every pixel >= cutoff becomes high,
// every other pixel becomes low.
//
// The result is only a true binarization (and applying it twice only equals
// applying it once) when low < cutoff <= high. Callers pick the values; the
// ordering is not checked here.
//
// Threshold is the only in-place stage in the pipeline.
func Threshold(img *Gray, cutoff, high, low uint8) {
	for i, v := range img.Pix {
		if v >= cutoff {
			img.Pix[i] = high
		} else {
			img.Pix[i] = low
		}
	}
}

// ThresholdCopy is Threshold on a fresh copy; src is left untouched.
func ThresholdCopy(src *Gray, cutoff, high, low uint8) *Gray {
	out := src.Clone()
	Threshold(out, cutoff, high, low)
	return out
}
