package slip

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/slipstate/errs"
)

// Report summarizes the percent differences between reconstructed and
// expected total slip.
type Report struct {
	// Patches is the number of patches compared.
	Patches int
	MinPct  float64
	MaxPct  float64
	MeanPct float64
	// Worst is the patch with the largest difference.
	Worst int32
}

// MismatchError describes the worst patch whose total slip differs from the
// expected value by more than the threshold.
type MismatchError struct {
	PatchID      int32
	Expected     float64
	Actual       float64
	PctDiff      float64
	ThresholdPct float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: patch %d has %.6g m, expected %.6g m (%.3f%% > %.3f%%)",
		errs.ErrSlipMismatch, e.PatchID, e.Actual, e.Expected, e.PctDiff, e.ThresholdPct)
}

func (e *MismatchError) Unwrap() error {
	return errs.ErrSlipMismatch
}

// PercentDiff returns |actual-expected| as a percentage of expected.
// Two zeros differ by 0%; any slip against a zero expectation differs by +Inf.
func PercentDiff(expected, actual float64) float64 {
	diff := math.Abs(actual - expected)
	if diff == 0 {
		return 0
	}
	if expected == 0 {
		return math.Inf(1)
	}

	return 100 * diff / math.Abs(expected)
}

// ValidateTotalSlip compares each patch's final cumulative slip with an
// externally known total. Patches that never slipped count as zero slip.
//
// The full Report is returned even on failure. When any patch exceeds
// thresholdPct the error is a *MismatchError for the worst one, which
// matches errs.ErrSlipMismatch. A patch id missing from f fails with
// errs.ErrUnknownPatch.
func (f *Func) ValidateTotalSlip(expected map[int32]float64, thresholdPct float64) (Report, error) {
	ids := make([]int32, 0, len(expected))
	for id := range expected {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var report Report
	if len(ids) == 0 {
		return report, nil
	}

	report.MinPct = math.Inf(1)
	report.MaxPct = math.Inf(-1)

	var worst *MismatchError
	sum := 0.0
	for _, id := range ids {
		if _, ok := f.patches[id]; !ok {
			return Report{}, fmt.Errorf("%w: %d", errs.ErrUnknownPatch, id)
		}

		actual, _ := f.TotalSlip(id)
		pct := PercentDiff(expected[id], actual)

		report.Patches++
		sum += pct
		report.MinPct = min(report.MinPct, pct)
		if pct > report.MaxPct {
			report.MaxPct = pct
			report.Worst = id
		}

		if pct > thresholdPct && (worst == nil || pct > worst.PctDiff) {
			worst = &MismatchError{
				PatchID:      id,
				Expected:     expected[id],
				Actual:       actual,
				PctDiff:      pct,
				ThresholdPct: thresholdPct,
			}
		}
	}
	report.MeanPct = sum / float64(report.Patches)

	if worst != nil {
		return report, worst
	}

	return report, nil
}
