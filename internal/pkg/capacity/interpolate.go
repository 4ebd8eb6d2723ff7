package capacity

import (
	"fmt"
	"math"
	"sort"
)

// Query holds the target orbit parameters for a capacity estimate.
type Query struct {
	AltitudeKm     float64 `json:"altitude_km"`
	InclinationDeg float64 `json:"inclination_deg"`
}

// Result is a single capacity estimate. It is constructed fresh per query
// and carries no shared state; callers typically divide an actual payload
// mass by EstimatedMaxPayloadKg to get utilization and then discard it.
//
// An out-of-bounds query is not an error: the estimate is computed against
// the nearest boundary of the table and the corresponding in-bounds flag is
// cleared, because capacity is simply not measured beyond the table span and
// the result has to say so rather than silently extrapolate.
type Result struct {
	EstimatedMaxPayloadKg float64     `json:"estimated_max_payload_kg"`
	AltitudeInBounds      bool        `json:"altitude_in_bounds"`
	InclinationInBounds   bool        `json:"inclination_in_bounds"`
	Brackets              []GridPoint `json:"brackets"`
}

// Estimate interpolates the maximum payload capacity for q.
//
// The blend is linear in both axes: the query inclination is interpolated
// within each of the two altitude rows bracketing the query altitude, then
// the two row values are interpolated across altitude. A query that lands
// exactly on a grid value along an axis uses the exact sample on that axis,
// which also keeps every weight denominator nonzero.
func (t *Table) Estimate(q Query) (Result, error) {
	if err := q.validate(); err != nil {
		return Result{}, err
	}

	aLo, aHi, altIn := bracket(t.altitudes, q.AltitudeKm)

	loKg, loPts, loIn := t.rowEstimate(aLo, q.InclinationDeg)
	if aLo == aHi {
		return Result{
			EstimatedMaxPayloadKg: loKg,
			AltitudeInBounds:      altIn,
			InclinationInBounds:   loIn,
			Brackets:              loPts,
		}, nil
	}

	hiKg, hiPts, hiIn := t.rowEstimate(aHi, q.InclinationDeg)

	w := (q.AltitudeKm - aLo) / (aHi - aLo)
	return Result{
		EstimatedMaxPayloadKg: loKg + w*(hiKg-loKg),
		AltitudeInBounds:      altIn,
		InclinationInBounds:   loIn && hiIn,
		Brackets:              append(loPts, hiPts...),
	}, nil
}

func (q Query) validate() error {
	switch {
	case math.IsNaN(q.AltitudeKm) || math.IsInf(q.AltitudeKm, 0):
		return fmt.Errorf("%w: altitude must be finite", ErrValue)
	case math.IsNaN(q.InclinationDeg) || math.IsInf(q.InclinationDeg, 0):
		return fmt.Errorf("%w: inclination must be finite", ErrValue)
	case q.AltitudeKm < 0:
		return fmt.Errorf("%w: altitude %.3f km is negative", ErrValue, q.AltitudeKm)
	case q.InclinationDeg < 0:
		return fmt.Errorf("%w: inclination %.3f deg is negative", ErrValue, q.InclinationDeg)
	}
	return nil
}

// rowEstimate interpolates the query inclination within the row at exactly
// altKm. altKm always comes from t.altitudes, so the row lookup cannot miss.
func (t *Table) rowEstimate(altKm, incDeg float64) (kg float64, used []GridPoint, inBounds bool) {
	row := t.rows[altKm]

	point := func(s Sample) GridPoint {
		return GridPoint{AltitudeKm: altKm, InclinationDeg: s.InclinationDeg, MaxPayloadKg: s.MaxPayloadKg}
	}

	first, last := row[0], row[len(row)-1]
	switch {
	case incDeg <= first.InclinationDeg:
		return first.MaxPayloadKg, []GridPoint{point(first)}, incDeg == first.InclinationDeg
	case incDeg >= last.InclinationDeg:
		return last.MaxPayloadKg, []GridPoint{point(last)}, incDeg == last.InclinationDeg
	}

	i := sort.Search(len(row), func(i int) bool { return row[i].InclinationDeg >= incDeg })
	if row[i].InclinationDeg == incDeg {
		return row[i].MaxPayloadKg, []GridPoint{point(row[i])}, true
	}

	lo, hi := row[i-1], row[i]
	w := (incDeg - lo.InclinationDeg) / (hi.InclinationDeg - lo.InclinationDeg)
	return lo.MaxPayloadKg + w*(hi.MaxPayloadKg-lo.MaxPayloadKg),
		[]GridPoint{point(lo), point(hi)},
		true
}

// bracket picks the two adjacent values in vals straddling x, clamping to the
// nearest boundary when x falls outside the span. An exact hit returns the
// same value on both sides so the caller skips blending entirely.
func bracket(vals []float64, x float64) (lo, hi float64, inBounds bool) {
	n := len(vals)
	switch {
	case x <= vals[0]:
		return vals[0], vals[0], x == vals[0]
	case x >= vals[n-1]:
		return vals[n-1], vals[n-1], x == vals[n-1]
	}

	i := sort.SearchFloat64s(vals, x)
	if vals[i] == x {
		return x, x, true
	}
	return vals[i-1], vals[i], true
}
