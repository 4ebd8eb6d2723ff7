// Package capacity holds the launch-vehicle performance reference table and
// the two-axis linear interpolation used to estimate maximum payload mass for
// an arbitrary target orbit.
package capacity

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrConfiguration reports a malformed or degenerate capacity table.
	// Surfaced at construction time; a table that passed NewTable never
	// produces it again.
	ErrConfiguration = errors.New("capacity: invalid table")

	// ErrValue reports an invalid query (non-finite or negative input).
	ErrValue = errors.New("capacity: invalid query")

	// ErrLookup reports a row lookup for an altitude not present verbatim.
	// The interpolator only ever asks for altitudes it read from
	// AltitudeValues, so this escaping a Table method indicates a bug.
	ErrLookup = errors.New("capacity: no row at altitude")
)

// GridPoint is a single measured capacity sample: the maximum payload mass
// the vehicle can deliver to a circular orbit at the given altitude and
// inclination.
type GridPoint struct {
	AltitudeKm     float64 `json:"altitude_km"`
	InclinationDeg float64 `json:"inclination_deg"`
	MaxPayloadKg   float64 `json:"max_payload_kg"`
}

// Sample is one (inclination, payload) reading within an altitude row.
type Sample struct {
	InclinationDeg float64 `json:"inclination_deg"`
	MaxPayloadKg   float64 `json:"max_payload_kg"`
}

// Table is an immutable set of capacity samples grouped into altitude rows.
// It is safe to share across goroutines once constructed; nothing mutates it.
//
// The grid is not required to be a full altitude x inclination cross product,
// but every altitude row must carry at least two inclination samples and the
// table must span at least two distinct altitudes, so interpolation is
// well-defined along both axes.
type Table struct {
	altitudes []float64            // sorted, distinct
	rows      map[float64][]Sample // altitude -> samples sorted by inclination
}

// NewTable validates the samples and builds a Table. Duplicate
// (altitude, inclination) keys are rejected rather than silently
// deduplicated, since two readings at the same point make bracket selection
// ambiguous.
func NewTable(points []GridPoint) (*Table, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no grid points", ErrConfiguration)
	}

	rows := make(map[float64][]Sample)
	for _, p := range points {
		for _, s := range rows[p.AltitudeKm] {
			if s.InclinationDeg == p.InclinationDeg {
				return nil, fmt.Errorf("%w: duplicate grid point at %.1f km / %.1f deg",
					ErrConfiguration, p.AltitudeKm, p.InclinationDeg)
			}
		}
		rows[p.AltitudeKm] = append(rows[p.AltitudeKm], Sample{
			InclinationDeg: p.InclinationDeg,
			MaxPayloadKg:   p.MaxPayloadKg,
		})
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: need at least two altitude rows, got %d",
			ErrConfiguration, len(rows))
	}

	altitudes := make([]float64, 0, len(rows))
	for alt, samples := range rows {
		if len(samples) < 2 {
			return nil, fmt.Errorf("%w: altitude row %.1f km has %d inclination sample(s), need at least two",
				ErrConfiguration, alt, len(samples))
		}
		sort.Slice(samples, func(i, j int) bool {
			return samples[i].InclinationDeg < samples[j].InclinationDeg
		})
		altitudes = append(altitudes, alt)
	}
	sort.Float64s(altitudes)

	return &Table{altitudes: altitudes, rows: rows}, nil
}

// AltitudeValues returns the sorted distinct altitudes present in the table.
// The returned slice is a copy.
func (t *Table) AltitudeValues() []float64 {
	out := make([]float64, len(t.altitudes))
	copy(out, t.altitudes)
	return out
}

// RowAt returns the inclination samples recorded at exactly altKm, sorted by
// inclination. The table does no interpolation here: asking for an altitude
// that is not a recorded row is an ErrLookup.
func (t *Table) RowAt(altKm float64) ([]Sample, error) {
	row, ok := t.rows[altKm]
	if !ok {
		return nil, fmt.Errorf("%w: %.3f km", ErrLookup, altKm)
	}
	out := make([]Sample, len(row))
	copy(out, row)
	return out, nil
}

// Points flattens the table back into grid points, ordered by altitude then
// inclination.
func (t *Table) Points() []GridPoint {
	var out []GridPoint
	for _, alt := range t.altitudes {
		for _, s := range t.rows[alt] {
			out = append(out, GridPoint{
				AltitudeKm:     alt,
				InclinationDeg: s.InclinationDeg,
				MaxPayloadKg:   s.MaxPayloadKg,
			})
		}
	}
	return out
}

// Size returns the number of grid points in the table.
func (t *Table) Size() int {
	n := 0
	for _, row := range t.rows {
		n += len(row)
	}
	return n
}

// Span returns the altitude range covered by the table.
func (t *Table) Span() (minKm, maxKm float64) {
	return t.altitudes[0], t.altitudes[len(t.altitudes)-1]
}
