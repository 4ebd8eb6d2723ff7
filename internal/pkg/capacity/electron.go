package capacity

// Published Electron performance figures: payload mass capacity (kg) to a
// circular orbit per altitude and inclination curve. Update the arrays as
// Rocket Lab publishes new numbers.
var (
	electronAltitudesKm = []float64{
		400, 450, 500, 550, 600, 650, 700, 750, 800, 850,
		900, 950, 1000, 1050, 1100, 1150, 1200,
	}

	electronInclinationsDeg = []float64{40, 60, 80, 100}

	// One curve per inclination above, one column per altitude.
	electronPayloadKg = [][]float64{
		{270.0, 266.6, 263.8, 259.9, 257.4, 254.0, 251.3, 247.0, 243.3,
			239.3, 235.7, 231.9, 228.3, 224.5, 221.0, 217.4, 214.0},
		{249.0, 245.9, 243.0, 240.0, 234.2, 232.4, 230.7, 227.7, 224.4,
			220.8, 217.7, 214.4, 211.4, 207.5, 204.2, 199.7, 197.3},
		{224.4, 221.2, 218.7, 216.1, 213.7, 210.4, 208.0, 204.4, 201.7,
			197.9, 194.8, 191.3, 188.4, 184.9, 181.7, 178.3, 175.7},
		{203.7, 200.8, 198.4, 195.3, 192.9, 189.5, 187.0, 183.4, 180.3,
			177.0, 174.1, 170.7, 168.0, 164.4, 161.6, 158.5, 155.6},
	}
)

// ElectronPoints returns the embedded Electron reference grid as a flat list
// of samples, suitable for NewTable or for seeding the capacity store.
func ElectronPoints() []GridPoint {
	var points []GridPoint
	for ci, inc := range electronInclinationsDeg {
		for ai, alt := range electronAltitudesKm {
			points = append(points, GridPoint{
				AltitudeKm:     alt,
				InclinationDeg: inc,
				MaxPayloadKg:   electronPayloadKg[ci][ai],
			})
		}
	}
	return points
}

// ElectronTable returns the embedded Electron performance table. The data is
// static and validated by tests, so a construction failure is a programming
// error.
func ElectronTable() *Table {
	t, err := NewTable(ElectronPoints())
	if err != nil {
		panic("capacity: embedded electron table: " + err.Error())
	}
	return t
}
