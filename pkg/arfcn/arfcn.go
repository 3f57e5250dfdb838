// Package arfcn converts absolute radio frequency channel numbers into
// downlink carrier frequencies for the radio access technologies reported
// by measuring devices.
package arfcn

// Band is one channel window of a band plan. A channel c inside
// [First, Last] maps to Base + Step*(c-Offset) MHz.
type Band struct {
	Name   string
	First  int
	Last   int
	Base   float64
	Step   float64
	Offset int
}

// Contains reports whether channel falls inside the band window.
func (b Band) Contains(channel int) bool {
	return channel >= b.First && channel <= b.Last
}

// Frequency returns the carrier frequency in MHz for channel.
func (b Band) Frequency(channel int) float64 {
	return b.Base + b.Step*float64(channel-b.Offset)
}

// Family groups the technologies that share one band plan.
type Family string

const (
	FamilyGSM  Family = "GSM"
	FamilyUMTS Family = "UMTS"
	FamilyLTE  Family = "LTE"
	FamilyNR   Family = "NR"
)

// MaxFR1Channel is the last NR-ARFCN below the millimetre-wave range.
const MaxFR1Channel = 2016666

// Tables are evaluated top to bottom and the first window containing the
// channel wins. Some historical windows overlap (DCS1800/PCS1900, UMTS V/VII,
// LTE 14/17); the later band of each pair is unreachable but kept so the
// tables stay comparable to the band plans they were transcribed from.
var (
	gsmBands = []Band{
		{Name: "GSM900", First: 0, Last: 124, Base: 890.0, Step: 0.2, Offset: 0},
		{Name: "GSM900-E", First: 955, Last: 1023, Base: 890.0, Step: 0.2, Offset: 1024},
		{Name: "DCS1800", First: 512, Last: 885, Base: 1710.2, Step: 0.2, Offset: 512},
		{Name: "GSM850", First: 128, Last: 251, Base: 824.2, Step: 0.2, Offset: 128},
		{Name: "PCS1900", First: 512, Last: 810, Base: 1850.2, Step: 0.2, Offset: 512},
	}

	umtsBands = []Band{
		{Name: "I", First: 0, Last: 124, Base: 2110.0, Step: 0.2, Offset: 10562},
		{Name: "II", First: 512, Last: 885, Base: 1930.0, Step: 0.2, Offset: 9662},
		{Name: "III", First: 256, Last: 511, Base: 1805.0, Step: 0.2, Offset: 9262},
		{Name: "IV", First: 1537, Last: 1738, Base: 2110.0, Step: 0.2, Offset: 1537},
		{Name: "V", First: 4357, Last: 4458, Base: 869.0, Step: 0.1, Offset: 4357},
		{Name: "VII", First: 4387, Last: 4413, Base: 2620.0, Step: 0.2, Offset: 4387},
	}

	lteBands = []Band{
		{Name: "1", First: 0, Last: 599, Base: 2110.0, Step: 0.1, Offset: 0},
		{Name: "2", First: 600, Last: 1199, Base: 1930.0, Step: 0.1, Offset: 600},
		{Name: "3", First: 1200, Last: 1949, Base: 1805.0, Step: 0.1, Offset: 1200},
		{Name: "4", First: 1950, Last: 2399, Base: 2110.0, Step: 0.1, Offset: 1950},
		{Name: "5", First: 2400, Last: 2649, Base: 869.0, Step: 0.1, Offset: 2400},
		{Name: "6", First: 2650, Last: 2749, Base: 875.0, Step: 0.1, Offset: 2650},
		{Name: "7", First: 2750, Last: 3449, Base: 2620.0, Step: 0.1, Offset: 2750},
		{Name: "8", First: 3450, Last: 3799, Base: 925.0, Step: 0.1, Offset: 3450},
		{Name: "9", First: 3800, Last: 4149, Base: 1844.9, Step: 0.1, Offset: 3800},
		{Name: "10", First: 4150, Last: 4749, Base: 2110.0, Step: 0.1, Offset: 4150},
		{Name: "11", First: 5010, Last: 5179, Base: 1475.9, Step: 0.1, Offset: 5010},
		{Name: "12", First: 5180, Last: 5279, Base: 729.9, Step: 0.1, Offset: 5180},
		{Name: "13", First: 5280, Last: 5379, Base: 746.0, Step: 0.1, Offset: 5280},
		{Name: "14", First: 5730, Last: 5849, Base: 758.0, Step: 0.1, Offset: 5730},
		{Name: "17", First: 5760, Last: 5999, Base: 869.0, Step: 0.1, Offset: 5760},
		{Name: "18", First: 6000, Last: 6149, Base: 791.0, Step: 0.1, Offset: 6000},
	}

	// FR1 only.
	nrBands = []Band{
		{Name: "n71", First: 422000, Last: 434000, Base: 617.0, Step: 0.015, Offset: 422000},
		{Name: "n12", First: 386000, Last: 398000, Base: 703.0, Step: 0.015, Offset: 386000},
		{Name: "n28", First: 399000, Last: 404000, Base: 728.0, Step: 0.015, Offset: 399000},
		{Name: "n1", First: 120000, Last: 130000, Base: 1930.0, Step: 0.015, Offset: 120000},
		{Name: "n5", First: 185000, Last: 191000, Base: 859.0, Step: 0.015, Offset: 185000},
	}
)

// FamilyOf maps a reported network type onto its band-plan family.
func FamilyOf(technology string) (Family, bool) {
	switch technology {
	case "GSM", "GPRS", "EDGE":
		return FamilyGSM, true
	case "UMTS", "HSPA", "HSPA+":
		return FamilyUMTS, true
	case "LTE", "LTE-Adv":
		return FamilyLTE, true
	case "5G":
		return FamilyNR, true
	}
	return "", false
}

// Table returns a copy of the ordered band table of a family.
func Table(family Family) []Band {
	var src []Band
	switch family {
	case FamilyGSM:
		src = gsmBands
	case FamilyUMTS:
		src = umtsBands
	case FamilyLTE:
		src = lteBands
	case FamilyNR:
		src = nrBands
	default:
		return nil
	}
	out := make([]Band, len(src))
	copy(out, src)
	return out
}

// Families lists every family with a band table.
func Families() []Family {
	return []Family{FamilyGSM, FamilyUMTS, FamilyLTE, FamilyNR}
}

// Lookup returns the first declared band of the technology's family that
// contains channel.
func Lookup(channel int, technology string) (Band, bool) {
	family, ok := FamilyOf(technology)
	if !ok {
		return Band{}, false
	}
	if family == FamilyNR && (channel < 0 || channel > MaxFR1Channel) {
		return Band{}, false
	}

	var bands []Band
	switch family {
	case FamilyGSM:
		bands = gsmBands
	case FamilyUMTS:
		bands = umtsBands
	case FamilyLTE:
		bands = lteBands
	case FamilyNR:
		bands = nrBands
	}

	for _, b := range bands {
		if b.Contains(channel) {
			return b, true
		}
	}
	return Band{}, false
}

// Derive returns the carrier frequency in MHz. The boolean is false when the
// channel is absent, the technology is unknown, or no band contains the
// channel.
func Derive(channel *int, technology string) (float64, bool) {
	if channel == nil || technology == "" {
		return 0, false
	}
	b, ok := Lookup(*channel, technology)
	if !ok {
		return 0, false
	}
	return b.Frequency(*channel), true
}
