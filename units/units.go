// Package units converts between the length systems used by the PDF and
// Office Open XML writers.
//
// PDF user space is measured in points (1/72 inch). DrawingML measures
// lengths in English Metric Units (914400 per inch), WordprocessingML page
// geometry in twentieths of a point (twips) and run font sizes in half-points.
// PresentationML text sizes are hundredths of a point.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	PointsPerInch = 72.0
	EMUPerInch    = 914400
	EMUPerPoint   = EMUPerInch / 72
	TwipsPerPoint = 20
	MMPerInch     = 25.4
)

// InchesToPoints converts inches to points.
func InchesToPoints(in float64) float64 { return in * PointsPerInch }

// PointsToInches converts points to inches.
func PointsToInches(pt float64) float64 { return pt / PointsPerInch }

// InchesToEMU converts inches to EMU, rounding to the nearest unit.
func InchesToEMU(in float64) int64 { return int64(math.Round(in * EMUPerInch)) }

// PointsToEMU converts points to EMU, rounding to the nearest unit.
func PointsToEMU(pt float64) int64 { return int64(math.Round(pt * EMUPerPoint)) }

// EMUToPoints converts EMU to points.
func EMUToPoints(emu int64) float64 { return float64(emu) / EMUPerPoint }

// PointsToTwips converts points to twips.
func PointsToTwips(pt float64) int { return int(math.Round(pt * TwipsPerPoint)) }

// TwipsToPoints converts twips to points.
func TwipsToPoints(tw int) float64 { return float64(tw) / TwipsPerPoint }

// HalfPoints returns the w:sz value for a run font size.
func HalfPoints(pt float64) int { return int(math.Round(pt * 2)) }

// CentiPoints returns the a:rPr sz value for a DrawingML font size.
func CentiPoints(pt float64) int { return int(math.Round(pt * 100)) }

// ParseLength converts a measurement string such as "1in", "72pt", "10mm",
// "2.5cm", "914400emu" or "1440tw" to points. A bare number is taken as points.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty length")
	}

	unit := "pt"
	valStr := s
	for _, suffix := range []string{"emu", "in", "mm", "cm", "pt", "tw"} {
		if strings.HasSuffix(s, suffix) {
			unit = suffix
			valStr = strings.TrimSpace(s[:len(s)-len(suffix)])
			break
		}
	}

	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse length %q: %w", s, err)
	}

	switch unit {
	case "in":
		return val * PointsPerInch, nil
	case "mm":
		return val * PointsPerInch / MMPerInch, nil
	case "cm":
		return val * PointsPerInch / (MMPerInch / 10), nil
	case "emu":
		return val / EMUPerPoint, nil
	case "tw":
		return val / TwipsPerPoint, nil
	}
	return val, nil
}
