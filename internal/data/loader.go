package data

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadAscii reads whitespace-separated numeric columns: q, intensity
// and optionally uncertainty. Lines starting with '#' and blank lines
// are skipped. Instrument-specific formats belong to the external
// loader collaborator; this covers the plain two/three-column tables
// the fit core round-trips itself.
//
// When the uncertainty column is absent it defaults to 1% of the
// intensity magnitude, or 1 where that would be zero.
func LoadAscii(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := &Dataset{Type: Type1D}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d has %d columns, need at least 2", ErrBadDataset, line, len(fields))
		}
		cols := make([]float64, 0, 3)
		for _, field := range fields[:min(len(fields), 3)] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadDataset, line, err)
			}
			cols = append(cols, v)
		}

		d.X = append(d.X, cols[0])
		d.Intensity = append(d.Intensity, cols[1])
		if len(cols) > 2 {
			d.Uncertainty = append(d.Uncertainty, cols[2])
		} else {
			dI := 0.01 * math.Abs(cols[1])
			if dI == 0 {
				dI = 1
			}
			d.Uncertainty = append(d.Uncertainty, dI)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
