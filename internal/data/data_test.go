package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAsciiThreeColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measurement.dat")
	payload := `# q intensity uncertainty
0.01 120.5 1.2
0.02 80.1 0.9

0.03 44.7 0.6
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	d, err := LoadAscii(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Type != Type1D {
		t.Fatalf("type: got=%s want=%s", d.Type, Type1D)
	}
	if d.Len() != 3 {
		t.Fatalf("length: got=%d want=3", d.Len())
	}
	if d.X[1] != 0.02 || d.Intensity[1] != 80.1 || d.Uncertainty[1] != 0.9 {
		t.Fatalf("unexpected row 1: %g %g %g", d.X[1], d.Intensity[1], d.Uncertainty[1])
	}
}

func TestLoadAsciiTwoColumnsDefaultsUncertainty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measurement.dat")
	payload := "0.01 200\n0.02 0\n"
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	d, err := LoadAscii(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Uncertainty[0] != 2 {
		t.Fatalf("1%% default: got=%g want=2", d.Uncertainty[0])
	}
	if d.Uncertainty[1] != 1 {
		t.Fatalf("zero-intensity fallback: got=%g want=1", d.Uncertainty[1])
	}
}

func TestLoadAsciiRejectsBadRows(t *testing.T) {
	dir := t.TempDir()

	short := filepath.Join(dir, "short.dat")
	if err := os.WriteFile(short, []byte("0.01\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadAscii(short); !errors.Is(err, ErrBadDataset) {
		t.Fatalf("expected ErrBadDataset for short row, got: %v", err)
	}

	junk := filepath.Join(dir, "junk.dat")
	if err := os.WriteFile(junk, []byte("0.01 abc\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadAscii(junk); !errors.Is(err, ErrBadDataset) {
		t.Fatalf("expected ErrBadDataset for junk value, got: %v", err)
	}

	empty := filepath.Join(dir, "empty.dat")
	if err := os.WriteFile(empty, []byte("# only comments\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadAscii(empty); !errors.Is(err, ErrBadDataset) {
		t.Fatalf("expected ErrBadDataset for empty file, got: %v", err)
	}
}

func TestEmpty1D(t *testing.T) {
	d := Empty1D(0.005, 0.5, 50)
	if err := d.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if d.Len() != 50 || d.X[0] != 0.005 || d.X[49] != 0.5 {
		t.Fatalf("unexpected grid: len=%d span=[%g, %g]", d.Len(), d.X[0], d.X[49])
	}
	for i := range d.Uncertainty {
		if d.Uncertainty[i] != 1 || d.Intensity[i] != 0 {
			t.Fatalf("point %d: intensity=%g uncertainty=%g", i, d.Intensity[i], d.Uncertainty[i])
		}
	}
}

func TestEmpty2D(t *testing.T) {
	d := Empty2D(0.3, 8)
	if err := d.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if d.Type != Type2D || d.Len() != 64 {
		t.Fatalf("unexpected grid: type=%s len=%d", d.Type, d.Len())
	}
	if d.Qx[0] != -0.3 || d.Qy[63] != 0.3 {
		t.Fatalf("unexpected corners: qx0=%g qy63=%g", d.Qx[0], d.Qy[63])
	}
}

func TestValidateLengthMismatch(t *testing.T) {
	d := &Dataset{
		Type:        Type1D,
		X:           []float64{0.01, 0.02},
		Intensity:   []float64{1},
		Uncertainty: []float64{1, 1},
	}
	if err := d.Validate(); !errors.Is(err, ErrBadDataset) {
		t.Fatalf("expected ErrBadDataset, got: %v", err)
	}
}
