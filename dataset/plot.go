package dataset

import (
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/leadconv/core/frame"
	"github.com/YuminosukeSato/leadconv/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultBins is the histogram bin count used when bins <= 0.
const DefaultBins = 20

// SaveHistogram writes a histogram of the non-missing values of a numeric
// column to path. The image format follows the extension (.png, .svg, .pdf).
func SaveHistogram(col frame.Column, path string, bins int) error {
	if col.Kind() != frame.Numeric {
		return errors.NewTypeMismatchError("SaveHistogram", col.Name(), frame.Numeric.String(), col.Kind().String())
	}
	values := col.Present()
	if len(values) == 0 {
		return errors.NewEmptyColumnError("SaveHistogram", col.Name())
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	p := plot.New()
	p.Title.Text = col.Name()
	p.X.Label.Text = col.Name()
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return errors.Wrapf(err, "dataset: histogram of %q", col.Name())
	}
	p.Add(h)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "dataset: create plot directory")
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "dataset: save histogram %s", path)
	}
	return nil
}
