package pdfutils

import (
	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfstamp/compositor"
)

type StampOptions struct {
	// BaselineFactor overrides compositor.DefaultBaselineFactor when set.
	// Zero is a valid factor: it puts the baseline on the box's top edge.
	BaselineFactor   *float64
	LineHeightFactor float64
	Images           compositor.ImageResolver
	Logger           logrus.FieldLogger
}

func (o StampOptions) compositor(measurer compositor.Measurer) *compositor.Compositor {
	comp := compositor.New(measurer)

	if o.BaselineFactor != nil {
		comp.Mapper = compositor.NewMapper(*o.BaselineFactor)
	}
	if o.LineHeightFactor > 0 {
		comp.LineHeightFactor = o.LineHeightFactor
	}
	if o.Logger != nil {
		comp.Logger = o.Logger
	}
	comp.Images = o.Images

	return comp
}

// Stamp composes actions against the document's pages and draws the result.
// Actions that cannot be drawn are reported, not returned as errors.
func (d *Document) Stamp(actions []compositor.Action, opts StampOptions) (compositor.Report, error) {
	if opts.Logger != nil {
		d.Logger = opts.Logger
	}

	cmds, report := opts.compositor(d.fonts).Compose(d.Geometry(), actions)

	return report, d.Apply(cmds)
}
