package main

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/swerve/spatialmath"
)

// savePath draws the driven path with the approach and score poses marked. The image
// format follows the file extension.
func savePath(path []spatialmath.Pose2D, approach, score spatialmath.Pose2D, filename string) error {
	if len(path) == 0 {
		return errors.New("no path to plot")
	}
	p := plot.New()
	p.Title.Text = "docking path"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(path))
	for i, pose := range path {
		pts[i].X, pts[i].Y = pose.X(), pose.Y()
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(2)

	goals, err := plotter.NewScatter(plotter.XYs{
		{X: approach.X(), Y: approach.Y()},
		{X: score.X(), Y: score.Y()},
	})
	if err != nil {
		return err
	}
	goals.GlyphStyle.Radius = vg.Points(4)

	p.Add(line, goals)
	p.Legend.Add("path", line)
	p.Legend.Add("approach, score", goals)
	return errors.Wrapf(p.Save(6*vg.Inch, 6*vg.Inch, filename), "cannot save plot to %s", filename)
}
