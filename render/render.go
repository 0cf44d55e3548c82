// Package render draws a simulated episode to an image file.
package render

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/dwa/motionplan/dwa"
	"go.viam.com/dwa/simulation"
	"go.viam.com/dwa/utils"
)

const (
	circleSegments = 32
	arcSegments    = 24
	imageSize      = 6 * vg.Inch
)

var (
	obstacleColor  = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	pathColor      = color.RGBA{R: 40, G: 140, B: 255, A: 255}
	candidateColor = color.RGBA{R: 170, G: 170, B: 170, A: 255}
	optimalColor   = color.RGBA{R: 240, G: 70, B: 70, A: 255}
	startColor     = color.RGBA{R: 60, G: 200, B: 120, A: 255}
	goalColor      = color.RGBA{R: 255, G: 180, B: 0, A: 255}
)

// Episode renders ep to path. The image format is taken from the file extension (png, svg, pdf
// and the other formats gonum/plot supports).
func Episode(ep *simulation.Episode, params dwa.Parameters, path string) error {
	p, err := NewEpisodePlot(ep, params)
	if err != nil {
		return err
	}
	if err := p.Save(imageSize, imageSize, path); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", path)
	}
	return nil
}

// NewEpisodePlot builds the plot of ep: obstacles, the driven path, start and goal, and the
// candidates of the final tick with the selected one highlighted.
func NewEpisodePlot(ep *simulation.Episode, params dwa.Parameters) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "dwa " + ep.Outcome.String()
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	if params.GridSize > 0 {
		p.X.Min, p.X.Max = 0, params.GridSize
		p.Y.Min, p.Y.Max = 0, params.GridSize
	}

	for _, o := range ep.Scenario.Obstacles {
		poly, err := plotter.NewPolygon(circlePoints(o.X, o.Y, o.R, circleSegments))
		if err != nil {
			return nil, err
		}
		poly.Color = obstacleColor
		poly.LineStyle.Color = obstacleColor
		p.Add(poly)
	}

	if ep.Last != nil {
		// The selected candidate is drawn last so it stays on top.
		var optimal *dwa.Candidate
		for _, c := range ep.Last.Candidates {
			if c.Optimal {
				optimal = c
				continue
			}
			if err := addCandidate(p, c, candidateColor, vg.Points(0.5)); err != nil {
				return nil, err
			}
		}
		if optimal == nil {
			optimal = ep.Last.Best
		}
		if optimal != nil {
			if err := addCandidate(p, optimal, optimalColor, vg.Points(1.5)); err != nil {
				return nil, err
			}
		}
	}

	positions := ep.Positions()
	pathXYs := make(plotter.XYs, len(positions))
	for i, pos := range positions {
		pathXYs[i].X, pathXYs[i].Y = pos.X, pos.Y
	}
	path, err := plotter.NewLine(pathXYs)
	if err != nil {
		return nil, err
	}
	path.LineStyle.Color = pathColor
	path.LineStyle.Width = vg.Points(1.5)
	p.Add(path)
	p.Legend.Add("path", path)

	for _, marker := range []struct {
		name  string
		x, y  float64
		shape draw.GlyphDrawer
		color color.Color
	}{
		{"start", ep.Scenario.Start.X, ep.Scenario.Start.Y, draw.CircleGlyph{}, startColor},
		{"goal", ep.Scenario.Goal.X, ep.Scenario.Goal.Y, draw.CrossGlyph{}, goalColor},
	} {
		scatter, err := plotter.NewScatter(plotter.XYs{{X: marker.x, Y: marker.y}})
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Shape = marker.shape
		scatter.GlyphStyle.Color = marker.color
		scatter.GlyphStyle.Radius = vg.Points(4)
		p.Add(scatter)
		p.Legend.Add(marker.name, scatter)
	}
	return p, nil
}

func addCandidate(p *plot.Plot, c *dwa.Candidate, col color.Color, width vg.Length) error {
	var xys plotter.XYs
	switch g := c.Geometry.(type) {
	case dwa.Straight:
		xys = plotter.XYs{{X: g.XA, Y: g.YA}, {X: g.X, Y: g.Y}}
	case dwa.Curved:
		xys = arcPoints(g, c.Omega, arcSegments)
	default:
		return errors.Errorf("unknown candidate geometry %T", c.Geometry)
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.LineStyle.Color = col
	line.LineStyle.Width = width
	p.Add(line)
	return nil
}

func circlePoints(cx, cy, r float64, segments int) plotter.XYs {
	xys := make(plotter.XYs, segments)
	for i := range xys {
		a := 2 * math.Pi * float64(i) / float64(segments)
		xys[i].X = cx + r*math.Cos(a)
		xys[i].Y = cy + r*math.Sin(a)
	}
	return xys
}

// arcPoints samples the arc from the robot position around the arc center, turning in the
// direction of omega through the arc's swept range.
func arcPoints(g dwa.Curved, omega float64, segments int) plotter.XYs {
	radius := math.Abs(g.R)
	heading := utils.DegToRad(g.Angle)
	robotX := g.CenterX - g.R*math.Cos(heading+math.Pi/2)
	robotY := g.CenterY - g.R*math.Sin(heading+math.Pi/2)
	from := math.Atan2(robotY-g.CenterY, robotX-g.CenterX)
	sweep := math.Copysign(utils.DegToRad(g.End-g.Start), omega)

	xys := make(plotter.XYs, segments+1)
	for i := range xys {
		a := from + sweep*float64(i)/float64(segments)
		xys[i].X = g.CenterX + radius*math.Cos(a)
		xys[i].Y = g.CenterY + radius*math.Sin(a)
	}
	return xys
}
