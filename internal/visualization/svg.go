package visualization

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nvandessel/prefgrow/internal/constants"
)

const (
	svgWidth   = 800
	svgHeight  = 500
	marginLeft = 70
	marginTop  = 50
	marginRt   = 170
	marginBot  = 60
)

var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// axis maps steps completed onto a log10 x range and proportions onto a
// linear [0, 1] y range.
type axis struct {
	logMin, logMax float64
	plotW, plotH   float64
}

func newAxis(points []int64) axis {
	lo, hi := int64(1), int64(10)
	if len(points) > 0 {
		lo = points[0]
		hi = points[len(points)-1]
	}
	if hi <= lo {
		hi = lo * 10
	}
	return axis{
		logMin: math.Log10(float64(lo)),
		logMax: math.Log10(float64(hi)),
		plotW:  svgWidth - marginLeft - marginRt,
		plotH:  svgHeight - marginTop - marginBot,
	}
}

func (a axis) x(steps int64) float64 {
	frac := (math.Log10(float64(steps)) - a.logMin) / (a.logMax - a.logMin)
	return marginLeft + frac*a.plotW
}

func (a axis) y(p float64) float64 {
	return marginTop + (1-p)*a.plotH
}

// Ticks returns the powers of ten from 10^MinTickPower up to maxSteps.
// When maxSteps is below the first such power, every power of ten up to
// maxSteps is used instead.
func Ticks(maxSteps int64) []int64 {
	var ticks []int64
	for n := pow10(constants.MinTickPower); n <= maxSteps; n *= 10 {
		ticks = append(ticks, n)
	}
	if len(ticks) > 0 {
		return ticks
	}
	for n := int64(1); n <= maxSteps; n *= 10 {
		ticks = append(ticks, n)
	}
	return ticks
}

func pow10(k int) int64 {
	n := int64(1)
	for i := 0; i < k; i++ {
		n *= 10
	}
	return n
}

// RenderSVG draws a line chart of each type's proportion against steps
// completed on a log-scaled x axis.
func RenderSVG(w io.Writer, chart Chart) error {
	s := chart.Series
	printer := message.NewPrinter(language.English)

	completed := make([]int64, len(s.Points))
	for i, p := range s.Points {
		completed[i] = p.Completed()
	}
	ax := newAxis(completed)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">`+"\n",
		svgWidth, svgHeight, svgWidth, svgHeight)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="white"/>`+"\n", svgWidth, svgHeight)

	if chart.Title != "" {
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-size="15">%s</text>`+"\n",
			marginLeft+int(ax.plotW)/2, marginTop/2+5, html.EscapeString(chart.Title))
	}

	// Frame and y grid.
	fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%.0f" height="%.0f" fill="none" stroke="black"/>`+"\n",
		marginLeft, marginTop, ax.plotW, ax.plotH)
	for i := 0; i <= 5; i++ {
		p := float64(i) / 5
		y := ax.y(p)
		fmt.Fprintf(&b, `<line x1="%d" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#dddddd"/>`+"\n",
			marginLeft, y, marginLeft+ax.plotW, y)
		fmt.Fprintf(&b, `<text x="%d" y="%.2f" text-anchor="end">%.1f</text>`+"\n", marginLeft-6, y+4, p)
	}

	if len(completed) > 0 {
		for _, t := range Ticks(completed[len(completed)-1]) {
			if t < completed[0] {
				continue
			}
			x := ax.x(t)
			fmt.Fprintf(&b, `<line x1="%.2f" y1="%d" x2="%.2f" y2="%.2f" stroke="#dddddd"/>`+"\n",
				x, marginTop, x, marginTop+ax.plotH)
			fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" text-anchor="middle">%s</text>`+"\n",
				x, marginTop+ax.plotH+18, printer.Sprintf("%d", t))
		}
	}

	fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle">steps</text>`+"\n",
		marginLeft+int(ax.plotW)/2, svgHeight-15)
	fmt.Fprintf(&b, `<text x="18" y="%d" text-anchor="middle" transform="rotate(-90 18 %d)">proportion of total degree</text>`+"\n",
		marginTop+int(ax.plotH)/2, marginTop+int(ax.plotH)/2)

	for k := 0; k < s.TypeCount(); k++ {
		color := palette[k%len(palette)]
		col := s.Column(k)
		coords := make([]string, len(col))
		for i, p := range col {
			coords[i] = fmt.Sprintf("%.2f,%.2f", ax.x(completed[i]), ax.y(p))
		}
		if len(coords) == 1 {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"/>`+"\n",
				ax.x(completed[0]), ax.y(col[0]), color)
		} else if len(coords) > 1 {
			fmt.Fprintf(&b, `<polyline fill="none" stroke="%s" stroke-width="1.5" points="%s"/>`+"\n",
				color, strings.Join(coords, " "))
		}

		ly := marginTop + 10 + k*20
		lx := svgWidth - marginRt + 15
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`+"\n",
			lx, ly, lx+20, ly, color)
		fmt.Fprintf(&b, `<text x="%d" y="%d">%s</text>`+"\n", lx+26, ly+4, html.EscapeString(chart.label(k)))
	}

	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}
