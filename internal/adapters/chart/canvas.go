// Package chart draws the daily revenue line chart and the top products bar
// chart as PNG images.
package chart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Plot area margins in pixels.
const (
	marginLeft   = 100
	marginRight  = 40
	marginTop    = 70
	marginBottom = 120

	titleSize = 20
	labelSize = 15
	tickSize  = 12

	yTicks      = 6
	maxXLabels  = 20
	labelAngle  = -45
	tickLength  = 5
	markerSize  = 4
	lineWidth   = 2
	barFraction = 0.8
)

// deep is the default categorical palette.
var deep = []color.Color{
	hex(0x4C72B0), hex(0xDD8452), hex(0x55A868), hex(0xC44E52), hex(0x8172B3),
	hex(0x937860), hex(0xDA8BC3), hex(0x8C8C8C), hex(0xCCB974), hex(0x64B5CD),
}

var (
	gridColor = color.NRGBA{R: 0xE5, G: 0xE5, B: 0xE5, A: 0xFF}
	axisColor = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
)

func hex(v uint32) color.Color {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse font: %w", fontErr)
	}
	return truetype.NewFace(fontTTF, &truetype.Options{Size: size}), nil
}

// canvas holds the drawing context and the plot area geometry shared by
// both chart kinds.
type canvas struct {
	width, height int
	title         string
	xLabel        string
	yLabel        string

	dc                   *gg.Context
	titleFace, labelFace font.Face
	tickFace             font.Face
	left, right          float64
	top, bottom          float64
	yMin, yMax, yStep    float64
}

func newCanvas(title, xLabel, yLabel string, opts ...Option) *canvas {
	c := &canvas{
		width:  DefaultWidth,
		height: DefaultHeight,
		title:  title,
		xLabel: xLabel,
		yLabel: yLabel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// begin prepares the context, fonts and the y scale for values.
func (c *canvas) begin(values []float64) error {
	var err error
	if c.titleFace, err = face(titleSize); err != nil {
		return err
	}
	if c.labelFace, err = face(labelSize); err != nil {
		return err
	}
	if c.tickFace, err = face(tickSize); err != nil {
		return err
	}

	c.dc = gg.NewContext(c.width, c.height)
	c.dc.SetColor(color.White)
	c.dc.Clear()

	c.left = marginLeft
	c.right = float64(c.width) - marginRight
	c.top = marginTop
	c.bottom = float64(c.height) - marginBottom

	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	c.yMin, c.yMax, c.yStep = niceScale(lo, hi, yTicks)
	return nil
}

// y maps a value to a pixel row.
func (c *canvas) y(v float64) float64 {
	return c.bottom - (v-c.yMin)/(c.yMax-c.yMin)*(c.bottom-c.top)
}

// frame draws the title, grid, y ticks, axes and axis labels.
func (c *canvas) frame() {
	dc := c.dc

	dc.SetFontFace(c.titleFace)
	dc.SetColor(axisColor)
	dc.DrawStringAnchored(c.title, float64(c.width)/2, marginTop/2, 0.5, 0.5)

	dc.SetFontFace(c.tickFace)
	dc.SetLineWidth(1)
	for v := c.yMin; v <= c.yMax+c.yStep/2; v += c.yStep {
		py := c.y(v)
		dc.SetColor(gridColor)
		dc.DrawLine(c.left, py, c.right, py)
		dc.Stroke()
		dc.SetColor(axisColor)
		dc.DrawLine(c.left-tickLength, py, c.left, py)
		dc.Stroke()
		dc.DrawStringAnchored(formatValue(v, c.yStep), c.left-tickLength-4, py, 1, 0.5)
	}

	dc.SetColor(axisColor)
	dc.DrawLine(c.left, c.top, c.left, c.bottom)
	dc.Stroke()
	zero := c.y(math.Max(c.yMin, 0))
	dc.DrawLine(c.left, zero, c.right, zero)
	dc.Stroke()

	dc.SetFontFace(c.labelFace)
	dc.DrawStringAnchored(c.xLabel, (c.left+c.right)/2, float64(c.height)-18, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 22, (c.top+c.bottom)/2)
	dc.DrawStringAnchored(c.yLabel, 22, (c.top+c.bottom)/2, 0.5, 0.5)
	dc.Pop()
}

// xLabels draws category labels under the axis, rotated and thinned so at
// most maxXLabels are shown.
func (c *canvas) xLabels(xs []float64, labels []string) {
	dc := c.dc
	dc.SetFontFace(c.tickFace)
	dc.SetColor(axisColor)
	dc.SetLineWidth(1)

	stride := (len(labels) + maxXLabels - 1) / maxXLabels
	if stride < 1 {
		stride = 1
	}
	for i := 0; i < len(labels); i += stride {
		x := xs[i]
		dc.DrawLine(x, c.bottom, x, c.bottom+tickLength)
		dc.Stroke()
		ly := c.bottom + tickLength + 4
		dc.Push()
		dc.RotateAbout(gg.Radians(labelAngle), x, ly)
		dc.DrawStringAnchored(labels[i], x, ly, 1, 0.5)
		dc.Pop()
	}
}

// niceScale picks axis bounds and a round step covering [lo, hi].
func niceScale(lo, hi float64, ticks int) (float64, float64, float64) {
	if hi-lo <= 0 {
		hi = lo + 1
	}
	step := niceNum((hi-lo)/float64(ticks-1), true)
	return math.Floor(lo/step) * step, math.Ceil(hi/step) * step, step
}

func niceNum(x float64, round bool) float64 {
	exp := math.Floor(math.Log10(x))
	f := x / math.Pow(10, exp)
	var nf float64
	switch {
	case round && f < 1.5:
		nf = 1
	case round && f < 3:
		nf = 2
	case round && f < 7:
		nf = 5
	case round:
		nf = 10
	case f <= 1:
		nf = 1
	case f <= 2:
		nf = 2
	case f <= 5:
		nf = 5
	default:
		nf = 10
	}
	return nf * math.Pow(10, exp)
}

// formatValue prints v with as many decimals as step needs.
func formatValue(v, step float64) string {
	decimals := 0
	if step < 1 {
		decimals = int(math.Ceil(-math.Log10(step)))
	}
	if math.Abs(v) < step/2 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
