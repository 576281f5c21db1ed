// Package state holds the editor document model and the versioned store
// that owns it.
//
// Every record here is a plain value. The compositor only ever reads
// snapshots produced by Store.Snapshot or Document.Clone, so a document
// handed to a render is never mutated behind its back.
package state

import (
	"encoding/json"
	"strconv"

	"github.com/jinzhu/copier"
)

// Position is a resolution-independent location given as percentages of
// the surface width and height.
type Position struct {
	Horizontal float64 `json:"horizontal" yaml:"horizontal" toml:"horizontal"`
	Vertical   float64 `json:"vertical" yaml:"vertical" toml:"vertical"`
}

// Offset is a percentage offset from the surface centre.
type Offset struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

// Glow describes a coloured halo around a shape or text layer. Intensity
// is the blur radius in pixels.
type Glow struct {
	Enabled   bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	Color     string  `json:"color" yaml:"color" toml:"color"`
	Intensity float64 `json:"intensity" yaml:"intensity" toml:"intensity"`
}

// ImageGlow is the white halo of a background image layer.
type ImageGlow struct {
	Intensity float64 `json:"intensity" yaml:"intensity" toml:"intensity"`
}

// BackgroundImageLayer is an extra image stacked above the base layer.
type BackgroundImageLayer struct {
	ID       string   `json:"id" yaml:"id" toml:"id"`
	URL      string   `json:"url" yaml:"url" toml:"url"`
	Position Position `json:"position" yaml:"position" toml:"position"`
	Rotation float64  `json:"rotation" yaml:"rotation" toml:"rotation"`
	Opacity  float64  `json:"opacity" yaml:"opacity" toml:"opacity"`
	// Scale is the side of the square as a percentage of min(width, height).
	Scale        float64   `json:"scale" yaml:"scale" toml:"scale"`
	BorderRadius float64   `json:"borderRadius" yaml:"borderRadius" toml:"borderRadius"`
	Glow         ImageGlow `json:"glow" yaml:"glow" toml:"glow"`
}

// ShapeLayer is a vector outline looked up by Type in the shape registry.
type ShapeLayer struct {
	ID          string   `json:"id" yaml:"id" toml:"id"`
	Type        string   `json:"type" yaml:"type" toml:"type"`
	Position    Position `json:"position" yaml:"position" toml:"position"`
	Rotation    float64  `json:"rotation" yaml:"rotation" toml:"rotation"`
	Scale       float64  `json:"scale" yaml:"scale" toml:"scale"`
	Opacity     float64  `json:"opacity" yaml:"opacity" toml:"opacity"`
	IsFilled    bool     `json:"isFilled" yaml:"isFilled" toml:"isFilled"`
	Color       string   `json:"color" yaml:"color" toml:"color"`
	StrokeWidth float64  `json:"strokeWidth" yaml:"strokeWidth" toml:"strokeWidth"`
	Glow        Glow     `json:"glow" yaml:"glow" toml:"glow"`
}

// Placement selects the text pass a layer belongs to.
type Placement string

const (
	// PlacementBackground draws the text behind the foreground subject.
	PlacementBackground Placement = "background"

	// PlacementForeground draws the text above everything else.
	PlacementForeground Placement = "foreground"
)

// TextBackground is an optional box drawn behind a text layer.
type TextBackground struct {
	Enabled      bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	Color        string  `json:"color" yaml:"color" toml:"color"`
	Width        float64 `json:"width" yaml:"width" toml:"width"`
	Height       float64 `json:"height" yaml:"height" toml:"height"`
	BorderRadius float64 `json:"borderRadius" yaml:"borderRadius" toml:"borderRadius"`
}

// FontWeight is a CSS font weight such as "400", "bold" or "normal".
type FontWeight string

// UnmarshalJSON accepts both numeric and string weights.
func (w *FontWeight) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*w = FontWeight(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*w = FontWeight(s)
	return nil
}

// TextLayer is a run of text placed on the surface.
type TextLayer struct {
	ID         string         `json:"id" yaml:"id" toml:"id"`
	Text       string         `json:"text" yaml:"text" toml:"text"`
	Placement  Placement      `json:"placement" yaml:"placement" toml:"placement"`
	Position   Position       `json:"position" yaml:"position" toml:"position"`
	Rotation   float64        `json:"rotation" yaml:"rotation" toml:"rotation"`
	FontFamily string         `json:"fontFamily" yaml:"fontFamily" toml:"fontFamily"`
	FontSize   float64        `json:"fontSize" yaml:"fontSize" toml:"fontSize"`
	FontWeight FontWeight     `json:"fontWeight" yaml:"fontWeight" toml:"fontWeight"`
	Color      string         `json:"color" yaml:"color" toml:"color"`
	Opacity    float64        `json:"opacity" yaml:"opacity" toml:"opacity"`
	Glow       Glow           `json:"glow" yaml:"glow" toml:"glow"`
	Background TextBackground `json:"background" yaml:"background" toml:"background"`
}

// DrawingPoint is one sample of a freehand stroke in surface pixels.
type DrawingPoint struct {
	X     float64 `json:"x" yaml:"x" toml:"x"`
	Y     float64 `json:"y" yaml:"y" toml:"y"`
	Size  float64 `json:"size" yaml:"size" toml:"size"`
	Color string  `json:"color" yaml:"color" toml:"color"`
}

// DrawingPath is a committed stroke. It is never modified after commit.
type DrawingPath struct {
	ID     string         `json:"id" yaml:"id" toml:"id"`
	Points []DrawingPoint `json:"points" yaml:"points" toml:"points"`
}

// Flip mirrors a clone along either axis.
type Flip struct {
	Horizontal bool `json:"horizontal" yaml:"horizontal" toml:"horizontal"`
	Vertical   bool `json:"vertical" yaml:"vertical" toml:"vertical"`
}

// ForegroundClone is an extra instance of the foreground subject.
type ForegroundClone struct {
	ID       string  `json:"id" yaml:"id" toml:"id"`
	Position Offset  `json:"position" yaml:"position" toml:"position"`
	Size     float64 `json:"size" yaml:"size" toml:"size"`
	Rotation float64 `json:"rotation" yaml:"rotation" toml:"rotation"`
	Flip     Flip    `json:"flip" yaml:"flip" toml:"flip"`
}

// ImageEnhancements holds optional tone adjustments. A nil field takes its
// default when resolved.
type ImageEnhancements struct {
	Brightness *float64 `json:"brightness,omitempty" yaml:"brightness,omitempty" toml:"brightness,omitempty"`
	Contrast   *float64 `json:"contrast,omitempty" yaml:"contrast,omitempty" toml:"contrast,omitempty"`
	Saturation *float64 `json:"saturation,omitempty" yaml:"saturation,omitempty" toml:"saturation,omitempty"`
	Fade       *float64 `json:"fade,omitempty" yaml:"fade,omitempty" toml:"fade,omitempty"`
	Blur       *float64 `json:"blur,omitempty" yaml:"blur,omitempty" toml:"blur,omitempty"`
	Blacks     *float64 `json:"blacks,omitempty" yaml:"blacks,omitempty" toml:"blacks,omitempty"`
	Exposure   *float64 `json:"exposure,omitempty" yaml:"exposure,omitempty" toml:"exposure,omitempty"`
	Highlights *float64 `json:"highlights,omitempty" yaml:"highlights,omitempty" toml:"highlights,omitempty"`
	Shadows    *float64 `json:"shadows,omitempty" yaml:"shadows,omitempty" toml:"shadows,omitempty"`
	Sharpness  *float64 `json:"sharpness,omitempty" yaml:"sharpness,omitempty" toml:"sharpness,omitempty"`
}

// Adjustments is ImageEnhancements with every default filled in.
//
// Exposure, Highlights, Shadows and Sharpness are carried for callers but
// take no part in the filter chain.
type Adjustments struct {
	Brightness float64
	Contrast   float64
	Saturation float64
	Fade       float64
	Blur       float64
	Blacks     float64
	Exposure   float64
	Highlights float64
	Shadows    float64
	Sharpness  float64
}

// DefaultAdjustments returns the neutral adjustment set.
func DefaultAdjustments() Adjustments {
	return Adjustments{Brightness: 100, Contrast: 100, Saturation: 100}
}

// Resolve fills in defaults for every unset field.
func (e ImageEnhancements) Resolve() Adjustments {
	a := DefaultAdjustments()
	pick := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	pick(&a.Brightness, e.Brightness)
	pick(&a.Contrast, e.Contrast)
	pick(&a.Saturation, e.Saturation)
	pick(&a.Fade, e.Fade)
	pick(&a.Blur, e.Blur)
	pick(&a.Blacks, e.Blacks)
	pick(&a.Exposure, e.Exposure)
	pick(&a.Highlights, e.Highlights)
	pick(&a.Shadows, e.Shadows)
	pick(&a.Sharpness, e.Sharpness)
	return a
}

// Value returns a pointer to v, for building ImageEnhancements literals.
func Value(v float64) *float64 { return &v }

// Cutout draws a coloured silhouette around the foreground subject.
type Cutout struct {
	Enabled   bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	Color     string  `json:"color" yaml:"color" toml:"color"`
	Width     float64 `json:"width" yaml:"width" toml:"width"`
	Intensity float64 `json:"intensity" yaml:"intensity" toml:"intensity"`
}

// Images holds the base image URLs. Foreground is the extracted subject.
type Images struct {
	Background string `json:"background" yaml:"background" toml:"background"`
	Foreground string `json:"foreground" yaml:"foreground" toml:"foreground"`
}

// Dimensions is an explicit surface size in pixels.
type Dimensions struct {
	Width  int `json:"width" yaml:"width" toml:"width"`
	Height int `json:"height" yaml:"height" toml:"height"`
}

// Valid reports whether both dimensions are positive.
func (d Dimensions) Valid() bool { return d.Width > 0 && d.Height > 0 }

// DrawingTool names the active freehand tool.
type DrawingTool string

// Document is the complete editor state read by one render.
type Document struct {
	Image Images `json:"image" yaml:"image" toml:"image"`

	BackgroundImages []BackgroundImageLayer `json:"backgroundImages" yaml:"backgroundImages" toml:"backgroundImages"`
	Shapes           []ShapeLayer           `json:"shapeSets" yaml:"shapeSets" toml:"shapeSets"`
	Texts            []TextLayer            `json:"textSets" yaml:"textSets" toml:"textSets"`
	Drawings         []DrawingPath          `json:"drawings" yaml:"drawings" toml:"drawings"`
	Clones           []ForegroundClone      `json:"clonedForegrounds" yaml:"clonedForegrounds" toml:"clonedForegrounds"`

	BackgroundColor          string     `json:"backgroundColor" yaml:"backgroundColor" toml:"backgroundColor"`
	BackgroundOpacity        float64    `json:"backgroundOpacity" yaml:"backgroundOpacity" toml:"backgroundOpacity"`
	BackgroundDimensions     Dimensions `json:"backgroundDimensions" yaml:"backgroundDimensions" toml:"backgroundDimensions"`
	HasTransparentBackground bool       `json:"hasTransparentBackground" yaml:"hasTransparentBackground" toml:"hasTransparentBackground"`
	HasChangedBackground     bool       `json:"hasChangedBackground" yaml:"hasChangedBackground" toml:"hasChangedBackground"`

	ForegroundPosition Offset  `json:"foregroundPosition" yaml:"foregroundPosition" toml:"foregroundPosition"`
	ForegroundSize     float64 `json:"foregroundSize" yaml:"foregroundSize" toml:"foregroundSize"`
	Cutout             Cutout  `json:"cutout" yaml:"cutout" toml:"cutout"`

	ForegroundEnhancements ImageEnhancements `json:"foregroundEnhancements" yaml:"foregroundEnhancements" toml:"foregroundEnhancements"`
	BackgroundEnhancements ImageEnhancements `json:"backgroundEnhancements" yaml:"backgroundEnhancements" toml:"backgroundEnhancements"`
	ApplyToForeground      bool              `json:"applyToForeground" yaml:"applyToForeground" toml:"applyToForeground"`
	ApplyToBackground      bool              `json:"applyToBackground" yaml:"applyToBackground" toml:"applyToBackground"`

	IsDrawingMode bool        `json:"isDrawingMode" yaml:"isDrawingMode" toml:"isDrawingMode"`
	DrawingTool   DrawingTool `json:"drawingTool" yaml:"drawingTool" toml:"drawingTool"`
	DrawingSize   float64     `json:"drawingSize" yaml:"drawingSize" toml:"drawingSize"`
	DrawingColor  string      `json:"drawingColor" yaml:"drawingColor" toml:"drawingColor"`
}

// NewDocument returns a document with the editor defaults: a fully opaque
// white background, the subject at full size and a 5px black brush.
func NewDocument() Document {
	return Document{
		BackgroundColor:   "#ffffff",
		BackgroundOpacity: 1,
		ForegroundSize:    100,
		Cutout:            Cutout{Color: "#ffffff", Width: 10, Intensity: 100},
		DrawingTool:       "brush",
		DrawingSize:       5,
		DrawingColor:      "#000000",
	}
}

// Clone returns a deep copy of d.
func (d *Document) Clone() Document {
	var out Document
	if err := copier.CopyWithOption(&out, d, copier.Option{DeepCopy: true}); err != nil {
		// Document has no interface or channel fields, so copier cannot
		// fail on it.
		panic("state: clone document: " + err.Error())
	}
	return out
}

// TextLayersAt returns the text layers with the given placement in array
// order.
func (d *Document) TextLayersAt(p Placement) []TextLayer {
	var out []TextLayer
	for _, t := range d.Texts {
		if t.Placement == p {
			out = append(out, t)
		}
	}
	return out
}

// BaseImageURL returns the URL that sizes the surface: the foreground in
// transparent mode, otherwise the background image.
func (d *Document) BaseImageURL() string {
	if d.HasTransparentBackground {
		return d.Image.Foreground
	}
	return d.Image.Background
}

// String renders a weight the way a CSS font shorthand expects.
func (w FontWeight) String() string {
	if w == "" {
		return "normal"
	}
	return string(w)
}

// Numeric maps the weight to the 100-900 scale. Unknown keywords report
// 400.
func (w FontWeight) Numeric() int {
	switch w {
	case "", "normal", "regular":
		return 400
	case "bold":
		return 700
	case "lighter", "light":
		return 300
	case "bolder":
		return 800
	case "medium":
		return 500
	case "semibold":
		return 600
	case "thin":
		return 100
	case "black":
		return 900
	}
	if n, err := strconv.Atoi(string(w)); err == nil && n > 0 {
		return n
	}
	return 400
}
