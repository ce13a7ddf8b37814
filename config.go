package orrery

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gekko3d/orrery/solarrt/rt/core"
	"github.com/gekko3d/orrery/solarrt/rt/ephemeris"
	"github.com/gekko3d/orrery/solarrt/rt/geom"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	ProviderSimulated = "simulated"
	ProviderKepler    = "kepler"
	ProviderMeeus     = "meeus"
)

// DefaultProviderTimeScale runs the physical providers at 30 days per second.
const DefaultProviderTimeScale = 30 * ephemeris.SecondsPerDay

type Config struct {
	Window      WindowConfig     `yaml:"window"`
	Projection  ProjectionConfig `yaml:"projection"`
	Light       []float32        `yaml:"light,flow"`
	ClearColor  *Color           `yaml:"clear_color"`
	MeshStepDeg int              `yaml:"mesh_step_deg"`
	Time        TimeConfig       `yaml:"time"`
	Provider    ProviderConfig   `yaml:"provider"`
	Bodies      []BodyConfig     `yaml:"bodies"`

	MetricsAddr   string  `yaml:"metrics_addr,omitempty"`
	TelemetryAddr string  `yaml:"telemetry_addr,omitempty"`
	MaxFPS        float64 `yaml:"max_fps,omitempty"`
	Debug         bool    `yaml:"debug,omitempty"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type ProjectionConfig struct {
	FovDeg float32 `yaml:"fov_deg"`
	Near   float32 `yaml:"near"`
	Far    float32 `yaml:"far"`
}

type TimeConfig struct {
	Mode  TimeMode `yaml:"mode"`
	Scale float64  `yaml:"scale"`
}

type ProviderConfig struct {
	Kind string `yaml:"kind"`
	// Scale is render units per AU for the physical providers.
	Scale  float64   `yaml:"scale,omitempty"`
	Origin []float64 `yaml:"origin,flow,omitempty"`
	// Center is the body all physical positions are measured from.
	Center string `yaml:"center,omitempty"`
	// Epoch is the instant at time zero; empty means the start of the run.
	Epoch time.Time `yaml:"epoch,omitempty"`
	// TimeScale is simulated seconds per second of scene time.
	TimeScale float64 `yaml:"time_scale,omitempty"`
}

type BodyConfig struct {
	Name        string  `yaml:"name"`
	Kind        string  `yaml:"kind"`
	Radius      float32 `yaml:"radius"`
	Color       *Color  `yaml:"color"`
	CentralBody string  `yaml:"central_body"`
}

// DefaultConfig is the built-in Sun, Earth and Moon scene.
func DefaultConfig() Config {
	var c Config
	c.normalize()
	return c
}

func (c *Config) normalize() {
	def := DefaultSceneDef()
	if c.Window.Width == 0 {
		c.Window.Width = 800
	}
	if c.Window.Height == 0 {
		c.Window.Height = 600
	}
	if c.Window.Title == "" {
		c.Window.Title = "orrery"
	}
	if c.Projection.FovDeg == 0 {
		c.Projection.FovDeg = def.FovDeg
	}
	if c.Projection.Near == 0 {
		c.Projection.Near = def.Near
	}
	if c.Projection.Far == 0 {
		c.Projection.Far = def.Far
	}
	if len(c.Light) == 0 {
		c.Light = def.LightPosition[:]
	}
	if c.ClearColor == nil {
		c.ClearColor = colorPtr(def.ClearColor)
	}
	if c.MeshStepDeg == 0 {
		c.MeshStepDeg = geom.DefaultStepDeg
	}
	if c.Time.Mode == "" {
		c.Time.Mode = TimeModeTimestamp
	}
	if c.Time.Scale == 0 {
		c.Time.Scale = 1
	}
	if c.Provider.Kind == "" {
		c.Provider.Kind = ProviderSimulated
	}
	c.Provider.Kind = strings.ToLower(c.Provider.Kind)
	if c.Provider.Scale == 0 {
		c.Provider.Scale = 7
	}
	if len(c.Provider.Origin) == 0 {
		c.Provider.Origin = []float64{0, 0, -20}
	}
	if c.Provider.Center == "" {
		c.Provider.Center = ephemeris.Sun
	}
	if c.Provider.TimeScale == 0 {
		c.Provider.TimeScale = DefaultProviderTimeScale
	}
	if len(c.Bodies) == 0 {
		for _, b := range def.Bodies {
			c.Bodies = append(c.Bodies, BodyConfig{
				Name:        b.Name,
				Kind:        b.Kind.String(),
				Radius:      b.Radius,
				Color:       colorPtr(b.Color),
				CentralBody: b.CentralBody,
			})
		}
	}
	for i := range c.Bodies {
		b := &c.Bodies[i]
		b.Name = ephemeris.NormalizeName(b.Name)
		b.CentralBody = ephemeris.NormalizeName(b.CentralBody)
		if b.CentralBody == "" {
			b.CentralBody = ephemeris.Sun
		}
		if b.Kind == "" {
			b.Kind = core.Lit.String()
		}
		if b.Color == nil {
			b.Color = colorPtr(mgl32.Vec4{1, 1, 1, 1})
		}
	}
}

// LoadConfig reads a YAML scene file. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if len(c.Light) != 3 {
		return fmt.Errorf("%w: light needs 3 components, got %d", ErrInvalidConfig, len(c.Light))
	}
	if len(c.Provider.Origin) != 3 {
		return fmt.Errorf("%w: provider origin needs 3 components, got %d", ErrInvalidConfig, len(c.Provider.Origin))
	}
	switch c.Provider.Kind {
	case ProviderSimulated, ProviderKepler, ProviderMeeus:
	default:
		return fmt.Errorf("%w: provider %q", ErrInvalidConfig, c.Provider.Kind)
	}
	if c.MaxFPS < 0 {
		return fmt.Errorf("%w: max_fps %v", ErrInvalidConfig, c.MaxFPS)
	}
	def, err := c.SceneDef()
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) SceneDef() (SceneDef, error) {
	def := SceneDef{
		ClearColor:  c.ClearColor.vec4(mgl32.Vec4{0, 0, 0, 1}),
		FovDeg:      c.Projection.FovDeg,
		Near:        c.Projection.Near,
		Far:         c.Projection.Far,
		MeshStepDeg: c.MeshStepDeg,
		TimeMode:    c.Time.Mode,
		TimeScale:   c.Time.Scale,
	}
	if len(c.Light) == 3 {
		def.LightPosition = mgl32.Vec3{c.Light[0], c.Light[1], c.Light[2]}
	}
	for _, b := range c.Bodies {
		kind, err := core.ParseKind(b.Kind)
		if err != nil {
			return SceneDef{}, fmt.Errorf("%w: body %q: %w", ErrInvalidConfig, b.Name, err)
		}
		def.Bodies = append(def.Bodies, core.BodyDef{
			Name:        b.Name,
			Kind:        kind,
			Radius:      b.Radius,
			Color:       b.Color.vec4(mgl32.Vec4{1, 1, 1, 1}),
			CentralBody: b.CentralBody,
		})
	}
	return def, nil
}

// NewProvider builds the configured position provider. Physical providers
// are scaled into render space around Provider.Center.
func (c Config) NewProvider(now time.Time) ephemeris.Provider {
	tb := ephemeris.TimeBase{
		Epoch: c.Provider.Epoch,
		Scale: c.Provider.TimeScale,
	}
	if tb.Epoch.IsZero() {
		tb.Epoch = now
	}

	var physical ephemeris.Provider
	switch c.Provider.Kind {
	case ProviderKepler:
		physical = ephemeris.NewKepler(tb)
	case ProviderMeeus:
		physical = ephemeris.NewMeeus(tb)
	default:
		return ephemeris.NewSimulated()
	}
	return ephemeris.Scaled{
		Provider: physical,
		Scale:    c.Provider.Scale,
		Origin:   mgl64.Vec3{c.Provider.Origin[0], c.Provider.Origin[1], c.Provider.Origin[2]},
		Center:   c.Provider.Center,
	}
}

// Color is an RGBA color in [0, 1]. In YAML it is a hex string ("#3333ff"),
// a CSS color name ("yellow") or a list of 3 or 4 floats.
type Color mgl32.Vec4

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := ParseColor(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*c = parsed
		return nil
	case yaml.SequenceNode:
		var v []float32
		if err := node.Decode(&v); err != nil {
			return err
		}
		switch len(v) {
		case 3:
			*c = Color{v[0], v[1], v[2], 1}
		case 4:
			*c = Color{v[0], v[1], v[2], v[3]}
		default:
			return fmt.Errorf("line %d: color needs 3 or 4 components, got %d", node.Line, len(v))
		}
		for _, x := range *c {
			if x < 0 || x > 1 {
				return fmt.Errorf("line %d: color component %v out of [0, 1]", node.Line, x)
			}
		}
		return nil
	}
	return fmt.Errorf("line %d: unsupported color", node.Line)
}

func colorPtr(v mgl32.Vec4) *Color {
	c := Color(v)
	return &c
}

// vec4 returns c, or def when c is unset.
func (c *Color) vec4(def mgl32.Vec4) mgl32.Vec4 {
	if c == nil {
		return def
	}
	return mgl32.Vec4(*c)
}

func (c Color) MarshalYAML() (any, error) {
	return []float32{c[0], c[1], c[2], c[3]}, nil
}

func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		col, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		return Color{float32(col.R), float32(col.G), float32(col.B), 1}, nil
	}
	rgba, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return Color{}, fmt.Errorf("unknown color %q", s)
	}
	col, _ := colorful.MakeColor(rgba)
	return Color{float32(col.R), float32(col.G), float32(col.B), float32(rgba.A) / 255}, nil
}
