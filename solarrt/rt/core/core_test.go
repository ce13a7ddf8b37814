package core

import (
	"errors"
	"testing"

	"github.com/gekko3d/orrery/solarrt/rt/ephemeris"
	"github.com/gekko3d/orrery/solarrt/rt/geom"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuffer struct {
	label    string
	floats   []float32
	indices  []uint32
	released bool
}

func (b *fakeBuffer) Release() { b.released = true }

type fakeProgram struct{ kind Kind }

func (p *fakeProgram) Kind() Kind { return p.kind }

type fakeUniforms struct {
	label    string
	released bool
}

func (u *fakeUniforms) Release() { u.released = true }

type call struct {
	op       string
	slot     uint32
	buffer   Buffer
	program  Program
	uniforms Uniforms
	data     UniformData
	count    uint32
}

type fakeFrame struct {
	clear mgl32.Vec4
	calls []call
	ended bool
	err   error
}

func (f *fakeFrame) UseProgram(p Program) {
	f.calls = append(f.calls, call{op: "program", program: p})
}

func (f *fakeFrame) SetVertexBuffer(slot uint32, b Buffer) {
	f.calls = append(f.calls, call{op: "vertex", slot: slot, buffer: b})
}

func (f *fakeFrame) SetIndexBuffer(b Buffer) {
	f.calls = append(f.calls, call{op: "index", buffer: b})
}

func (f *fakeFrame) SetUniforms(u Uniforms, data UniformData) {
	f.calls = append(f.calls, call{op: "uniforms", uniforms: u, data: data})
}

func (f *fakeFrame) DrawIndexed(count uint32) {
	f.calls = append(f.calls, call{op: "draw", count: count})
}

func (f *fakeFrame) End() error {
	f.ended = true
	return f.err
}

func (f *fakeFrame) draws() []call {
	var out []call
	for _, c := range f.calls {
		if c.op == "draw" {
			out = append(out, c)
		}
	}
	return out
}

type fakeDevice struct {
	programs   map[Kind]*fakeProgram
	buffers    []*fakeBuffer
	uniforms   []*fakeUniforms
	frames     []*fakeFrame
	programErr error
	beginErr   error
	frameErr   error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{programs: map[Kind]*fakeProgram{}}
}

func (d *fakeDevice) CreateVertexBuffer(label string, data []float32) (Buffer, error) {
	b := &fakeBuffer{label: label, floats: data}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) CreateIndexBuffer(label string, data []uint32) (Buffer, error) {
	b := &fakeBuffer{label: label, indices: data}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) CreateProgram(kind Kind) (Program, error) {
	if d.programErr != nil {
		return nil, d.programErr
	}
	if p, ok := d.programs[kind]; ok {
		return p, nil
	}
	p := &fakeProgram{kind: kind}
	d.programs[kind] = p
	return p, nil
}

func (d *fakeDevice) CreateUniforms(p Program, label string) (Uniforms, error) {
	u := &fakeUniforms{label: label}
	d.uniforms = append(d.uniforms, u)
	return u, nil
}

func (d *fakeDevice) BeginFrame(clear mgl32.Vec4) (Frame, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	f := &fakeFrame{clear: clear, err: d.frameErr}
	d.frames = append(d.frames, f)
	return f, nil
}

type fixedProvider map[string]mgl64.Vec3

func (p fixedProvider) Position(body string, t float64, frame, correction, centralBody string) (mgl64.Vec3, error) {
	if pos, ok := p[body]; ok {
		return pos, nil
	}
	return mgl64.Vec3{}, ephemeris.ErrUnknownBody
}

func (p fixedProvider) Orientation(frame, body string, t float64) (mgl64.Mat3, error) {
	return mgl64.Ident3(), nil
}

func newBody(t *testing.T, dev Device, name string, kind Kind, radius float32) *Body {
	t.Helper()
	b, err := NewBody(dev, BodyDef{
		Name:        name,
		Kind:        kind,
		Radius:      radius,
		Color:       mgl32.Vec4{0.2, 0.2, 1, 1},
		CentralBody: ephemeris.Sun,
	}, geom.GenerateSphere(radius))
	require.NoError(t, err)
	return b
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"lit":      Lit,
		"Planet":   Lit,
		"emissive": Emissive,
		" SUN ":    Emissive,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("nebula")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, "lit", Lit.String())
	assert.Equal(t, "emissive", Emissive.String())
}

func TestNewBodyUploadsBuffers(t *testing.T) {
	dev := newFakeDevice()
	b := newBody(t, dev, "EARTH", Lit, 1.25)

	require.Len(t, dev.buffers, 3)
	positions, colors, indices := dev.buffers[0], dev.buffers[1], dev.buffers[2]

	assert.Equal(t, b.Mesh.Vertices, positions.floats)
	assert.Equal(t, b.Mesh.Indices, indices.indices)
	require.Len(t, colors.floats, 4*b.Mesh.VertexCount())
	for i := 0; i < b.Mesh.VertexCount(); i++ {
		assert.Equal(t, []float32{0.2, 0.2, 1, 1}, colors.floats[4*i:4*i+4])
	}
	assert.Equal(t, mgl32.Ident4(), b.Transform)
}

func TestNewBodyRejectsBadInput(t *testing.T) {
	dev := newFakeDevice()

	_, err := NewBody(dev, BodyDef{Name: "X", Radius: 0}, geom.GenerateSphere(1))
	assert.Error(t, err)

	bad := geom.Mesh{Vertices: []float32{0, 0, 0}, Indices: []uint32{0, 1, 2}}
	_, err = NewBody(dev, BodyDef{Name: "X", Radius: 1}, bad)
	assert.Error(t, err)

	dev.programErr = errors.New("shader compile failed")
	_, err = NewBody(dev, BodyDef{Name: "X", Radius: 1}, geom.GenerateSphere(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, dev.programErr)
	assert.Empty(t, dev.buffers)
}

func TestProgramsSharedPerKind(t *testing.T) {
	dev := newFakeDevice()
	a := newBody(t, dev, "EARTH", Lit, 1.25)
	b := newBody(t, dev, "MOON", Lit, 0.5)
	c := newBody(t, dev, "SUN", Emissive, 3)

	assert.Same(t, a.program, b.program)
	assert.NotSame(t, a.program, c.program)
	assert.Equal(t, Emissive, c.program.Kind())
}

func TestUpdatePositionPreservesRotation(t *testing.T) {
	dev := newFakeDevice()
	b := newBody(t, dev, "EARTH", Lit, 1)
	b.Transform = mgl32.HomogRotate3DY(0.7).Mul4(mgl32.Scale3D(2, 2, 2))
	before := b.Transform

	b.UpdatePosition(mgl32.Vec3{1, 2, 3})
	b.UpdatePosition(mgl32.Vec3{7, 0, -20})

	for i := 0; i < 16; i++ {
		switch i {
		case 12, 13, 14:
			continue
		}
		if b.Transform[i] != before[i] {
			t.Errorf("entry %d changed: %v -> %v", i, before[i], b.Transform[i])
		}
	}
	assert.Equal(t, mgl32.Vec3{7, 0, -20}, b.Position())
}

func TestLitBodyFollowsProvider(t *testing.T) {
	dev := newFakeDevice()
	scene := NewScene()
	scene.AddBody(newBody(t, dev, "EARTH", Lit, 1.25))

	errs := scene.UpdatePositions(fixedProvider{"EARTH": {7, 0, -20}})
	require.Empty(t, errs)

	assert.Equal(t, mgl32.Vec3{7, 0, -20}, scene.Body("EARTH").Position())
}

type query struct {
	body, frame, correction, centralBody string
	t                                    float64
}

type recordingProvider struct {
	queries []query
}

func (p *recordingProvider) Position(body string, t float64, frame, correction, centralBody string) (mgl64.Vec3, error) {
	p.queries = append(p.queries, query{body: body, t: t, frame: frame, correction: correction, centralBody: centralBody})
	return mgl64.Vec3{}, nil
}

func (p *recordingProvider) Orientation(frame, body string, t float64) (mgl64.Mat3, error) {
	return mgl64.Ident3(), nil
}

func TestUpdatePositionsQueryArguments(t *testing.T) {
	dev := newFakeDevice()
	scene := NewScene()
	scene.AddBody(newBody(t, dev, "EARTH", Lit, 1.25))
	moon, err := NewBody(dev, BodyDef{Name: "MOON", Kind: Lit, Radius: 0.75, CentralBody: "EARTH"}, geom.GenerateSphere(0.75))
	require.NoError(t, err)
	scene.AddBody(moon)
	scene.SimTime = 4

	p := &recordingProvider{}
	require.Empty(t, scene.UpdatePositions(p))
	assert.Equal(t, []query{
		{body: "EARTH", t: 4, frame: "ECLIPJ2000", correction: "NONE", centralBody: "SUN"},
		{body: "MOON", t: 4, frame: "ECLIPJ2000", correction: "NONE", centralBody: "EARTH"},
	}, p.queries)
}

func TestUpdatePositionsKeepsPreviousOnError(t *testing.T) {
	dev := newFakeDevice()
	scene := NewScene()
	scene.AddBody(newBody(t, dev, "EARTH", Lit, 1))
	scene.AddBody(newBody(t, dev, "PLUTO", Lit, 0.2))
	scene.Body("PLUTO").UpdatePosition(mgl32.Vec3{1, 1, 1})

	errs := scene.UpdatePositions(fixedProvider{"EARTH": {7, 0, -20}})
	require.Len(t, errs, 1)
	assert.Equal(t, "PLUTO", errs[0].Body)
	assert.ErrorIs(t, errs[0], ephemeris.ErrUnknownBody)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, scene.Body("PLUTO").Position())
	assert.Equal(t, mgl32.Vec3{7, 0, -20}, scene.Body("EARTH").Position())
}

func TestSimulatedScene(t *testing.T) {
	dev := newFakeDevice()
	scene := NewScene()
	scene.AddBody(newBody(t, dev, ephemeris.Sun, Emissive, 3))
	scene.AddBody(newBody(t, dev, ephemeris.Earth, Lit, 1.25))
	scene.AddBody(newBody(t, dev, ephemeris.Moon, Lit, 0.5))

	scene.SimTime = 0
	require.Empty(t, scene.UpdatePositions(ephemeris.NewSimulated()))
	assert.Equal(t, mgl32.Vec3{0, 0, -20}, scene.Body(ephemeris.Sun).Position())
	assert.Equal(t, mgl32.Vec3{7, 0, -20}, scene.Body(ephemeris.Earth).Position())
	assert.Equal(t, mgl32.Vec3{10, 0, -20}, scene.Body(ephemeris.Moon).Position())
}

func TestDisplayLitUniforms(t *testing.T) {
	dev := newFakeDevice()
	scene := NewScene()
	scene.Perspective(45, 4.0/3.0, 0.1, 100)
	scene.LightPosition = mgl32.Vec3{0, 0, -20}
	b := newBody(t, dev, "EARTH", Lit, 1.25)
	b.UpdatePosition(mgl32.Vec3{7, 0, -20})
	scene.AddBody(b)

	f := &fakeFrame{}
	scene.Draw(f)

	ops := make([]string, len(f.calls))
	for i, c := range f.calls {
		ops[i] = c.op
	}
	assert.Equal(t, []string{"program", "vertex", "vertex", "vertex", "index", "uniforms", "draw"}, ops)
	assert.Equal(t, SlotNormal, f.calls[3].slot)
	assert.Same(t, f.calls[1].buffer, f.calls[3].buffer)

	data := f.calls[5].data
	assert.Equal(t, b.Transform, data.ModelView)
	assert.Equal(t, scene.Projection, data.Projection)
	assert.Equal(t, b.Transform.Inv().Transpose(), data.Normal)
	assert.Equal(t, mgl32.Vec4{0, 0, -20, 1}, data.Light)
	assert.Equal(t, uint32(len(b.Mesh.Indices)), f.calls[6].count)
}

func TestDisplayEmissiveIgnoresLight(t *testing.T) {
	dev := newFakeDevice()
	scene := NewScene()
	scene.LightPosition = mgl32.Vec3{5, 5, 5}
	scene.AddBody(newBody(t, dev, "SUN", Emissive, 3))

	f := &fakeFrame{}
	scene.Draw(f)

	for _, c := range f.calls {
		if c.op == "vertex" {
			assert.NotEqual(t, SlotNormal, c.slot)
		}
		if c.op == "uniforms" {
			assert.Equal(t, mgl32.Vec4{}, c.data.Light)
			assert.Equal(t, mgl32.Mat4{}, c.data.Normal)
		}
	}
}

func TestRenderDrawsInListOrder(t *testing.T) {
	dev := newFakeDevice()
	scene := NewScene()
	sun := newBody(t, dev, "SUN", Emissive, 3)
	earth := newBody(t, dev, "EARTH", Lit, 1.25)
	moon := newBody(t, dev, "MOON", Lit, 0.5)
	scene.AddBody(sun)
	scene.AddBody(earth)
	scene.AddBody(moon)

	n, err := scene.Render(dev)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, dev.frames, 1)
	f := dev.frames[0]
	assert.True(t, f.ended)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, f.clear)

	draws := f.draws()
	require.Len(t, draws, 3)
	var programs []Kind
	for _, c := range f.calls {
		if c.op == "program" {
			programs = append(programs, c.program.Kind())
		}
	}
	assert.Equal(t, []Kind{Emissive, Lit, Lit}, programs)
	assert.Equal(t, uint32(len(moon.Mesh.Indices)), draws[2].count)
}

func TestRenderErrors(t *testing.T) {
	dev := newFakeDevice()
	scene := NewScene()
	scene.AddBody(newBody(t, dev, "SUN", Emissive, 3))

	dev.beginErr = errors.New("surface lost")
	_, err := scene.Render(dev)
	assert.ErrorIs(t, err, dev.beginErr)

	dev.beginErr = nil
	dev.frameErr = errors.New("present failed")
	n, err := scene.Render(dev)
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, dev.frameErr)
}

func TestRelease(t *testing.T) {
	dev := newFakeDevice()
	scene := NewScene()
	scene.AddBody(newBody(t, dev, "EARTH", Lit, 1))
	scene.Release()

	for _, b := range dev.buffers {
		assert.True(t, b.released, b.label)
	}
	for _, u := range dev.uniforms {
		assert.True(t, u.released, u.label)
	}
	// second release is a no-op
	scene.Release()
}
