package orrery

import (
	"fmt"
	"reflect"

	"github.com/gekko3d/orrery/solarrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

type fakeBuffer struct{ released bool }

func (b *fakeBuffer) Release() { b.released = true }

type fakeProgram struct{ kind core.Kind }

func (p *fakeProgram) Kind() core.Kind { return p.kind }

type fakeUniforms struct{ released bool }

func (u *fakeUniforms) Release() { u.released = true }

type fakeFrame struct {
	draws int
	err   error
}

func (f *fakeFrame) UseProgram(p core.Program)                          {}
func (f *fakeFrame) SetVertexBuffer(slot uint32, b core.Buffer)         {}
func (f *fakeFrame) SetIndexBuffer(b core.Buffer)                       {}
func (f *fakeFrame) SetUniforms(u core.Uniforms, data core.UniformData) {}
func (f *fakeFrame) DrawIndexed(indexCount uint32)                      { f.draws++ }
func (f *fakeFrame) End() error                                         { return f.err }

// fakeDevice records what a scene creates and draws.
type fakeDevice struct {
	buffers   []*fakeBuffer
	uniforms  []*fakeUniforms
	frames    []*fakeFrame
	bufferErr error
	beginErr  error
}

func (d *fakeDevice) CreateVertexBuffer(label string, data []float32) (core.Buffer, error) {
	if d.bufferErr != nil {
		return nil, d.bufferErr
	}
	b := &fakeBuffer{}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) CreateIndexBuffer(label string, data []uint32) (core.Buffer, error) {
	b := &fakeBuffer{}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) CreateProgram(kind core.Kind) (core.Program, error) {
	return &fakeProgram{kind: kind}, nil
}

func (d *fakeDevice) CreateUniforms(p core.Program, label string) (core.Uniforms, error) {
	u := &fakeUniforms{}
	d.uniforms = append(d.uniforms, u)
	return u, nil
}

func (d *fakeDevice) BeginFrame(clear mgl32.Vec4) (core.Frame, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	f := &fakeFrame{}
	d.frames = append(d.frames, f)
	return f, nil
}

// funcProvider answers Position with fn and identity orientations.
type funcProvider func(body string, t float64) (mgl64.Vec3, error)

func (p funcProvider) Position(body string, t float64, frame, correction, centralBody string) (mgl64.Vec3, error) {
	return p(body, t)
}

func (p funcProvider) Orientation(frame, body string, t float64) (mgl64.Mat3, error) {
	return mgl64.Ident3(), nil
}

// recordingLogger keeps every line it is given.
type recordingLogger struct {
	nopLogger
	infos []string
	warns []string
}

func (l *recordingLogger) Infof(format string, args ...any) {
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func resourceOf[T any](app *App) *T {
	r, _ := app.resources[reflect.TypeOf((*T)(nil)).Elem()].(*T)
	return r
}

type providerQuery struct {
	body, frame, correction, centralBody string
	t                                    float64
}

// recordingProvider keeps every query and answers with the origin.
type recordingProvider struct {
	queries []providerQuery
}

func (p *recordingProvider) Position(body string, t float64, frame, correction, centralBody string) (mgl64.Vec3, error) {
	p.queries = append(p.queries, providerQuery{body: body, t: t, frame: frame, correction: correction, centralBody: centralBody})
	return mgl64.Vec3{}, nil
}

func (p *recordingProvider) Orientation(frame, body string, t float64) (mgl64.Mat3, error) {
	return mgl64.Ident3(), nil
}
