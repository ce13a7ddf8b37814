package orrery

import (
	"fmt"
	"reflect"
	"time"

	"github.com/gekko3d/orrery/solarrt/rt/core"
	"github.com/gekko3d/orrery/solarrt/rt/ephemeris"
)

// SceneModule builds the bodies on entering StateInitializing, moves and
// draws them every frame in StateRunning and releases them on
// StateShuttingDown. Provider defaults to ephemeris.Simulated.
type SceneModule struct {
	Def      SceneDef
	Provider ephemeris.Provider
}

// SceneState is the scene driver resource.
type SceneState struct {
	Scene    *core.Scene
	Provider ephemeris.Provider
	Stats    FrameStats

	def     SceneDef
	aspect  float32
	failing map[string]bool
}

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Frame          uint64
	DrawCalls      int
	FrameSeconds   float64
	PositionErrors []*core.PositionError
	RenderErr      error
}

func (mod SceneModule) Install(app *App, cmd *Commands) {
	provider := mod.Provider
	if provider == nil {
		provider = ephemeris.NewSimulated()
	}
	if err := mod.Def.Validate(); err != nil {
		cmd.Fail(err)
		return
	}
	if _, ok := app.resources[reflect.TypeOf(AssetServer{})]; !ok {
		cmd.AddResources(NewAssetServer())
	}

	st := NewSceneState(mod.Def, provider)
	cmd.AddResources(st)

	app.UseSystem(
		System(func(cmd *Commands, st *SceneState, gfx *GraphicsContext, assets *AssetServer) {
			st.Init(cmd, gfx, assets, app.Logger())
		}).
			InStage(Prelude).
			InState(OnEnter(StateInitializing)),
	)
	app.UseSystem(
		System(func(st *SceneState, clock *FrameClock, gfx *GraphicsContext) {
			st.Update(clock, gfx, app.Logger())
		}).
			InStage(Update).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(func(st *SceneState, clock *FrameClock, gfx *GraphicsContext) {
			st.Render(clock, gfx, app.Logger())
		}).
			InStage(Render).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(func(st *SceneState) {
			st.Scene.Release()
		}).
			InStage(Finale).
			InState(OnEnter(StateShuttingDown)),
	)
}

func NewSceneState(def SceneDef, provider ephemeris.Provider) *SceneState {
	scene := core.NewScene()
	scene.LightPosition = def.LightPosition
	scene.ClearColor = def.ClearColor
	return &SceneState{
		Scene:    scene,
		Provider: provider,
		def:      def,
		failing:  map[string]bool{},
	}
}

// Init sets the projection from the viewport and creates every body, then
// switches to StateRunning. Any failure is fatal.
func (st *SceneState) Init(cmd *Commands, gfx *GraphicsContext, assets *AssetServer, log Logger) {
	st.setProjection(gfx.Aspect())

	for _, def := range st.def.Bodies {
		mesh, _ := assets.Mesh(assets.LoadSphere(def.Radius, st.def.MeshStepDeg))
		body, err := core.NewBody(gfx.Device, def, mesh)
		if err != nil {
			cmd.Fail(fmt.Errorf("scene init: %w", err))
			return
		}
		st.Scene.AddBody(body)
		log.Debugf("body %s: %s, radius %v, %d triangles", def.Name, def.Kind, def.Radius, mesh.TriangleCount())
	}

	log.Infof("scene ready: %d bodies, %d meshes", len(st.Scene.Objects), assets.MeshCount())
	cmd.ChangeState(StateRunning)
}

func (st *SceneState) setProjection(aspect float32) {
	st.aspect = aspect
	st.Scene.Perspective(st.def.FovDeg, aspect, st.def.Near, st.def.Far)
}

// Update advances simulated time and moves every body. Provider errors keep
// the body in place and are logged once until the body recovers.
func (st *SceneState) Update(clock *FrameClock, gfx *GraphicsContext, log Logger) {
	if aspect := gfx.Aspect(); aspect != st.aspect {
		st.setProjection(aspect)
	}

	scale := st.def.TimeScale
	if scale == 0 {
		scale = 1
	}
	switch st.def.TimeMode {
	case TimeModeAccumulated:
		st.Scene.SimTime += clock.Dt * scale
	default:
		st.Scene.SimTime = clock.Timestamp * scale
	}

	errs := st.Scene.UpdatePositions(st.Provider)
	st.Stats.PositionErrors = errs

	now := map[string]bool{}
	for _, err := range errs {
		now[err.Body] = true
		if !st.failing[err.Body] {
			log.Warnf("%v", err)
		}
	}
	for body := range st.failing {
		if !now[body] {
			log.Infof("position of %s available again", body)
		}
	}
	st.failing = now
}

// Render draws one frame. A frame the surface cannot provide is skipped.
func (st *SceneState) Render(clock *FrameClock, gfx *GraphicsContext, log Logger) {
	start := time.Now()
	n, err := st.Scene.Render(gfx.Device)
	st.Stats.Frame = clock.Frame
	st.Stats.DrawCalls = n
	st.Stats.RenderErr = err
	st.Stats.FrameSeconds = time.Since(start).Seconds()
	if err != nil {
		log.Warnf("frame %d skipped: %v", clock.Frame, err)
	}
}
