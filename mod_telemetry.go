package orrery

import (
	"net"
	"net/http"

	"github.com/gekko3d/orrery/solarrt/rt/telemetry"
)

// TelemetryModule streams body positions as JSON over a websocket at
// /telemetry. Every > 1 publishes only every n-th frame.
type TelemetryModule struct {
	Addr  string
	Every uint64
}

type Telemetry struct {
	Hub  *telemetry.Hub
	Addr net.Addr

	every uint64
}

func (mod TelemetryModule) Install(app *App, cmd *Commands) {
	t := &Telemetry{
		Hub:   telemetry.NewHub(appLogger{app: app}),
		every: mod.Every,
	}
	if mod.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/telemetry", t.Hub)
		addr, err := startHTTPServer(cmd, "telemetry", mod.Addr, mux)
		if err != nil {
			cmd.Fail(err)
			return
		}
		t.Addr = addr
	}
	cmd.Defer(t.Hub.Close)
	cmd.AddResources(t)

	app.UseSystem(
		System(func(t *Telemetry, st *SceneState) {
			telemetrySystem(t, st, app.Logger())
		}).
			InStage(PostRender).
			InState(OnExecute(StateRunning)),
	)
}

func SnapshotOf(st *SceneState) telemetry.Snapshot {
	s := telemetry.Snapshot{
		Frame:   st.Stats.Frame,
		SimTime: st.Scene.SimTime,
		Bodies:  make([]telemetry.BodySample, 0, len(st.Scene.Objects)),
	}
	for _, b := range st.Scene.Objects {
		s.Bodies = append(s.Bodies, telemetry.BodySample{
			Name:     b.Name,
			Position: b.Position(),
		})
	}
	return s
}

func telemetrySystem(t *Telemetry, st *SceneState, log Logger) {
	if t.every > 1 && st.Stats.Frame%t.every != 0 {
		return
	}
	if t.Hub.Clients() == 0 {
		return
	}
	if _, err := t.Hub.Publish(SnapshotOf(st)); err != nil {
		log.Warnf("telemetry frame %d: %v", st.Stats.Frame, err)
	}
}
