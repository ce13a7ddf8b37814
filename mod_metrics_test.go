package orrery

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gekko3d/orrery/solarrt/rt/core"
	"github.com/gekko3d/orrery/solarrt/rt/ephemeris"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runningScene(t *testing.T) *SceneState {
	t.Helper()
	app, st, _, log := newSceneFixture(t, DefaultSceneDef(), nil)
	gfx := resourceOf[GraphicsContext](app)
	st.Init(app.Commands(), gfx, resourceOf[AssetServer](app), log)
	require.NoError(t, app.Err())
	st.Update(&FrameClock{Timestamp: 0, Frame: 1}, gfx, log)
	st.Render(&FrameClock{Frame: 1}, gfx, log)
	return st
}

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics()
	st := runningScene(t)

	m.Observe(st)
	st.Stats.RenderErr = errors.New("surface lost")
	st.Stats.PositionErrors = []*core.PositionError{{Body: ephemeris.Moon, Err: ephemeris.ErrUnknownBody}}
	m.Observe(st)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renderErrors))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.drawCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.positionErrors.WithLabelValues(ephemeris.Moon)))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.bodyPosition.WithLabelValues(ephemeris.Earth, "x")))
	assert.Equal(t, -20.0, testutil.ToFloat64(m.bodyPosition.WithLabelValues(ephemeris.Sun, "z")))
	assert.Equal(t, 9, testutil.CollectAndCount(m.bodyPosition))
}

func TestMetricsModuleServes(t *testing.T) {
	app := NewApp().UseStates(StateInitializing, StateShuttingDown)
	app.UseModules(MetricsModule{Addr: "127.0.0.1:0"})
	require.NoError(t, app.Err())
	t.Cleanup(app.runCleanups)

	m := resourceOf[Metrics](app)
	require.NotNil(t, m)
	require.NotNil(t, m.Addr)
	m.Observe(runningScene(t))

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", m.Addr))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.True(t, strings.Contains(text, "orrery_frames_total 1"), text)
	assert.Contains(t, text, `orrery_body_position{axis="x",body="EARTH"} 7`)
	assert.Contains(t, text, "go_goroutines")
}

func TestMetricsModuleBadAddr(t *testing.T) {
	app := NewApp().UseStates(StateInitializing, StateShuttingDown)
	app.UseModules(MetricsModule{Addr: "256.0.0.1:bad"})
	assert.ErrorContains(t, app.Err(), "metrics listen")
}
