package orrery

import (
	"context"
	"testing"
)

type MockModule struct {
	installed bool
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
}

// stopModule stops the app on the first frame of StateRunning.
type stopModule struct {
	frames int
}

func (m *stopModule) Install(app *App, cmd *Commands) {
	app.UseSystem(System(func(cmd *Commands) {
		cmd.ChangeState(StateRunning)
	}).InState(OnEnter(StateInitializing)))
	app.UseSystem(System(func(cmd *Commands) {
		m.frames++
		cmd.Stop()
	}).InState(OnExecute(StateRunning)))
}

func TestAppBuilder_Stateless(t *testing.T) {
	app := NewAppBuilder().Build()

	if app.stateful != false {
		t.Errorf("Expected stateful to be false, got %v", app.stateful)
	}
	if app.initialState != 0 {
		t.Errorf("Expected initialState to be 0, got %v", app.initialState)
	}
	if app.finalState != 0 {
		t.Errorf("Expected finalState to be 0, got %v", app.finalState)
	}
}

func TestAppBuilder_UseStates(t *testing.T) {
	app := NewAppBuilder().
		UseStates(StateInitializing, StateShuttingDown).
		Build()

	if app.stateful != true {
		t.Errorf("Expected stateful to be true, got %v", app.stateful)
	}
	if app.initialState != StateInitializing {
		t.Errorf("Expected initialState to be %v, got %v", StateInitializing, app.initialState)
	}
	if app.finalState != StateShuttingDown {
		t.Errorf("Expected finalState to be %v, got %v", StateShuttingDown, app.finalState)
	}
	if len(app.systems[Update.Name]) != 3 {
		t.Errorf("Expected 3 states in the Update stage, got %v", len(app.systems[Update.Name]))
	}
}

func TestAppBuilder_Build_WithMultipleModules(t *testing.T) {
	module1 := &MockModule{}
	module2 := &MockModule{}

	builder := NewAppBuilder()
	builder.UseModule(module1)
	builder.UseModule(module2)

	if module1.installed {
		t.Errorf("Expected Install to wait for Build")
	}
	builder.Build()

	if len(builder.modules) != 2 {
		t.Errorf("Expected 2 modules, got %v", len(builder.modules))
	}
	if !module1.installed {
		t.Errorf("Expected Install to be called on the module 1, but it was not")
	}
	if !module2.installed {
		t.Errorf("Expected Install to be called on the module 2, but it was not")
	}
}

func TestAppBuilder_Run(t *testing.T) {
	mod := &stopModule{}
	app := NewAppBuilder().
		UseStates(StateInitializing, StateShuttingDown).
		UseModule(mod).
		Build()

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if mod.frames != 1 {
		t.Errorf("Expected 1 running frame, got %v", mod.frames)
	}
	if app.State() != StateShuttingDown {
		t.Errorf("Expected final state, got %v", app.State())
	}
}
