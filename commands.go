package orrery

import "fmt"

type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

// Stop moves the app to its final state at the end of the current frame.
func (cmd *Commands) Stop() *Commands {
	cmd.app.stop()
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// Fail records a fatal error and stops the app. Run returns the first
// recorded error once shutdown completes.
func (cmd *Commands) Fail(err error) *Commands {
	if err == nil {
		return cmd
	}
	if cmd.app.err == nil {
		cmd.app.err = err
	} else {
		cmd.app.Logger().Errorf("%v", err)
	}
	cmd.app.stop()
	return cmd
}

// Failf is Fail with fmt.Errorf formatting.
func (cmd *Commands) Failf(format string, args ...any) *Commands {
	return cmd.Fail(fmt.Errorf(format, args...))
}

// Defer registers fn to run when Run returns. Deferred functions run in
// reverse order of registration.
func (cmd *Commands) Defer(fn func()) *Commands {
	cmd.app.cleanups = append(cmd.app.cleanups, fn)
	return cmd
}
