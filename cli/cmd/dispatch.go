package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/cli/config"
	"github.com/pithecene-io/amlctl/cli/render"
	"github.com/pithecene-io/amlctl/dispatch"
	"github.com/pithecene-io/amlctl/types"
)

// CommandResponse is the rendered result of a dispatched command.
type CommandResponse struct {
	Command    string `json:"command" yaml:"command"`
	Eq         int32  `json:"eq" yaml:"eq"`
	Slot       int32  `json:"slot" yaml:"slot"`
	VSN        string `json:"vsn,omitempty" yaml:"vsn,omitempty"`
	RequestID  string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Wait       string `json:"wait" yaml:"wait"`
	Outcome    string `json:"outcome" yaml:"outcome"`
	Code       int32  `json:"code" yaml:"code"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMs int64  `json:"duration_ms" yaml:"duration_ms"`
}

func newCommandResponse(cmd *types.Command, wait dispatch.WaitMode, res dispatch.Result, err error) CommandResponse {
	resp := CommandResponse{
		Command:    cmd.Cmd.String(),
		Eq:         cmd.Eq,
		Slot:       cmd.Slot,
		VSN:        cmd.VSNString(),
		Wait:       wait.String(),
		Outcome:    dispatch.Outcome(wait, err),
		Code:       res.Completion.Code,
		Message:    res.Completion.Message,
		DurationMs: res.Duration.Milliseconds(),
	}
	if !res.ID.IsSentinel() {
		resp.RequestID = res.ID.String()
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// commandBuilder turns a command's flags into a Command and the device
// class whose timeout applies when --wait is not given.
type commandBuilder func(c *cli.Context) (*types.Command, types.DeviceClass, error)

// dispatchAction returns an action that builds a command, sends it and
// renders the result. SIGINT and SIGTERM interrupt the wait.
func dispatchAction(build commandBuilder) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return usageError(err)
		}

		cmd, class, err := build(c)
		if err != nil {
			return usageError(err)
		}

		e, err := newEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()

		wait, err := resolveWait(c, e.cfg, class)
		if err != nil {
			return usageError(err)
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, sendErr := e.dispatcher().Send(ctx, cmd, wait)
		defer e.printMetrics(c, r.Format())

		if sendErr == nil && c.Bool("quiet") {
			return nil
		}
		if err := r.Render(newCommandResponse(cmd, wait, res, sendErr)); err != nil {
			return err
		}
		return exitError(sendErr)
	}
}

// resolveWait picks the wait mode: --wait, then the config file, then the
// default for class.
func resolveWait(c *cli.Context, cfg *config.Config, class types.DeviceClass) (dispatch.WaitMode, error) {
	s := resolveString(c, "wait", configVal(cfg, func(c *config.Config) string { return c.Wait }))
	if s == "" {
		return dispatch.DefaultWait(class), nil
	}
	w, err := dispatch.ParseWaitMode(s)
	if err != nil {
		return dispatch.WaitMode{}, fmt.Errorf("--wait: %w", err)
	}
	return w, nil
}
