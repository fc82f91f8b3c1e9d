package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/amlctl/cli/render"
	"github.com/pithecene-io/amlctl/dispatch"
	"github.com/pithecene-io/amlctl/types"
)

// TimeoutResponse reports the default wait for a device class.
type TimeoutResponse struct {
	Class          string `json:"class" yaml:"class"`
	TimeoutSeconds int64  `json:"timeout_seconds" yaml:"timeout_seconds"`
	Wait           string `json:"wait" yaml:"wait"`
}

// TimeoutCommand prints the default completion timeout for a device class
// or media type.
func TimeoutCommand() *cli.Command {
	return &cli.Command{
		Name:      "timeout",
		Usage:     "Show the default completion timeout for a device class or media type",
		ArgsUsage: "<class|media>",
		Flags:     ReadOnlyFlags(),
		Action:    timeoutAction,
	}
}

func timeoutAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return usageError(err)
	}
	if c.Bool("tui") {
		return usageError(errors.New("--tui is not supported for timeout command"))
	}
	if c.NArg() != 1 {
		return usageError(errors.New("timeout needs exactly one argument: a device class (tape, optical, ...) or media type (li, od, ...)"))
	}

	class, err := ResolveClass(c.Args().First())
	if err != nil {
		return usageError(err)
	}
	return r.Render(TimeoutResponse{
		Class:          class.String(),
		TimeoutSeconds: int64(dispatch.DefaultTimeout(class).Seconds()),
		Wait:           dispatch.DefaultWait(class).String(),
	})
}

// ResolveClass accepts a device class name or a media type.
func ResolveClass(s string) (types.DeviceClass, error) {
	if class, err := types.ParseDeviceClass(s); err == nil {
		return class, nil
	}
	media, err := types.ParseMedia(s)
	if err != nil || media == 0 {
		return 0, fmt.Errorf("unknown device class or media type %q", s)
	}
	return types.MediaClass(media), nil
}
