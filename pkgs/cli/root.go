package cli

import (
	"errors"

	"github.com/giako888/trainbridge/pkgs/app"
	"github.com/spf13/cobra"
)

func NewRootCommand(app *app.BridgeApp) *cobra.Command {
	command := &cobra.Command{
		Use:   "trainbridge",
		Short: "Train simulator to Arduino MFA panel bridge",
		RunE: func(command *cobra.Command, args []string) error {
			return errors.New("please select a command")
		},
	}

	command.AddCommand(NewRunCommand(app))
	command.AddCommand(NewConvertCommand(app))
	command.AddCommand(NewDetectSerialCommand(app))

	return command
}
