package cli

import (
	"github.com/giako888/trainbridge/pkgs/app"
	"github.com/spf13/cobra"
)

func NewConvertCommand(app *app.BridgeApp) *cobra.Command {
	type Args struct {
		Out  string
		Name string
	}

	cmdArgs := Args{}
	command := &cobra.Command{
		Use:   "convert RECORDING",
		Short: "Convert a recorded run into an .ebula.json timetable",
		Long: `Convert a raw route recording (produced by 'run --record') into a
structured EBuLa timetable document.

Stations, speed-limit changes, gradient changes and kilometric waypoints are
derived from the recorded GPS track. Station names are left as "Station N"
placeholders for manual editing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			return app.ConvertAction(args[0], cmdArgs.Out, cmdArgs.Name)
		},
	}

	command.Flags().BoolVarP(&app.Debug, "debug", "v", false, "Increase verbosity to the debug level")
	command.Flags().StringVarP(&cmdArgs.Out, "out", "o", "", "Output file (default: ebula directory)")
	command.Flags().StringVarP(&cmdArgs.Name, "name", "n", "", "Route name (default: recording name)")

	return command
}

func NewDetectSerialCommand(app *app.BridgeApp) *cobra.Command {
	command := &cobra.Command{
		Use:   "detect-serial",
		Short: "Print the serial port of the connected Arduino Leonardo",
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}
			return app.DetectSerialAction()
		},
	}

	command.Flags().BoolVarP(&app.Debug, "debug", "v", false, "Increase verbosity to the debug level")

	return command
}
