package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/giako888/trainbridge/pkgs/app"
	"github.com/spf13/cobra"
)

func NewRunCommand(app *app.BridgeApp) *cobra.Command {
	type Args struct {
		Source     string
		ZusiHost   string
		ZusiPort   uint16
		Tsw6Url    string
		Tsw6Key    string
		SerialPort string
		Profile    string
		SsePort    int
	}

	cmdArgs := Args{}
	command := &cobra.Command{
		Use:   "run",
		Short: "Run the bridge: read simulator telemetry, drive the MFA panel",
		Long: `Run the bridge against the selected simulator source.

Telemetry is polled/received at 5-10 Hz, evaluated against the active rule
profile and streamed to the Arduino panel over serial. The same lamp states
are served to tablets on the SSE panel server.

Examples:
  trainbridge run --source zusi3 --zusi-host 192.168.0.20
  trainbridge run --source tsw6 --tsw6-key-file ~/Documents/My\ Games/TrainSimWorld6/CommAPIKey.txt
  trainbridge run --source tsw6 --serial /dev/ttyACM0 --record`,
		RunE: func(command *cobra.Command, args []string) error {
			if err := app.Initialize(); err != nil {
				return err
			}

			// flags override the configuration file
			if cmdArgs.Source != "" {
				app.Config.Source = cmdArgs.Source
			}
			if cmdArgs.ZusiHost != "" {
				app.Config.Zusi.Host = cmdArgs.ZusiHost
			}
			if cmdArgs.ZusiPort != 0 {
				app.Config.Zusi.Port = cmdArgs.ZusiPort
			}
			if cmdArgs.Tsw6Url != "" {
				app.Config.Tsw6.Url = cmdArgs.Tsw6Url
			}
			if cmdArgs.Tsw6Key != "" {
				app.Config.Tsw6.KeyFile = cmdArgs.Tsw6Key
			}
			if cmdArgs.SerialPort != "" {
				app.Config.Serial.Port = cmdArgs.SerialPort
			}
			if cmdArgs.Profile != "" {
				app.Config.Profile = cmdArgs.Profile
			}
			if cmdArgs.SsePort != 0 {
				app.Config.Panel.Port = cmdArgs.SsePort
			}

			if app.Config.Source != "zusi3" && app.Config.Source != "tsw6" {
				return fmt.Errorf("invalid source %q (must be zusi3 or tsw6)", app.Config.Source)
			}

			ctx, stop := signal.NotifyContext(command.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.RunAction(ctx)
		},
	}

	command.Flags().BoolVarP(&app.Debug, "debug", "v", false, "Increase verbosity to the debug level")
	command.Flags().BoolVarP(&app.Record, "record", "r", false, "Record the run for EBuLa conversion")
	command.Flags().StringVarP(&cmdArgs.Source, "source", "s", "", "Simulator source: zusi3 or tsw6")
	command.Flags().StringVarP(&cmdArgs.ZusiHost, "zusi-host", "", "", "Zusi3 server host")
	command.Flags().Uint16VarP(&cmdArgs.ZusiPort, "zusi-port", "", 0, "Zusi3 server TCP port")
	command.Flags().StringVarP(&cmdArgs.Tsw6Url, "tsw6-url", "", "", "TSW6 HTTP API base URL")
	command.Flags().StringVarP(&cmdArgs.Tsw6Key, "tsw6-key-file", "", "", "Path to the TSW6 CommAPIKey file")
	command.Flags().StringVarP(&cmdArgs.SerialPort, "serial", "", "", "Serial port of the Arduino, or 'auto'")
	command.Flags().StringVarP(&cmdArgs.Profile, "profile", "p", "", "Rule profile ID to activate")
	command.Flags().IntVarP(&cmdArgs.SsePort, "sse-port", "", 0, "Panel server HTTP port")

	return command
}
