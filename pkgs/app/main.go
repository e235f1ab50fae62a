package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/giako888/trainbridge/pkgs/arduino"
	"github.com/giako888/trainbridge/pkgs/config"
	"github.com/giako888/trainbridge/pkgs/ebula"
	"github.com/giako888/trainbridge/pkgs/output"
	"github.com/giako888/trainbridge/pkgs/panel"
	"github.com/giako888/trainbridge/pkgs/rules"
)

//
// Actions - a controller level
// prints are allowed only via Printer interface
//

type BridgeApp struct {
	Config *config.Configuration

	// runtime parameters
	Debug  bool
	Record bool
	P      output.Printer
}

// Initialize is running after parsing the arguments, so we know how to configure the app
func (app *BridgeApp) Initialize() error {
	// logging
	if app.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// configuration
	logrus.Debug("Reading configuration files")
	cfg, cfgErr := config.NewConfig()
	app.Config = cfg
	if cfgErr != nil {
		return fmt.Errorf("cannot initialize app: %s", cfgErr)
	}
	return nil
}

// activeProfile resolves the startup profile from config, falling back to
// the source's default.
func (app *BridgeApp) activeProfile() (*rules.Profile, error) {
	id := app.Config.Profile
	if id == "" {
		id = app.Config.Source + "-default"
	}
	profile, err := rules.FindProfile(rules.BuiltInProfiles(), id)
	if err != nil {
		return nil, err
	}
	if rejected := profile.Sanitize(); len(rejected) > 0 {
		logrus.Warnf("profile %s: %d rule(s) rejected", profile.ID, len(rejected))
	}
	if len(profile.Rules) == 0 {
		return nil, fmt.Errorf("profile %s has no valid rules", profile.ID)
	}
	return profile, nil
}

// RunAction starts the full bridge: simulator source, rule engine, Arduino
// transport, panel server and (optionally) the route recorder. It blocks
// until ctx is cancelled or the source fails fatally.
func (app *BridgeApp) RunAction(ctx context.Context) error {
	profile, err := app.activeProfile()
	if err != nil {
		return err
	}

	metrics := panel.NewMetrics()
	broadcaster := panel.NewBroadcaster()

	transport := arduino.NewTransport(app.Config.Serial.Port)
	transport.OnReconnect = func() { metrics.SerialReconnects.Inc() }
	if err := transport.Open(); err != nil {
		return err
	}
	broadcaster.OnApply = transport.Apply

	recorder := ebula.NewRecorder(0)
	sup := NewSupervisor(profile, broadcaster, transport, metrics, recorder)
	server := panel.NewServer(app.Config.Panel.Port, broadcaster, metrics)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	spawn := func(f func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}
	spawn(func() { transport.Run(runCtx) })
	spawn(func() { sup.BlinkLoop(runCtx) })
	spawn(func() { recorder.Run(runCtx) })
	spawn(func() {
		if err := server.Run(runCtx); err != nil {
			sup.reportError(err)
			logrus.Errorf("panel server: %s", err)
		}
	})

	if app.Record {
		recorder.Start(time.Now().Format("run-2006-01-02-1504"))
	}

	sourceErr := app.runSource(runCtx, sup, profile)

	// orderly shutdown: stop the tasks, extinguish the panel, close the port
	cancel()
	transport.Close()
	waitTimeout(&wg, 2*time.Second)

	if app.Record {
		if rec := recorder.Stop(); rec != nil {
			if saveErr := app.saveRecording(rec); saveErr != nil {
				logrus.Errorf("cannot save recording: %s", saveErr)
			}
		}
	}

	return sourceErr
}

func (app *BridgeApp) saveRecording(rec *ebula.Recording) error {
	dir, err := ebula.DefaultDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "recordings", rec.Name+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create recordings directory: %s", err)
	}
	if err := ebula.SaveRecording(rec, path); err != nil {
		return err
	}
	_, _ = app.P.Printf("Recording saved to %s\n", path)
	return nil
}

// ConvertAction turns a saved recording into an .ebula.json timetable.
func (app *BridgeApp) ConvertAction(recordingPath, outPath, routeName string) error {
	rec, err := ebula.LoadRecording(recordingPath)
	if err != nil {
		return err
	}
	if routeName == "" {
		routeName = rec.Name
	}

	timetable := ebula.Convert(rec, routeName)

	if outPath == "" {
		dir, err := ebula.DefaultDir()
		if err != nil {
			return err
		}
		outPath = filepath.Join(dir, routeName+ebula.FileExtension)
	}
	if err := timetable.Save(outPath); err != nil {
		return err
	}

	_, _ = app.P.Printf("Timetable written to %s\n", outPath)
	_, _ = app.P.Printf("Route length: %.1f km, %d entries\n",
		timetable.RouteInfo.DistanceKm, len(timetable.Entries))
	return nil
}

// DetectSerialAction probes for a connected Leonardo and prints its port.
func (app *BridgeApp) DetectSerialAction() error {
	port, err := arduino.DetectPort()
	if err != nil {
		return err
	}
	_, _ = app.P.Printf("%s\n", port)
	return nil
}

// waitTimeout waits for the group, giving up after d.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		logrus.Warn("background tasks did not exit in time")
	}
}
