package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/giako888/trainbridge/pkgs/fault"
	"github.com/giako888/trainbridge/pkgs/rules"
	"github.com/giako888/trainbridge/pkgs/tsw6"
	"github.com/giako888/trainbridge/pkgs/zusi"
)

const (
	sourceBackoffStart = time.Second
	sourceBackoffMax   = 16 * time.Second

	bridgeClientName = "TrainBridge"
)

// runSource connects the configured simulator and blocks until ctx is
// cancelled or the source fails in a way that requires user action.
//
// Recovery policy: transport-closed and transport-timeout blank the state
// and reconnect with backoff; protocol violations and auth failures abort.
func (app *BridgeApp) runSource(ctx context.Context, sup *Supervisor, profile *rules.Profile) error {
	switch app.Config.Source {
	case "zusi3":
		return app.runZusiSource(ctx, sup)
	case "tsw6":
		return app.runTswSource(ctx, sup, profile)
	}
	return fault.New(fault.BadProfile, "unknown source %q", app.Config.Source)
}

func (app *BridgeApp) runZusiSource(ctx context.Context, sup *Supervisor) error {
	backoff := sourceBackoffStart
	firstAttempt := true

	for {
		client := zusi.NewClient(app.Config.Zusi.Host, app.Config.Zusi.Port)
		client.OnStateUpdate = sup.OnStateUpdate
		sup.onProfileSwap = nil // the Zusi3 client has no poll cache

		err := client.Connect(bridgeClientName, nil)
		if err == nil {
			backoff = sourceBackoffStart
			firstAttempt = false
			err = client.Run(ctx)
			if err == nil {
				// cancelled from above
				return nil
			}
		} else if firstAttempt {
			// never connected at all: surface the failure to the CLI
			return err
		}

		sup.reportError(err)
		if fault.Is(err, fault.ProtocolViolation) {
			// a broken peer will not get better by retrying
			return err
		}

		sup.BlankState()
		logrus.Infof("Zusi3 source down, reconnecting in %s", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > sourceBackoffMax {
			backoff = sourceBackoffMax
		}
	}
}

func (app *BridgeApp) runTswSource(ctx context.Context, sup *Supervisor, profile *rules.Profile) error {
	client, err := tsw6.NewClient(app.Config.Tsw6.Url, app.Config.Tsw6.KeyFile)
	if err != nil {
		return err
	}

	interval := time.Duration(profile.PollIntervalMs) * time.Millisecond
	poller := tsw6.NewPoller(client, interval, tsw6.WellKnownMappings())
	poller.OnStateUpdate = sup.OnStateUpdate
	if sup.metrics != nil {
		poller.OnPollError = func(string, error) { sup.metrics.PollErrors.Inc() }
	}
	poller.OnClassDetected = func(objectClass, profileID string) {
		if profileID != "" && profileID != profile.ID {
			_, _ = app.P.Printf("Detected train %s - consider profile %q\n", objectClass, profileID)
		}
	}
	sup.onProfileSwap = poller.ResetCache

	backoff := sourceBackoffStart
	firstAttempt := true

	for {
		// a single probe decides between "simulator not running" and "go"
		_, err := client.ListNodes("")
		if err == nil {
			if !firstAttempt {
				logrus.Info("TSW6 source back, resuming polling")
			}
			firstAttempt = false
			backoff = sourceBackoffStart
			poller.ResetCache()

			err = poller.Run(ctx)
			if err == nil {
				// cancelled from above
				return nil
			}
		} else if firstAttempt {
			// never connected at all: surface the failure to the CLI
			if !fault.Is(err, fault.AuthFailed) {
				sup.reportError(err)
			}
			return err
		}

		sup.reportError(err)
		if fault.Is(err, fault.AuthFailed) {
			// a rejected key will not get better by retrying
			return err
		}

		sup.BlankState()
		logrus.Infof("TSW6 source down, reconnecting in %s", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > sourceBackoffMax {
			backoff = sourceBackoffMax
		}
	}
}
