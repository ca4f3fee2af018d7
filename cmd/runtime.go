package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tabletools/core/cli"
	"github.com/tabletools/core/config"
	"github.com/tabletools/core/logging"
	"github.com/tabletools/core/pkg/api"
	"github.com/tabletools/core/pkg/events"
	"github.com/tabletools/core/pkg/identity"
	"github.com/tabletools/core/pkg/notify"
	"github.com/tabletools/core/pkg/realtime"
)

// stack bundles the fully wired client: config, event router, realtime
// connection, REST client and notification store. Commands that talk to the
// backend build one of these and tear it down on exit.
type stack struct {
	cfg    *config.Config
	router *events.Router
	conn   *realtime.Conn
	client *api.Client
	store  *notify.Store
	logger *logrus.Entry
}

// buildStack loads config and wires the notification client. sound controls
// whether the terminal-bell alerter is attached (TUI commands disable it and
// render urgency visually instead).
func buildStack(cmd *cobra.Command, sound bool) (*stack, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireBackend(); err != nil {
		return nil, err
	}

	logger := logging.NewLogger("table")

	mute, err := events.NewMuteFilter(cfg.Notifications.Mute)
	if err != nil {
		return nil, err
	}

	router := events.NewRouter()
	conn := realtime.New(cfg.Backend, router, realtime.Options{
		Identity: identity.Cached,
		Mute:     mute,
	})
	client := api.NewClient(cfg.Backend)

	var alerter notify.Alerter
	if sound && cfg.SoundEnabled() {
		alerter = notify.BellAlerter{Out: os.Stdout}
	}

	store := notify.NewStore(notify.Options{
		Capacity:      cfg.Notifications.Capacity,
		AutoReadDelay: cfg.Notifications.AutoReadDelay.Std(),
		Persister:     client,
		Alerter:       alerter,
	})
	notify.Bind(router, store)

	return &stack{
		cfg:    cfg,
		router: router,
		conn:   conn,
		client: client,
		store:  store,
		logger: logger,
	}, nil
}

func (s *stack) close() {
	s.conn.Disconnect()
	s.store.Close()
}
