package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/ai"
	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	appsync "github.com/nhle/taskboard/internal/sync"
	"github.com/nhle/taskboard/internal/theme"
)

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	theme.Use(e.cfg.Display.Theme)

	loader := board.NewLoader(e.client)
	layout := board.DefaultLayout()
	layout.Unmatched = e.cfg.Board.Unmatched
	layout.ProjectID = e.cfg.Board.ProjectID
	mover := board.NewMover(layout, e.client, loader)

	opts := []appsync.Option{
		appsync.WithInterval(time.Duration(e.cfg.Refresh.IntervalSec) * time.Second),
		appsync.WithBusy(func() bool {
			return mover.InFlight() || !e.session.IsAuthenticated()
		}),
	}
	cache, err := store.NewSQLiteStore(e.cfg.Cache.Path)
	if err != nil {
		log.WithError(err).Warn("snapshot cache disabled")
	} else {
		defer cache.Close()
		opts = append(opts, appsync.WithCache(cache, e.cfg.API.BaseURL))
	}
	refresher := appsync.New(loader, opts...)

	root := app.New(app.Deps{
		Client:    e.client,
		Session:   e.session,
		Loader:    loader,
		Mover:     mover,
		Refresher: refresher,
		Assistant: ai.New(e.client),

		ConfigPath: configPath,
		Config:     e.cfg,
	})
	defer root.Close()

	p := tea.NewProgram(root, tea.WithAltScreen())

	model.WatchConfig(configPath, func(cfg *model.AppConfig) {
		p.Send(app.ConfigChangedMsg{Config: cfg})
	}, func(err error) {
		log.WithError(err).Warn("ignoring configuration change")
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}
