package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/ui"
)

func newBoardCmd() *cobra.Command {
	var (
		projectID int64
		format    string
		offline   bool
	)
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Imprime o quadro Kanban",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "yaml" {
				return fmt.Errorf("formato inválido %q: use text ou yaml", format)
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			snap, err := e.snapshot(commandContext(cmd), offline)
			if err != nil {
				return err
			}

			layout := board.DefaultLayout()
			layout.Unmatched = e.cfg.Board.Unmatched
			layout.ProjectID = projectID
			b := layout.Build(snap.Tasks)

			if format == "yaml" {
				return writeBoardYAML(cmd.OutOrStdout(), b)
			}
			return writeBoardText(cmd.OutOrStdout(), b)
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "mostra apenas as tarefas deste projeto")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "formato de saída: text ou yaml")
	cmd.Flags().BoolVar(&offline, "offline", false, "usa o último snapshot em cache")
	return cmd
}

// snapshot fetches a complete snapshot, or reads the cached one when
// offline is set.
func (e *env) snapshot(ctx context.Context, offline bool) (board.Snapshot, error) {
	if offline {
		return e.cachedSnapshot(ctx)
	}
	if err := e.requireSession(); err != nil {
		return board.Snapshot{}, err
	}
	return board.NewLoader(e.client).LoadAll(ctx)
}

func (e *env) cachedSnapshot(ctx context.Context) (board.Snapshot, error) {
	cache, err := store.NewSQLiteStore(e.cfg.Cache.Path)
	if err != nil {
		return board.Snapshot{}, err
	}
	defer cache.Close()

	snap, from, err := cache.LoadSnapshot(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		return board.Snapshot{}, errors.New("nenhum snapshot em cache: abra o quadro online primeiro")
	}
	if err != nil {
		return board.Snapshot{}, err
	}
	if from != e.cfg.API.BaseURL {
		log.WithFields(log.Fields{"cached": from, "configured": e.cfg.API.BaseURL}).
			Warn("cached snapshot comes from another API")
	}
	return snap, nil
}

type yamlColumn struct {
	Key   model.TaskStatus `yaml:"key"`
	Title string           `yaml:"title"`
	Tasks []yamlCard       `yaml:"tasks"`
}

type yamlCard struct {
	ID       int64              `yaml:"id"`
	Title    string             `yaml:"title"`
	Priority model.TaskPriority `yaml:"priority"`
	Project  int64              `yaml:"project,omitempty"`
	Assignee int64              `yaml:"assignee,omitempty"`
	DueDate  *model.Timestamp   `yaml:"due_date,omitempty"`
}

func writeBoardYAML(w io.Writer, b board.Board) error {
	cols := make([]yamlColumn, 0, len(b.Columns))
	for _, col := range b.Columns {
		yc := yamlColumn{Key: col.Key, Title: col.Title, Tasks: []yamlCard{}}
		for _, t := range col.Tasks {
			yc.Tasks = append(yc.Tasks, yamlCard{
				ID:       t.ID,
				Title:    t.Title,
				Priority: t.Priority,
				Project:  t.ProjectID(),
				Assignee: t.AssignedUserID(),
				DueDate:  t.DueDate,
			})
		}
		cols = append(cols, yc)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(map[string]any{"columns": cols, "dropped": len(b.Dropped)})
}

func writeBoardText(w io.Writer, b board.Board) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, col := range b.Columns {
		fmt.Fprintf(tw, "%s (%d)\n", strings.ToUpper(col.Title), len(col.Tasks))
		for _, t := range col.Tasks {
			due := ""
			if t.HasDueDate() {
				due = "até " + t.DueDate.Format(ui.DateLayout)
			}
			fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority.Label(), due)
		}
	}
	if len(b.Dropped) > 0 {
		fmt.Fprintf(tw, "\n%d tarefa(s) com status desconhecido ocultada(s)\n", len(b.Dropped))
	}
	return tw.Flush()
}
