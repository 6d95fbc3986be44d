package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <status>",
		Short: "Move uma tarefa para outra coluna",
		Long: `Move a task to another column. status is one of BACKLOG,
READY_TO_DEVELOP, IN_PROGRESS, IN_REVIEW or DONE (case-insensitive).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("id de tarefa inválido %q", args[0])
			}
			status, err := model.ParseTaskStatus(args[1])
			if err != nil {
				return err
			}

			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.requireSession(); err != nil {
				return err
			}

			ctx := commandContext(cmd)
			task, err := e.client.GetTask(ctx, id)
			if err != nil {
				return err
			}
			from := board.CanonicalStatus(task.Status)
			if from == status {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d já está em %s\n", id, status.Label())
				return nil
			}

			updated, err := e.client.UpdateTaskStatus(ctx, id, status)
			if err != nil {
				return fmt.Errorf("moving task %d to %s: %w", id, status, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%d %s: %s → %s\n",
				id, updated.Title, from.Label(), board.CanonicalStatus(updated.Status).Label())
			return nil
		},
	}
}
