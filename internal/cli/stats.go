package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/stats"
)

func newStatsCmd() *cobra.Command {
	var (
		projectID int64
		offline   bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Mostra os totais do dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			snap, err := e.snapshot(commandContext(cmd), offline)
			if err != nil {
				return err
			}
			s := stats.Compute(snap.Tasks, stats.Options{
				ProjectID:     projectID,
				CurrentUserID: e.session.UserID(),
				Now:           time.Now(),
			})
			writeStats(cmd.OutOrStdout(), s, stats.ProjectSummary(snap.Projects))
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "limita os totais a este projeto")
	cmd.Flags().BoolVar(&offline, "offline", false, "usa o último snapshot em cache")
	return cmd
}

func writeStats(w io.Writer, s stats.Summary, p stats.ProjectCounts) {
	fmt.Fprintf(w, "Tarefas:       %d\n", s.Total)
	fmt.Fprintf(w, "Concluídas:    %d (%d%%)\n", s.Completed, s.CompletionPercentage())
	fmt.Fprintf(w, "Em andamento:  %d\n", s.InProgress)
	fmt.Fprintf(w, "Pendentes:     %d\n", s.Pending)
	fmt.Fprintf(w, "Atrasadas:     %d\n", s.Overdue)
	fmt.Fprintf(w, "Minhas:        %d\n", s.Mine)
	fmt.Fprintf(w, "Projetos:      %d (%d ativos)\n", p.Total, p.Active)
}
