package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/stats"
	"github.com/nhle/taskboard/internal/ui"
)

func newProjectsCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Lista os projetos",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.requireSession(); err != nil {
				return err
			}

			ctx := commandContext(cmd)
			var projects []model.Project
			if search != "" {
				projects, err = e.client.SearchProjects(ctx, search)
			} else {
				projects, err = e.client.ListProjects(ctx)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOME\tSTATUS\tINÍCIO\tDURAÇÃO")
			for _, p := range projects {
				start := "-"
				if p.StartDate.Valid() {
					start = p.StartDate.Format(ui.DateLayout)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					p.ID, p.Name, p.Status.Label(), start, stats.ProjectDuration(p.StartDate, p.EndDate))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "busca por nome no servidor")
	return cmd
}
