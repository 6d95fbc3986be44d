package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/mockapi"
)

func newMockServerCmd() *cobra.Command {
	var (
		addr  string
		empty bool
	)
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Sobe uma API em memória para demonstrações",
		Long: `Serve an in-memory implementation of the task-tracker API.
Unless --empty is given it is seeded with the account demo / demo123.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.SetOutput(os.Stderr)
			srv := mockapi.New()
			if !empty {
				srv.Seed()
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-stop
				srv.Close()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "API em http://%s/api\n", addr)
			if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "endereço de escuta")
	cmd.Flags().BoolVar(&empty, "empty", false, "não cria os dados de demonstração")
	return cmd
}
