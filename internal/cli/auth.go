package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Autentica e guarda o token no keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if username == "" || password == "" {
				if err := promptCredentials(&username, &password); err != nil {
					return err
				}
			}

			resp, err := e.client.SignIn(commandContext(cmd), strings.TrimSpace(username), password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if err := e.session.SetToken(resp.AccessToken); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Autenticado como %s\n", resp.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "nome de usuário")
	cmd.Flags().StringVarP(&password, "password", "p", "", "senha (pedida interativamente se omitida)")
	return cmd
}

func promptCredentials(username, password *string) error {
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Usuário").Value(username).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("informe o usuário")
				}
				return nil
			}),
		huh.NewInput().Title("Senha").EchoMode(huh.EchoModePassword).Value(password),
	))
	return form.Run()
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove o token guardado",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			e.session.Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "Sessão encerrada")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Mostra o usuário autenticado",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.requireSession(); err != nil {
				return err
			}

			u, err := e.client.CurrentUser(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) <%s>\n", u.DisplayName(), u.Username, u.Email)
			return nil
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
