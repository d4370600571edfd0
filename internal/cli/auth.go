package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/provider"
	"github.com/florencebot/internal/service"

	"github.com/spf13/cobra"
)

// localSession 恢复本地持久化的令牌会话
func localSession(ctx context.Context, container *provider.Container) (*service.TokenSession, error) {
	session := service.NewTokenSession(service.TokenSessionOptions{
		Store:           service.NamespacedStore(container.GuestStore, constants.GuestIDLocal),
		AccessTokenKey:  container.Config.Auth.AccessTokenKey,
		RefreshTokenKey: container.Config.Auth.RefreshTokenKey,
		Secret:          container.Config.Auth.JWTSecret,
		Leeway:          container.AuthLeeway(),
	})
	if err := session.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return session, nil
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var accessToken, refreshToken string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store access and refresh tokens for the remote cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(accessToken) == "" {
				return fmt.Errorf("--access-token is required")
			}
			container, err := opts.Container()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			session, err := localSession(ctx, container)
			if err != nil {
				return err
			}
			if err := session.SetTokens(ctx, accessToken, refreshToken); err != nil {
				return fmt.Errorf("save tokens: %w", err)
			}
			if opts.Format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]bool{"authenticated": session.IsAuthenticated()})
			}
			if session.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "tokens saved, but the access token is expired or invalid")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&accessToken, "access-token", "", "access token (JWT)")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "refresh token")
	return cmd
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := opts.Container()
			if err != nil {
				return err
			}
			session, err := localSession(cmd.Context(), container)
			if err != nil {
				return err
			}
			if err := session.ClearTokens(cmd.Context()); err != nil {
				return fmt.Errorf("clear tokens: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}
