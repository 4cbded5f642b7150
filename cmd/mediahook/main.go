package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mediahook/mediahook/internal/auth"
	"github.com/mediahook/mediahook/internal/config"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "mediahook",
		Short:         "WhatsApp webhook media gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}

	var tokenSubject string
	var tokenExpires time.Duration
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for the media API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Admin.JWTSecret == "" {
				return fmt.Errorf("admin.jwt_secret is not configured")
			}
			token, err := auth.IssueAdminToken(cfg.Admin.JWTSecret, tokenSubject, tokenExpires)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "token subject")
	tokenCmd.Flags().DurationVar(&tokenExpires, "expires", 24*time.Hour, "token lifetime")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	root.AddCommand(serveCmd, tokenCmd, versionCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
