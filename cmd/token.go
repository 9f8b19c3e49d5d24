package cmd

import (
	"fmt"

	internalApp "github.com/callwise/flow-version-service/internal/app"
	pkgapp "github.com/callwise/flow-version-service/pkg/app"

	"github.com/spf13/cobra"
)

type tokenFlags struct {
	config string
	actor  string
}

func init() {
	tokenEnv := new(tokenFlags)

	// local tooling: mints an actor token signed with the configured key so
	// operators can call the API without the external identity resolver
	var tokenCommand = &cobra.Command{
		Use:   "token [-c config_file] -a actor",
		Short: "Generate an actor token for API access",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenEnv.config == "" {
				tokenEnv.config = "config/config.yaml"
			}
			cfg, _, err := internalApp.LoadConfig(tokenEnv.config)
			if err != nil {
				return err
			}

			tm := pkgapp.NewTokenManager(cfg.Security.AuthTokenKey)
			token, err := tm.GenerateToken(tokenEnv.actor, cfg.GetTokenExpiry())
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	rootCmd.AddCommand(tokenCommand)
	fs := tokenCommand.Flags()
	fs.StringVarP(&tokenEnv.config, "config", "c", "", "config file")
	fs.StringVarP(&tokenEnv.actor, "actor", "a", "admin", "actor name embedded in the token")
}
