package commands

import (
	"github.com/spf13/cobra"

	"pet-matchmaker/internal/common/config"
)

var configPath string

// NewRootCmd builds the matchmaker command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchmaker",
		Short: "AI pet matchmaking service",
		Long: `matchmaker interviews adopters about their lifestyle and asks a generative
model to rank the adoptable pets that fit them best.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: configs/config.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewReindexCmd())
	cmd.AddCommand(NewScriptCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}
