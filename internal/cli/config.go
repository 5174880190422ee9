package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/claimdesk/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage claimdesk configuration",
	Long: `Manage the .claimdesk/config.yaml file.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CLAIMDESK_*, e.g. CLAIMDESK_API_PORT)
3. Config file (.claimdesk/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(false)
		if err != nil {
			return err
		}
		defer rt.Close()

		path := rt.cfg.ProjectConfigPath()
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", path)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
		}
		data, err := rt.cfg.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .claimdesk/config.yaml with defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := workingDir()
		if err != nil {
			return err
		}
		path := filepath.Join(dir, config.DataDir, "config.yaml")
		_, statErr := os.Stat(path)
		existed := statErr == nil
		if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
			return fmt.Errorf("check %s: %w", path, statErr)
		}
		if err := config.InitDataDir(dir); err != nil {
			return err
		}
		if existed {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at %s\n", path)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
}
