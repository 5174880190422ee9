package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kingrea/claimdesk/internal/tui"
)

var (
	projectDir string
	verbose    bool
)

// rootCmd launches the dashboard when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "claimdesk",
	Short: "claimdesk - insurance claims review dashboard",
	Long: `claimdesk is a terminal dashboard for reviewing AI-processed insurance claims.

Customers upload and track claims, adjusters review escalated claims and the
corrections suggested by the pipeline, and admins watch the system log and
analytics. Claim data comes from a YAML fixture; nothing is written back.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&projectDir, "dir", "C", "", "project directory holding .claimdesk/ (default: current directory)")
	flags.String("fixture", "", "claim fixture YAML (default: built-in demo data)")
	flags.String("log-level", "", "diagnostics log level: debug, info, warn, error")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("fixture", flags.Lookup("fixture"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(versionCmd, serveCmd, claimsCmd, configCmd)
}

// initConfig wires environment variables. CLAIMDESK_API_PORT maps to api.port.
func initConfig() {
	viper.SetEnvPrefix("CLAIMDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(true)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := tui.NewApp(rt.cfg, rt.repo,
		tui.WithLogbook(rt.logbook),
		tui.WithLogger(rt.logger.Component("tui")),
	)
	rt.logger.Info("starting tui", "dir", rt.cfg.ProjectDir)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func workingDir() (string, error) {
	if projectDir != "" {
		return projectDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return cwd, nil
}
