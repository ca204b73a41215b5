// Package cli is the deepscan command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/deepscan/internal/domain/ai"
)

var (
	version = "dev"
	commit  = "none"
)

type globalFlags struct {
	configPath string
	provider   string
	model      string
}

type deps struct {
	// backend replaces the configured provider when set.
	backend ai.Backend
	flags   globalFlags
}

func newRootCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "deepscan",
		Short:         "AI code analysis: bugs, vulnerabilities, optimizations",
		Long:          "deepscan runs bug detection, a security scan and an optimization review over a piece of source code and synthesizes a summary report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultConfig := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	cmd.PersistentFlags().StringVar(&d.flags.configPath, "config", defaultConfig, "Path to the yaml config file")
	cmd.PersistentFlags().StringVar(&d.flags.provider, "provider", "", "AI provider override: openai, gemini or ollama")
	cmd.PersistentFlags().StringVar(&d.flags.model, "model", "", "Model override")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAnalyzeCmd(d))
	cmd.AddCommand(newServeCmd(d))
	cmd.AddCommand(newMCPCmd(d))
	cmd.AddCommand(newLanguagesCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd(&deps{})
}

// NewRootCmdWithBackend returns the root command with every generation call
// answered by backend.
func NewRootCmdWithBackend(backend ai.Backend) *cobra.Command {
	return newRootCmd(&deps{backend: backend})
}

func Execute() error {
	return newRootCmd(&deps{}).Execute()
}
