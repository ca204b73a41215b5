package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
	"github.com/bryanwahyu/deepscan/internal/infra/mcp"
	"github.com/bryanwahyu/deepscan/internal/infra/tui"
)

// ErrAnalysisFailed is printed in place of any failure detail.
var ErrAnalysisFailed = errors.New("analysis failed, try again")

var extLanguages = map[string]string{
	".js":   "javascript",
	".mjs":  "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".py":   "python",
	".java": "java",
	".cs":   "csharp",
	".go":   "go",
	".rb":   "ruby",
	".php":  "php",
	".html": "html",
	".css":  "css",
}

func newAnalyzeCmd(d *deps) *cobra.Command {
	var (
		language string
		jsonOut  bool
		markdown bool
		style    string
		width    int
	)

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Analyze a source file",
		Long:  "Analyze a source file (or stdin when the argument is - or missing) and print bugs, vulnerabilities, optimization suggestions and a summary report.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			code, err := readSource(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			if strings.TrimSpace(code) == "" {
				return analysis.ErrEmptyCode
			}
			if language == "" {
				language = extLanguages[strings.ToLower(filepath.Ext(path))]
			}

			app, err := d.build(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			a, err := app.Service.Analyze(cmd.Context(), mcp.LocalTenant, code, language)
			if err != nil {
				app.Logger.Warn("analysis failed", zap.Error(err))
				return ErrAnalysisFailed
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(a.Result)
			}
			rendered, err := tui.RenderResult(a.Result, tui.Options{Markdown: markdown, Style: style, Width: width})
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Source language (detected from the file extension, defaults to javascript)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the raw analysis result as JSON")
	cmd.Flags().BoolVar(&markdown, "markdown", true, "Render the summary report as markdown")
	cmd.Flags().StringVar(&style, "style", "auto", "Markdown style: auto, dark, light, notty")
	cmd.Flags().IntVar(&width, "width", 100, "Word wrap width of the report")

	return cmd
}

func readSource(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}
