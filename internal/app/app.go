package app

import (
	"errors"

	"github.com/spf13/cobra"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitPartial = 2
)

// ExitError carries the process exit code for a failed or partial run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

var (
	rootCmd = &cobra.Command{
		Use:           "ghcpi",
		Short:         "Create an issue and file it on a GitHub project",
		Long:          "ghcpi creates a GitHub issue from a markdown file with front matter, adds it to a project and sets its Status, Iteration, Size, Difficulty and Type fields.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	verbose bool
	token   string

	createHandler     = handleCreate
	previewHandler    = handlePreview
	iterationHandler  = handleIteration
	configShowHandler = handleConfigShow
	configSetHandler  = handleConfigSet
	configValHandler  = handleConfigValidate
	configPathHandler = handleConfigPath
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "GitHub token (env: GH_TOKEN)")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(iterationCmd)
	rootCmd.AddCommand(configCmd)
}

var createOpts = runOptions{}

var createCmd = &cobra.Command{
	Use:   "create [issue-file]",
	Short: "Create the issue, add it to the project and set its fields",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := createOpts
		if len(args) > 0 {
			opts.File = args[0]
		}
		return createHandler(opts)
	},
}

var previewOpts = runOptions{}

var previewCmd = &cobra.Command{
	Use:   "preview [issue-file]",
	Short: "Resolve the title and field values without changing anything",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := previewOpts
		if len(args) > 0 {
			opts.File = args[0]
		}
		return previewHandler(opts)
	},
}

var (
	iterationInception string
	iterationAt        string
)

var iterationCmd = &cobra.Command{
	Use:   "iteration",
	Short: "Show the current and next iteration windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		if iterationInception == "" {
			return errors.New("--inception is required")
		}
		return iterationHandler(iterationInception, iterationAt)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowHandler()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetHandler(args[0], args[1])
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the token against the GitHub API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configValHandler()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config path",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configPathHandler()
	},
}

func init() {
	for _, c := range []struct {
		cmd  *cobra.Command
		opts *runOptions
	}{{createCmd, &createOpts}, {previewCmd, &previewOpts}} {
		c.cmd.Flags().StringVarP(&c.opts.File, "file", "f", "", "Issue file (env: GH_CPI_ISSUE_FILE)")
		c.cmd.Flags().StringVar(&c.opts.Fallback, "iteration-fallback", "", "When no iteration covers the target week: strict or nearest")
	}
	createCmd.Flags().BoolVar(&createOpts.Open, "open", false, "Open the created issue in the browser")

	iterationCmd.Flags().StringVar(&iterationInception, "inception", "", "Start date of the first iteration (YYYY-MM-DD)")
	iterationCmd.Flags().StringVar(&iterationAt, "at", "", "Date to compute from (YYYY-MM-DD, default today)")

	configCmd.AddCommand(configShowCmd, configSetCmd, configValidateCmd, configPathCmd)
}
