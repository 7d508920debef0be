// Command jin is the CLI surface over the layered configuration
// version control engine in internal/jin. It is a thin adapter: every
// subcommand parses flags, calls into an internal/jin/* package, and
// renders the result as text. No merge, transaction, or layer logic
// lives here.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jinvcs/jin/internal/jin/config"
	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/jinlog"
	"github.com/jinvcs/jin/internal/jin/objstore"
)

var (
	storeRoot  string
	projectDir string
	logFile    string
	logLevel   string

	store  *objstore.Store
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "jin",
	Short: "Layered configuration version control",
	Long: `jin tracks configuration files across a precedence lattice of
layers (global, mode, scope, project, and workspace-local) so a single
project can compose settings from several independently-maintained
sources, merge them deterministically, and pause for manual resolution
only when two layers genuinely conflict.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		root := storeRoot
		if root == "" {
			r, err := config.Root()
			if err != nil {
				return err
			}
			root = r
		}
		store = objstore.Open(root)

		level := slog.LevelInfo
		if logLevel != "" {
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return jinerr.Newf(jinerr.KindConfig, "invalid --log-level %q", logLevel)
			}
		}
		logger = jinlog.New(jinlog.Options{Level: level, FilePath: logFile})

		if projectDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return jinerr.Wrap(jinerr.KindIO, "resolve working directory", err)
			}
			projectDir = wd
		}
		return nil
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core:"},
		&cobra.Group{ID: "layers", Title: "Layer lifecycle:"},
		&cobra.Group{ID: "maint", Title: "Maintenance:"},
	)

	rootCmd.PersistentFlags().StringVar(&storeRoot, "store", "", "store root directory (default $JIN_DIR or ~/.jin)")
	rootCmd.PersistentFlags().StringVar(&projectDir, "project-dir", "", "project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "route logs through a rotating file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	viper.SetEnvPrefix("jin")
	viper.AutomaticEnv()
	viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
}

func exitWith(err error) {
	if err == nil {
		return
	}
	var je *jinerr.Error
	msg := err.Error()
	if as, ok := err.(*jinerr.Error); ok {
		je = as
	}
	fmt.Fprintf(os.Stderr, "%s\n", msg)
	if je != nil && je.Hint != "" {
		fmt.Fprintf(os.Stderr, "hint: %s\n", je.Hint)
	}
	os.Exit(jinerr.ExitCode(err))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitWith(err)
	}
}
