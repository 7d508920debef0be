package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/config"
	"github.com/jinvcs/jin/internal/jin/ui"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "core",
	Short:   "Initialize the store and the current project",
	Long: `Create the store's on-disk layout (objects/, refs/jin/...,
config.toml) if it does not exist yet, and initialize an empty
ProjectContext for the current project directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := store.Init(); err != nil {
			exitWith(err)
		}
		if _, err := os.Stat(config.Path(store.Root)); os.IsNotExist(err) {
			if err := config.Save(store.Root, config.Default()); err != nil {
				exitWith(err)
			}
		}
		if _, err := workspace.LoadContext(projectDir); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s initialized store at %s\n", ui.RenderPass("✓"), store.Root)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
