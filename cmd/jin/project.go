package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/registry"
	"github.com/jinvcs/jin/internal/jin/ui"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	GroupID: "layers",
	Short:   "Manage project layers (create, use, list, delete, unset)",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Register a new project",
	Run: func(cmd *cobra.Command, args []string) {
		name := firstArgOrPrompt(args, "Project name")
		if err := registry.CreateProject(store, name); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s project %q registered\n", ui.RenderPass("✓"), name)
	},
}

var projectUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active project for this project directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := registry.RequireProject(store, args[0]); err != nil {
			exitWith(err)
		}
		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		ctx.Project = args[0]
		if err := workspace.SaveContext(projectDir, ctx); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s active project set to %q\n", ui.RenderPass("✓"), args[0])
	},
}

var projectUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Clear the active project",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		ctx.Project = ""
		if err := workspace.SaveContext(projectDir, ctx); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s active project cleared\n", ui.RenderPass("✓"))
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	Run: func(cmd *cobra.Command, args []string) {
		names, err := registry.ListProjects(store)
		if err != nil {
			exitWith(err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Unregister a project (committed layer refs are left untouched)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := registry.DeleteProject(store, args[0]); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s project %q unregistered\n", ui.RenderPass("✓"), args[0])
	},
}

func init() {
	projectCmd.AddCommand(projectCreateCmd, projectUseCmd, projectUnsetCmd, projectListCmd, projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}
