package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/registry"
	"github.com/jinvcs/jin/internal/jin/ui"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

var modeCmd = &cobra.Command{
	Use:     "mode",
	GroupID: "layers",
	Short:   "Manage mode layers (create, use, list, delete, unset)",
}

var modeCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Register a new mode",
	Run: func(cmd *cobra.Command, args []string) {
		name := firstArgOrPrompt(args, "Mode name")
		if err := registry.CreateMode(store, name); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s mode %q registered\n", ui.RenderPass("✓"), name)
	},
}

var modeUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active mode for this project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		if err := registry.RequireMode(store, name); err != nil {
			exitWith(err)
		}
		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		ctx.Mode = name
		if err := workspace.SaveContext(projectDir, ctx); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s active mode set to %q\n", ui.RenderPass("✓"), name)
	},
}

var modeUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Clear the active mode for this project",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		ctx.Mode = ""
		if err := workspace.SaveContext(projectDir, ctx); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s active mode cleared\n", ui.RenderPass("✓"))
	},
}

var modeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered modes",
	Run: func(cmd *cobra.Command, args []string) {
		names, err := registry.ListModes(store)
		if err != nil {
			exitWith(err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
	},
}

var modeDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Unregister a mode (committed layer refs are left untouched)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := registry.DeleteMode(store, args[0]); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s mode %q unregistered\n", ui.RenderPass("✓"), args[0])
	},
}

func init() {
	modeCmd.AddCommand(modeCreateCmd, modeUseCmd, modeUnsetCmd, modeListCmd, modeDeleteCmd)
	rootCmd.AddCommand(modeCmd)
}

// firstArgOrPrompt returns args[0] if present, otherwise opens an
// interactive huh.Input form (spec.md §9 SPEC_FULL expansion: "mode/
// scope/project creation use huh forms when no flags are given").
func firstArgOrPrompt(args []string, title string) string {
	if len(args) > 0 {
		return args[0]
	}
	var name string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Value(&name).Validate(func(s string) error {
				if s == "" {
					return jinerr.New(jinerr.KindConfig, "name must not be empty")
				}
				return nil
			}),
		),
	)
	if err := form.Run(); err != nil {
		exitWith(jinerr.Wrap(jinerr.KindConfig, "interactive prompt failed", err))
	}
	return name
}
