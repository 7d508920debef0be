package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/registry"
	"github.com/jinvcs/jin/internal/jin/ui"
	"github.com/jinvcs/jin/internal/jin/workspace"
)

var scopeModeFlag string

var scopeCmd = &cobra.Command{
	Use:     "scope",
	GroupID: "layers",
	Short:   "Manage scope layers, nested under a mode (create, use, list, delete, unset)",
}

func resolveScopeMode() string {
	if scopeModeFlag != "" {
		return scopeModeFlag
	}
	ctx, err := workspace.LoadContext(projectDir)
	if err != nil {
		exitWith(err)
	}
	if ctx.Mode == "" {
		exitWith(jinerr.New(jinerr.KindConfig, "scope commands require --mode, or an active mode set via 'jin mode use'"))
	}
	return ctx.Mode
}

var scopeCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Register a new scope under a mode",
	Run: func(cmd *cobra.Command, args []string) {
		mode := resolveScopeMode()
		if err := registry.RequireMode(store, mode); err != nil {
			exitWith(err)
		}
		name := firstArgOrPrompt(args, "Scope name")
		if err := registry.CreateScope(store, mode, name); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s scope %q registered under mode %q\n", ui.RenderPass("✓"), name, mode)
	},
}

var scopeUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active scope for this project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mode := resolveScopeMode()
		if err := registry.RequireScope(store, mode, args[0]); err != nil {
			exitWith(err)
		}
		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		ctx.Scope = args[0]
		if err := workspace.SaveContext(projectDir, ctx); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s active scope set to %q\n", ui.RenderPass("✓"), args[0])
	},
}

var scopeUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Clear the active scope for this project",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, err := workspace.LoadContext(projectDir)
		if err != nil {
			exitWith(err)
		}
		ctx.Scope = ""
		if err := workspace.SaveContext(projectDir, ctx); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s active scope cleared\n", ui.RenderPass("✓"))
	},
}

var scopeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered scopes under a mode",
	Run: func(cmd *cobra.Command, args []string) {
		mode := resolveScopeMode()
		names, err := registry.ListScopes(store, mode)
		if err != nil {
			exitWith(err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
	},
}

var scopeDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Unregister a scope (committed layer refs are left untouched)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mode := resolveScopeMode()
		if err := registry.DeleteScope(store, mode, args[0]); err != nil {
			exitWith(err)
		}
		fmt.Printf("%s scope %q unregistered\n", ui.RenderPass("✓"), args[0])
	},
}

func init() {
	scopeCmd.PersistentFlags().StringVar(&scopeModeFlag, "mode", "", "mode the scope belongs to (default: active mode)")
	scopeCmd.AddCommand(scopeCreateCmd, scopeUseCmd, scopeUnsetCmd, scopeListCmd, scopeDeleteCmd)
	rootCmd.AddCommand(scopeCmd)
}
