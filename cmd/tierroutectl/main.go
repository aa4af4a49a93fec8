// Command tierroutectl is a thin demo CLI around the Router (spec.md §6),
// mirroring codeNERD's cmd/nerd cobra layout: a root command with
// persistent flags, subcommands for the router's main operations, and a
// zap logger initialized in PersistentPreRunE.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tierroute/internal/config"
	"tierroute/internal/configwatch"
	"tierroute/internal/contracts"
	"tierroute/internal/langdetect"
	"tierroute/internal/loader"
	"tierroute/internal/logging"
	"tierroute/internal/router"
	"tierroute/internal/safety"
)

var (
	verbose    bool
	jsonLogs   bool
	configPath string
	cwd        string

	rt *router.Router
)

var rootCmd = &cobra.Command{
	Use:   "tierroutectl",
	Short: "Drive the tiered command-execution router from the command line",
	Long: `tierroutectl classifies and executes shell command lines through the
tiered command router: native in-process handlers, RPC services, a warm
polyglot worker lane, a dynamic module loader, and a sandbox fallback.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose, jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		safetyAnalyzer, err := safety.New()
		if err != nil {
			return fmt.Errorf("failed to build safety analyzer: %w", err)
		}

		ld := loader.New()

		r, err := router.New(router.Options{
			Config:         cfg,
			LanguageRouter: langdetect.New(),
			SafetyAnalyzer: safetyAnalyzer,
			LoaderBindings: map[string]contracts.WorkerLoaderBinding{
				"yaegi": ld.Binding(),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to build router: %w", err)
		}
		rt = r
		return nil
	},
}

var execCmd = &cobra.Command{
	Use:   "exec [command line]",
	Short: "Classify and execute a command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := joinArgs(args)
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		res, err := rt.Execute(ctx, line, contracts.ExecOptions{Cwd: cwd, Timeout: 60 * time.Second})
		if err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
		if res.Stdout != "" {
			fmt.Print(res.Stdout)
		}
		if res.Stderr != "" {
			fmt.Fprint(os.Stderr, res.Stderr)
		}
		if res.ExitCode != 0 {
			os.Exit(res.ExitCode)
		}
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify [command line]",
	Short: "Show how a command line would be classified, without executing it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := joinArgs(args)
		cl := rt.ClassifyCommand(line)
		fmt.Printf("tier=%d handler=%s capability=%s reason=%q\n", cl.Tier, cl.Handler, cl.Capability, cl.Reason)
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print the current metrics snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := rt.GetMetrics()
		fmt.Println(snap.Describe())
		size, capacity := rt.GetCacheStats()
		fmt.Printf("classification cache: %d/%d entries\n", size, capacity)
		return nil
	},
}

var serveConfigWatchCmd = &cobra.Command{
	Use:   "serve-config-watch",
	Short: "Watch the config file and hot-reload RPC bindings on change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return fmt.Errorf("serve-config-watch requires --config pointing at a YAML file to watch")
		}

		w, err := configwatch.New(configPath, rt.ReloadConfig)
		if err != nil {
			return fmt.Errorf("failed to build config watcher: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start config watcher: %w", err)
		}
		defer w.Stop()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		fmt.Fprintf(os.Stderr, "watching %s for changes (ctrl-c to stop)\n", configPath)
		<-sigCh
		return nil
	},
}

func joinArgs(args []string) string {
	line := ""
	for i, a := range args {
		if i > 0 {
			line += " "
		}
		line += a
	}
	return line
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", true, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a router config YAML file")
	rootCmd.PersistentFlags().StringVarP(&cwd, "cwd", "w", "", "Working directory for the executed command")

	rootCmd.AddCommand(execCmd, classifyCmd, metricsCmd, serveConfigWatchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
