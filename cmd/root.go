package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/pipesh/core/config"
	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/shell"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	commandLine string
	exitStatus  int
)

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// shellConfig loads the configuration if --config was given and falls back
// to the built-in defaults otherwise.
func shellConfig(cmd *cobra.Command) (*config.Configuration, error) {
	if !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return loadConfig()
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   shell.Name,
	Short: "A minimal shell that runs commands joined by at most one pipe.",
	Long: `Reads command lines from standard input and runs each as a single
command or two commands joined by a pipe. Commands are found on PATH.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := shellConfig(cmd)
		if err != nil {
			return err
		}

		events := logger.Discard().Sessionless()
		logFd, err := cfg.OpenEventLog()
		switch {
		case err == nil:
			defer logFd.Close()
			events = logger.NewJSONLinesLogRecorder(logFd).NewSession()
		case !errors.Is(err, config.ErrNoEventLog):
			return err
		}

		runOne := cmd.Flags().Changed("command")
		interactive := !runOne && readline.IsTerminal(int(os.Stdin.Fd()))
		if interactive {
			// Ctrl-C interrupts the children, not the shell. Handled signals are
			// reset to their defaults in children.
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, os.Interrupt)
			defer signal.Stop(sigs)
			go func() {
				for range sigs {
				}
			}()
		}

		sh := shell.New(cfg, shell.Options{
			Stdin:       os.Stdin,
			Stdout:      os.Stdout,
			Stderr:      os.Stderr,
			Interactive: interactive,
			Events:      events,
		})

		if runOne {
			sh.RunLine(commandLine)
			exitStatus = sh.LastStatus()
			return nil
		}

		exitStatus = sh.Run()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitStatus)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run a single command line and exit")
}
