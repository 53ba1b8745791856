package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tunesmith/config"

	"github.com/spf13/cobra"
)

var (
	dirFlag   string
	styleFlag string
	yesFlag   bool
	portFlag  int

	// Set via ldflags at build time.
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:           "tunesmith",
	Short:         "Rename audio files with AI-suggested titles",
	Long:          "tunesmith asks a generative model for a song title and artist for every audio file in a folder\nand renames the files to \"Artist - Title.ext\". Without a subcommand it runs the rename command.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRename,
}

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Rename every supported audio file in a folder",
	RunE:  runRename,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		StartWebServer(portFlag)
		return nil
	},
}

// Execute runs the command line
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("tunesmith %s\n", version))
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	for _, c := range []*cobra.Command{rootCmd, renameCmd} {
		c.Flags().StringVarP(&dirFlag, "dir", "d", "", "Folder of audio files to rename (default: configured music directory)")
		c.Flags().StringVarP(&styleFlag, "style", "s", "", "Style prompt for the suggested names")
		c.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Rename without asking for confirmation")
	}
	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 8080, "Port for web server mode")

	rootCmd.AddCommand(renameCmd, serveCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	dir := dirFlag
	if dir == "" {
		dir = config.GetMusicDirectory()
	}
	style := styleFlag
	if style == "" {
		style = config.LoadSettings().StylePrompt
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err := RunCLI(ctx, CLIOptions{
		Dir:         dir,
		StylePrompt: style,
		Yes:         yesFlag,
		In:          cmd.InOrStdin(),
		Out:         cmd.OutOrStdout(),
	})
	return err
}
