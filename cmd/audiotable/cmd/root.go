package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"audio-table/cmd/audiotable/cmd/files"
	"audio-table/cmd/audiotable/cmd/serve"
	"audio-table/cmd/audiotable/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audiotable",
	Short: "Audio upload and transcription service",
	Long: `Audio table stores uploaded audio files in an object store, transcribes
them through the Whisper API and lists each file joined with its
transcription result.
- serve runs the HTTP API
- files drives the table from the command line (list, upload, transcribe, delete)`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(files.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
