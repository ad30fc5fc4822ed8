package files

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"audio-table/internal/client"
)

var (
	serverURL string
	token     string

	sortKey  string
	sortDesc bool
	filter   string
	mimeType string
)

// Cmd drives the audio table from the command line, playing the role of the
// browser table UI.
var Cmd = &cobra.Command{
	Use:   "files",
	Short: "List, upload, transcribe and delete audio files",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the audio table",
	RunE: func(cmd *cobra.Command, args []string) error {
		controller := newController()
		if err := controller.Refresh(cmd.Context()); err != nil {
			return err
		}

		controller.SetSort(client.SortKey(sortKey), sortDesc)
		controller.SetFilter(filter)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tSIZE\tUPLOADED\tTRANSCRIPTION")
		for _, row := range controller.Rows() {
			status := row.Transcription.Kind().String()
			if status == "" {
				status = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				row.Pathname,
				client.FormatBytes(row.Size),
				row.UploadedAt.Format("2006-01-02 15:04"),
				status,
			)
		}
		return w.Flush()
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload an audio file and transcribe it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]

		contentType := mimeType
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(filePath))
		}

		controller := newController()
		pathname, err := controller.Upload(cmd.Context(), filePath, contentType)
		if err != nil {
			return err
		}

		record, ok := controller.Record(pathname)
		if !ok {
			return fmt.Errorf("uploaded record %q not found", pathname)
		}

		fmt.Printf("uploaded %s (%s)\n", record.Pathname, client.FormatBytes(record.Size))
		if text, done := record.Transcription.Text(); done {
			fmt.Printf("transcription:\n%s\n", text)
		} else {
			fmt.Printf("transcription failed; re-upload to retry\n")
		}
		return nil
	},
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <url> <pathname>",
	Short: "Transcribe an already-uploaded audio file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().Transcribe(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(resp.Transcription)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <pathname>",
	Short: "Delete an audio file and its transcription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteByPathname(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

func newClient() *client.Client {
	return client.NewClient(serverURL, token)
}

func newController() *client.Controller {
	return client.NewController(newClient())
}

func init() {
	Cmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "API server base URL")
	Cmd.PersistentFlags().StringVar(&token, "token", os.Getenv("AUDIOTABLE_TOKEN"), "session token")

	listCmd.Flags().StringVar(&sortKey, "sort", "pathname", "sort column (pathname, size, uploadedAt)")
	listCmd.Flags().BoolVar(&sortDesc, "desc", false, "sort descending")
	listCmd.Flags().StringVar(&filter, "filter", "", "substring filter on file names")

	uploadCmd.Flags().StringVar(&mimeType, "content-type", "", "override the detected MIME type")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(uploadCmd)
	Cmd.AddCommand(transcribeCmd)
	Cmd.AddCommand(deleteCmd)
}
