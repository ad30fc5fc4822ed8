package main

import (
	"fmt"
	"os"

	"audio-table/cmd/audiotable/cmd"
	"audio-table/internal/config"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration warning: %v\n", err)
	}

	cmd.Execute()
}
