package main

import (
	"os"

	"github.com/arthur-debert/deliveryman/cmd/deliveryman"
)

func main() {
	rootCmd := deliveryman.NewRootCmd()
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		deliveryman.RenderError(cmd, err)
		os.Exit(1)
	}
}
