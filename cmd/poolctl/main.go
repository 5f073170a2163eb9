package main

import (
	"os"

	"cosmossdk.io/log"

	"github.com/openalpha/signalpool/cmd/poolctl/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.NewLogger(os.Stderr).Error("failure when running poolctl", "err", err)
		os.Exit(1)
	}
}
