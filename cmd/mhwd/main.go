package main

import (
	"fmt"
	"os"

	"github.com/ralt/mhwd/internal/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	// Setup logging format
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, cli.RenderError(err, cli.NoColor(os.Args[1:])))
		os.Exit(1)
	}
}
