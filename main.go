package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/adamhock/chess-game-fetcher/internal/accuracy/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.InfoLevel)

	if err := accuracy(); err != nil {
		logrus.Fatal(err)
	}
}

func accuracy() error {
	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	return root.Execute()
}
