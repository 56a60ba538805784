package main

import (
	"context"
	"os"

	"crf-service/cmd/crfctl/internal/commands"
)

func main() {
	if err := commands.Execute(context.Background(), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
