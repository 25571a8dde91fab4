package main

import (
	"context"
	_ "embed"
	"log"
	"os"

	"weatherdash/cli"
)

//go:embed config.yaml
var configRaw []byte

func main() {
	ctx := context.Background()

	cmd, err := cli.New(configRaw)
	if err != nil {
		log.Fatalf("new cli: %s\n", err)
	}

	if err = cmd.ExecuteContext(ctx); err != nil {
		log.Printf("exec: %s\n", err)
		os.Exit(1)
	}
}
