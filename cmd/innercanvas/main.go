package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx := context.Background()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("innercanvas", flag.ExitOnError)
	baseFlag := fs.String("base", "", "Backend base URL (default: config or http://localhost:8080/api)")
	counselorFlag := fs.String("counselor", "", "Counselor mode: remote, anthropic, or openai (default: config)")
	doodleFlag := fs.String("doodle", "", "Path to a PNG doodle to attach to today's entry")
	noArchiveFlag := fs.Bool("no-archive", false, "Disable the local entry archive")

	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := prepareRuntimeEnv(ctx, runtimeFlags{
		baseURL:   *baseFlag,
		counselor: *counselorFlag,
		doodle:    *doodleFlag,
		noArchive: *noArchiveFlag,
	})
	if err != nil {
		return err
	}
	defer env.Close()

	runREPL(ctx, env)
	return nil
}
