package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/hiic/library/internal/app"
	"github.com/hiic/library/internal/version"
)

func main() {
	fset := flag.NewFlagSet("library-api", flag.ExitOnError)
	envFile := fset.String("env-file", ".env", "environment file loaded before reading configuration")
	showVersion := fset.Bool("version", false, "print version and exit")
	_ = fset.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println(version.String("library-api"))
		return
	}

	// A missing default .env is fine; an explicit one must exist.
	if err := godotenv.Load(*envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || fset.Changed("env-file") {
			log.Fatalf("❌ failed to load %s: %v", *envFile, err)
		}
	}

	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ library-api failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ library-api stopped: %v", err)
	}
}
