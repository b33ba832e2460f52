// Command server runs the sentence exercise API.
//
// Configuration is read from CONFIG_PATH (default ./config.yaml) and the
// environment; run with -env to list the variables.
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/myenglish-exercises/internal/app"
	"github.com/heartmarshall/myenglish-exercises/internal/config"
)

func main() {
	envHelp := flag.Bool("env", false, "print the environment variables and exit")
	flag.Parse()

	if *envHelp {
		desc, err := config.Describe()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(desc)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		slog.Error("application failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
