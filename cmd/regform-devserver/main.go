// regform-devserver serves the lookup datasets and a stub registration API
// for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"github.com/ppimalaysia/regform/pkg/devserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var addr string
	var opts devserver.Options
	flagSet := pflag.NewFlagSet("regform-devserver", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", ":8089", "listen address")
	flagSet.StringSliceVar(&opts.Fail, "fail", nil, "datasets to answer with HTTP 500 (repeatable)")
	flagSet.DurationVar(&opts.Latency, "latency", 0, "delay added to every dataset response")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           devserver.New(opts).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: shutdown: %v", err)
		}
	}()

	log.Printf("serving datasets %v on %s", devserver.Datasets, addr)
	log.Printf("point datasets at http://localhost%s/data/<name>.json and the API at http://localhost%s/api", addr, addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
