package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/resor-app/resor/internal/kernel"
	"github.com/resor-app/resor/internal/server"
	"github.com/resor-app/resor/pkg/storage"
)

// resor serve: boot every backend and start the HTTP server.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		return server.Start(ctx, k)
	},
}

// resor route:list: print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRoutes(cmd.OutOrStdout())
	},
}

func printRoutes(out io.Writer) error {
	dir, err := os.MkdirTemp("", "resor-routes")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	disk, err := storage.NewLocal(dir, "")
	if err != nil {
		return err
	}
	k, err := kernel.New(kernel.Options{Disk: disk})
	if err != nil {
		return err
	}
	defer k.Close()

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range k.Router().Routes() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}
