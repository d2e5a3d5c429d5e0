// Command hakey drives the storefront core from a terminal: browse the
// remote catalog, manage the local cart and the local session.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"hakey-storefront/internal/app"
	"hakey-storefront/internal/config"
)

type cli struct {
	core    *app.App
	verbose bool
	out     io.Writer
}

func main() {
	c := &cli{}
	if err := c.execute(c.rootCmd()); err != nil {
		os.Exit(1)
	}
}

// execute runs root and always releases the app. cobra skips post-run hooks
// when RunE fails.
func (c *cli) execute(root *cobra.Command) error {
	defer c.close()
	return root.Execute()
}

func (c *cli) close() {
	if c.core != nil {
		c.core.Close()
		c.core = nil
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hakey",
		Short:         "HAKEY storefront command line",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.out = cmd.OutOrStdout()
			logger := log.New(io.Discard, "", 0)
			if c.verbose {
				logger = log.New(os.Stderr, "[hakey] ", log.LstdFlags|log.LUTC|log.Lshortfile)
			}
			core, err := app.New(cmd.Context(), config.Load(), logger)
			if err != nil {
				return err
			}
			c.core = core
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr")
	root.AddCommand(c.catalogCmd(), c.cartCmd(), c.sessionCmd())
	root.SetContext(context.Background())
	return root
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
