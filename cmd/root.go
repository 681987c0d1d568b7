// Package cmd wires the bathtiles command line.
package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	ghapi "github.com/cli/go-gh/v2/pkg/api"
	"github.com/spf13/cobra"

	"github.com/stsysd/bathtiles/api"
	"github.com/stsysd/bathtiles/config"
	"github.com/stsysd/bathtiles/ingest"
	"github.com/stsysd/bathtiles/store"
)

// Consumer is a running import stream.
type Consumer interface {
	Run(ctx context.Context) error
	Close() error
}

type Deps struct {
	LoadConfig    func() (*config.Config, error)
	NewStore      func() store.Store
	Serve         func(server *api.Server, addr string) error
	NewConsumer   func(cfg ingest.Config, importer ingest.Importer, log *slog.Logger) (Consumer, error)
	GraphQLClient func() (store.GraphQLClient, error)
	Now           func() time.Time
	Stdin         io.Reader
	Stdout        io.Writer
	Stderr        io.Writer
}

func DefaultDeps() Deps {
	return Deps{
		LoadConfig: config.NewConfig,
		NewStore:   func() store.Store { return store.NewMemoryStore() },
		Serve:      (*api.Server).Run,
		NewConsumer: func(cfg ingest.Config, importer ingest.Importer, log *slog.Logger) (Consumer, error) {
			return ingest.NewConsumer(cfg, importer, log)
		},
		GraphQLClient: func() (store.GraphQLClient, error) {
			return ghapi.DefaultGraphQLClient()
		},
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// now returns deps.Now(), or the wall clock when Now is unset.
func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func NewRootCmd(deps Deps) *cobra.Command {
	c := &cobra.Command{
		Use:          "bathtiles",
		Short:        "Render submission calendars as contribution-style heatmaps",
		SilenceUsage: true,
	}

	c.AddCommand(newServeCmd(deps))
	c.AddCommand(newRenderCmd(deps))

	c.SetIn(deps.Stdin)
	c.SetOut(deps.Stdout)
	c.SetErr(deps.Stderr)
	return c
}
