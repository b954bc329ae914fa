package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/wikiquiz/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		addr := d.cfg.Server.Addr
		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			addr = v
		}

		gin.SetMode(gin.ReleaseMode)
		srv := newServer(d)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.ListenAndServe(ctx, addr)
	},
}

func newServer(d *deps) *server.Server {
	return server.New(d.cfg.Server, server.Deps{
		Questions: d.orchestrator,
		Saver:     d.questions,
		Ratings:   d.store.Ratings(),
		Logger:    d.logger,
	})
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
