package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/tasktree/internal/projectsvc"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the project service over the local database",
		RunE: func(cmd *cobra.Command, args []string) error {
			gin.SetMode(gin.ReleaseMode)
			srv := projectsvc.NewServer(app.Projects, app.Registry, app.logger())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving projects on %s\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", app.Config.ListenAddr, "Listen address")

	return cmd
}
