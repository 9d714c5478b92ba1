package cli

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/live"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live snapshots and actions over a websocket",
		Long:  "Serve /ws (snapshot on connect and after every change, notices, store actions) and /health.",
		Run:   runServe,
	}
	cmd.Flags().String("addr", "", "Listen address (default: serve.addr, 127.0.0.1:8765)")
	v.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub(logger)
	a, err := openApp(cmd, hub)
	if err != nil {
		exitErr("open diary", err)
	}
	defer a.Close()
	hub.Attach(a.state)

	err = hub.Serve(ctx, cfg.ServeAddr, func(addr net.Addr) {
		printJSON(cmd, map[string]string{"listening": addr.String()})
	})
	if err != nil {
		exitErr("serve", err)
	}
}
