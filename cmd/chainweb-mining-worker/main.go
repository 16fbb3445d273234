// The chainweb-mining-worker daemon mines candidate block headers handed
// to it by a Chainweb node. The node submits work and polls for solved
// headers over the HTTP API; this process owns all CPU-intensive search.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kadena-io/chainweb-mining-worker/api"
	"github.com/kadena-io/chainweb-mining-worker/build"
	"github.com/kadena-io/chainweb-mining-worker/config"
	"github.com/kadena-io/chainweb-mining-worker/persist"
	"github.com/kadena-io/chainweb-mining-worker/supervisor"
	"github.com/spf13/cobra"
)

var (
	cores       uint16
	versionName string
	listenAddr  string
	logFile     string
)

// versioncmd prints version information about the worker.
func versioncmd(*cobra.Command, []string) {
	fmt.Println("Chainweb Mining Worker v0.1.0")
	if build.GitRevision != "" {
		fmt.Println("Git Revision:", build.GitRevision)
		fmt.Println("Build Time:  ", build.BuildTime)
	}
}

// startcmd assembles the worker from its flags and runs it until a
// termination signal arrives.
func startcmd(cmd *cobra.Command, args []string) {
	cfg := config.Default()
	cfg.Cores = cores
	cfg.Listen = listenAddr
	cfg.LogFile = logFile
	if err := cfg.Version.LoadString(versionName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := runWorker(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runWorker wires the logger, supervisor, and HTTP API together, then
// blocks until SIGINT or SIGTERM.
func runWorker(cfg config.Config) error {
	var logger *persist.Logger
	if cfg.LogFile != "" {
		var err error
		logger, err = persist.NewLogger(cfg.LogFile)
		if err != nil {
			return err
		}
	} else {
		logger = persist.NewStreamLogger(os.Stdout)
	}
	defer logger.Close()

	sup, err := supervisor.New(supervisor.Config{
		Cores:   int(cfg.Cores),
		Version: cfg.Version,
		Log:     logger,
	})
	if err != nil {
		return err
	}
	defer sup.Close()

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	httpServer := &http.Server{Handler: api.New(sup, logger)}
	serveErr := make(chan error, 1)
	go func() {
		// Closing the listener makes Serve return; that benign error is
		// filtered below.
		err := httpServer.Serve(listener)
		if err != nil && !strings.HasSuffix(err.Error(), "use of closed network connection") && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()
	logger.Printf("mining worker listening on %v (%v cores, version %v)",
		listener.Addr(), cfg.Cores, cfg.Version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Println("SHUTDOWN: termination signal received.")
	case err := <-serveErr:
		listener.Close()
		return err
	}

	if err := listener.Close(); err != nil {
		return err
	}
	return <-serveErr
}

func main() {
	root := &cobra.Command{
		Use:   os.Args[0],
		Short: "Chainweb Mining Worker v0.1.0",
		Long:  "Chainweb Mining Worker v0.1.0",
		Run:   startcmd,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version information about the Chainweb Mining Worker.",
		Run:   versioncmd,
	})

	defaults := config.Default()
	root.Flags().Uint16VarP(&cores, "cores", "c", defaults.Cores, "How many parallel search threads to run per job.")
	root.Flags().StringVarP(&versionName, "chainweb-version", "v", defaults.Version.String(), "Which chainweb network to mine for.")
	root.Flags().StringVarP(&listenAddr, "listen", "l", defaults.Listen, "Which address the HTTP API binds to.")
	root.Flags().StringVar(&logFile, "log-file", "", "Log to this file instead of stdout.")

	root.Execute()
}
