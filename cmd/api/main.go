// Command api runs the reconciliation HTTP API on its own, configured from
// config.yaml or the environment. It is the container entrypoint; the
// reconciler CLI's serve command does the same from a shell.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/eshaffer321/tuition-reconciler/internal/cli"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/config"
)

func main() {
	cfg := config.LoadOrEnv_WithPath(getEnv("CONFIG_PATH", "config.yaml"))

	// PORT wins over api.port so platforms that inject it work unchanged.
	var flags cli.ServeFlags
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid PORT %q\n", port)
			os.Exit(1)
		}
		flags.Port = p
	}

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
