package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nmhoang23/rotauth/internal/core/config"
	"github.com/nmhoang23/rotauth/internal/pool"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current state of the resource pool",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	url := fmt.Sprintf("http://localhost:%d/pool", cfg.Server.Port)
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		slog.Error("Failed to reach service", "url", url, "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var views []pool.View
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		slog.Error("Failed to decode pool snapshot", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "RESOURCE\tAVAILABLE\tCOOLDOWN_MS\tOK\tFAIL\tUSES\tLAST_USED")

	for _, v := range views {
		lastUsed := "-"
		if !v.LastUsedAt.IsZero() {
			lastUsed = v.LastUsedAt.Format(time.RFC3339)
		}
		_, _ = fmt.Fprintf(w, "%s\t%t\t%d\t%d\t%d\t%d\t%s\n",
			v.Resource, v.Available, v.CooldownMs,
			v.SuccessCount, v.FailCount, v.UseCount, lastUsed)
	}

	_ = w.Flush()
}
