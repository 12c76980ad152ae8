package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ytpulse/internal/api"
)

const statusTimeout = 5 * time.Second

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var addr string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of a running ytpulse server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := strings.TrimSpace(addr)
			if target == "" {
				target = cfg.Server.Bind
			}

			status, err := fetchStatus(cmd.Context(), target)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Server", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Running", statusOK, fmt.Sprintf("pid %d on %s", status.PID, status.Address), colorize))
			if status.StartedAt != "" {
				fmt.Fprintln(out, renderStatusLine("Started", statusInfo, status.StartedAt, colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))

			slotKind := statusOK
			if status.Jobs.CapacityRemaining == 0 {
				slotKind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Video jobs", slotKind, fmt.Sprintf("%d of %d slots in use", status.Jobs.ActiveCount, status.Jobs.MaxConcurrent), colorize))
			if len(status.Jobs.ActiveIDs) > 0 {
				fmt.Fprintln(out, renderStatusLine("Active", statusInfo, strings.Join(status.Jobs.ActiveIDs, ", "), colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Strategies", statusInfo, strings.Join(status.Strategies, ", "), colorize))
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderCounters(status.Counters))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Server address (defaults to server.bind)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the raw status document")
	return cmd
}

func fetchStatus(ctx context.Context, addr string) (api.StatusResponse, error) {
	var status api.StatusResponse
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	reqCtx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, strings.TrimRight(base, "/")+"/api/status", nil)
	if err != nil {
		return status, fmt.Errorf("build status request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return status, fmt.Errorf("connect to ytpulse at %s: %w (start it with `ytpulse serve`)", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return status, fmt.Errorf("status request failed (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return status, fmt.Errorf("status request failed: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, fmt.Errorf("decode status: %w", err)
	}
	return status, nil
}
