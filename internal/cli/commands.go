package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/apod-api/internal/apod"
	"github.com/i474232898/apod-api/internal/metrics"
)

func init() {
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(rangeCmd)

	getCmd.Flags().String("date", "", "Date to fetch (YYYY-MM-DD, default today UTC)")

	rangeCmd.Flags().String("start", "", "First date of the range (YYYY-MM-DD, default today UTC)")
	rangeCmd.Flags().String("end", "", "Last date of the range (YYYY-MM-DD, default today UTC)")
}

// refreshCmd warms today's record once, for use from an external cron.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch and store today's record once",
	Args:  cobra.NoArgs,
	RunE:  handleRefresh,
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the record for a date as JSON",
	Args:  cobra.NoArgs,
	RunE:  handleGet,
}

var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Print the records for a date range as JSON, newest first",
	Args:  cobra.NoArgs,
	RunE:  handleRange,
}

func handleRefresh(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.service.Refresh(cmd.Context()); err != nil {
		metrics.RefreshRuns.WithLabelValues("error").Inc()
		rt.log.Errorw("refresh failed", "err", err)
		return err
	}
	metrics.RefreshRuns.WithLabelValues("ok").Inc()
	return nil
}

func handleGet(cmd *cobra.Command, args []string) error {
	dateStr, _ := cmd.Flags().GetString("date")

	date, err := parseOptionalDate(dateStr)
	if err != nil {
		return err
	}

	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	rec, err := rt.service.GetForDate(cmd.Context(), date)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), rec)
}

func handleRange(cmd *cobra.Command, args []string) error {
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")

	start, err := parseOptionalDate(startStr)
	if err != nil {
		return err
	}
	end, err := parseOptionalDate(endStr)
	if err != nil {
		return err
	}
	// Fail before touching the store or the network.
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return fmt.Errorf("%w: %s > %s", apod.ErrInvalidRange, startStr, endStr)
	}

	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	today := rt.service.Today()
	if start.IsZero() {
		start = today
	}
	if end.IsZero() {
		end = today
	}

	recs, err := rt.service.GetForRange(cmd.Context(), start, end)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), recs)
}

// parseOptionalDate returns the zero time for an empty flag.
func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return apod.ParseDate(s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
