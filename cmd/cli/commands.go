package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(courtsCmd)
	rootCmd.AddCommand(participantsCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(meCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(swapsCmd)
	rootCmd.AddCommand(cyclesCmd)
	rootCmd.AddCommand(gapsCmd)
	rootCmd.AddCommand(unpairedCmd)
	rootCmd.AddCommand(interestedCmd)
	rootCmd.AddCommand(destinationsCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(metricsCmd)

	for _, cmd := range []*cobra.Command{swapsCmd, cyclesCmd, gapsCmd, unpairedCmd} {
		cmd.Flags().String("origin", "", "Origin court, e.g. TJSP")
		cmd.Flags().String("destination", "", "Destination court, e.g. TJRJ")
		cmd.Flags().Int("limit", 0, "Maximum number of results (0 uses the server default)")
	}
	for _, cmd := range []*cobra.Command{cyclesCmd, gapsCmd} {
		cmd.Flags().Int("length", 2, "Cycle length: 2, 3 or 4")
		cmd.Flags().Bool("priority-only", false, "Only follow first-ranked destinations")
	}
	interestedCmd.Flags().String("court", "", "Court to look up (defaults to your own origin)")
	statsCmd.Flags().Int("top", 10, "Number of courts in each ranking")
	recentCmd.Flags().Int("days", 60, "Look-back window in days")
	notificationsCmd.Flags().Bool("mark-read", false, "Mark every unread notification as read")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var courtsCmd = &cobra.Command{
	Use:   "courts",
	Short: "List the courts participants can register with",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/courts", nil)
	},
}

var participantsCmd = &cobra.Command{
	Use:   "participants",
	Short: "List the active participants",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/participants", nil)
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List participants registered recently",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		return performRequest(http.MethodGet, "/api/participants/recent?days="+strconv.Itoa(days), nil)
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your own participant record (requires --email)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/me", nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show demand statistics per court",
	RunE: func(cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetInt("top")
		return performRequest(http.MethodGet, "/api/stats?top="+strconv.Itoa(top), nil)
	},
}

var swapsCmd = &cobra.Command{
	Use:   "swaps",
	Short: "Search for direct swaps on first-ranked destinations",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := searchBody(cmd)
		body["length"] = 2
		body["priority_only"] = true
		return performRequest(http.MethodPost, "/api/search/cycles", body)
	},
}

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Search for complete exchange cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/api/search/cycles", searchBody(cmd))
	},
}

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Search for cycles missing exactly one participant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/api/search/gaps", searchBody(cmd))
	},
}

var unpairedCmd = &cobra.Command{
	Use:   "unpaired",
	Short: "List participants with no counterpart on their route",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		for _, name := range []string{"origin", "destination"} {
			if v, _ := cmd.Flags().GetString(name); v != "" {
				params.Set(name, v)
			}
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
			params.Set("limit", strconv.Itoa(limit))
		}
		return performRequest(http.MethodGet, withQuery("/api/search/unpaired", params), nil)
	},
}

var interestedCmd = &cobra.Command{
	Use:   "interested",
	Short: "List participants who want to move to a court",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if c, _ := cmd.Flags().GetString("court"); c != "" {
			params.Set("court", c)
		}
		return performRequest(http.MethodGet, withQuery("/api/search/interested", params), nil)
	},
}

var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "List participants already at your destinations (requires --email)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/search/destinations", nil)
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List your unread match notifications (requires --email)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if markRead, _ := cmd.Flags().GetBool("mark-read"); markRead {
			return performRequest(http.MethodPost, "/api/notifications/read", nil)
		}
		return performRequest(http.MethodGet, "/api/notifications", nil)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Drop the cached snapshot so the next search reloads it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/api/refresh", nil)
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Get persisted usage counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/usage", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

func searchBody(cmd *cobra.Command) map[string]any {
	origin, _ := cmd.Flags().GetString("origin")
	destination, _ := cmd.Flags().GetString("destination")
	length, _ := cmd.Flags().GetInt("length")
	priorityOnly, _ := cmd.Flags().GetBool("priority-only")
	body := map[string]any{
		"origin":        origin,
		"destination":   destination,
		"length":        length,
		"priority_only": priorityOnly,
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		body["limit"] = limit
	}
	return body
}

func withQuery(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}

func performRequest(method, endpoint string, payload any) error {
	target := host + endpoint
	fmt.Printf("Making request to %s %s\n", method, target)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if email != "" {
		req.Header.Set("X-Participant-Email", email)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
