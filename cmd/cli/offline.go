package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/graph"
	"github.com/mauv0809/permutatum/internal/matchmaking"
	"github.com/mauv0809/permutatum/internal/participant"
)

// snapshotFile is the on-disk layout read by the offline command.
type snapshotFile struct {
	Participants []participant.Participant `yaml:"participants"`
}

var offlineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Run a search locally against a YAML snapshot file",
	Long: `Loads participants from a YAML file and runs the matching engine without a
server. Inactive and invalid records are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		mode, _ := cmd.Flags().GetString("mode")
		origin, _ := cmd.Flags().GetString("origin")
		destination, _ := cmd.Flags().GetString("destination")
		length, _ := cmd.Flags().GetInt("length")
		priorityOnly, _ := cmd.Flags().GetBool("priority-only")
		limit, _ := cmd.Flags().GetInt("limit")

		snapshot, err := loadSnapshot(file)
		if err != nil {
			return err
		}
		q := matchmaking.Query{
			Origin:       court.Court(origin),
			Destination:  court.Court(destination),
			Length:       length,
			PriorityOnly: priorityOnly,
			Limit:        limit,
		}
		return runOffline(cmd.Context(), cmd.OutOrStdout(), snapshot, mode, q)
	},
}

func init() {
	rootCmd.AddCommand(offlineCmd)
	offlineCmd.Flags().String("file", "snapshot.yaml", "YAML snapshot with a top-level participants list")
	offlineCmd.Flags().String("mode", "cycles", "What to search for: cycles or gaps")
	offlineCmd.Flags().String("origin", "", "Origin court, e.g. TJSP")
	offlineCmd.Flags().String("destination", "", "Destination court, e.g. TJRJ")
	offlineCmd.Flags().Int("length", 2, "Cycle length: 2, 3 or 4")
	offlineCmd.Flags().Bool("priority-only", false, "Only follow first-ranked destinations")
	offlineCmd.Flags().Int("limit", 0, "Maximum number of results (0 means no limit)")
}

func loadSnapshot(path string) ([]participant.Participant, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return parseSnapshot(raw)
}

func parseSnapshot(raw []byte) ([]participant.Participant, error) {
	var file snapshotFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	snapshot := make([]participant.Participant, 0, len(file.Participants))
	for i, p := range file.Participants {
		p.Normalize()
		if p.ID == "" {
			p.ID = fmt.Sprintf("offline-%d", i+1)
		}
		if !p.Active() {
			continue
		}
		if err := p.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "skipping participant %q: %s\n", p.Name, err)
			continue
		}
		snapshot = append(snapshot, p)
	}
	return snapshot, nil
}

func runOffline(ctx context.Context, w io.Writer, snapshot []participant.Participant, mode string, q matchmaking.Query) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g := graph.Build(snapshot)
	finder := matchmaking.New()

	var out any
	switch mode {
	case "cycles":
		res, err := finder.FindCycles(ctx, g, q, nil)
		if err != nil {
			return err
		}
		out = res
	case "gaps":
		res, err := finder.FindGaps(ctx, g, q, nil)
		if err != nil {
			return err
		}
		out = res
	default:
		return fmt.Errorf("unknown mode %q: use cycles or gaps", mode)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
