package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Args:  cobra.NoArgs,
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	s := requireLocal(cfg, "stats")
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), cfg.DBPath)
	if err != nil {
		exitErr("stats", err)
	}
	stats.DBSize = humanize.Bytes(uint64(stats.DBSizeBytes))

	if formatFlag == "text" {
		fmt.Printf("database:      %s (%s)\n", stats.DBPath, stats.DBSize)
		fmt.Printf("people:        %d (%d active)\n", stats.TotalPersons, stats.ActivePersons)
		fmt.Printf("notes:         %s\n", humanize.Comma(int64(stats.Conversations)))
		fmt.Printf("memories:      %s\n", humanize.Comma(int64(stats.Memories)))
		fmt.Printf("migrations:    %s\n", strings.Join(stats.Migrations, ", "))
		return
	}
	printJSON(stats)
}
