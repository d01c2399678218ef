package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	memoryCmd := &cobra.Command{
		Use:   "memory",
		Short: "Memory facts about a person",
	}

	listCmd := &cobra.Command{
		Use:   "list PERSON_ID",
		Short: "List a person's memories, most important first",
		Args:  cobra.ExactArgs(1),
		Run:   runMemoryList,
	}

	memoryCmd.AddCommand(listCmd)
	RootCmd.AddCommand(memoryCmd)
}

func runMemoryList(cmd *cobra.Command, args []string) {
	personID := parseID(args[0])
	cfg := loadConfig(cmd)

	sess, err := openSession(cfg, nil)
	if err != nil {
		exitErr("open store", err)
	}
	defer sess.Close()

	mems, err := sess.backend.GetMemories(cmd.Context(), personID)
	if err != nil {
		exitErr("list memories", err)
	}

	if formatFlag == "text" {
		for _, m := range mems {
			fmt.Printf("%-5s\t%s: %s\n", m.Stars(), m.Key, m.Value)
		}
		return
	}
	printJSON(mems)
}
