package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Conversation notes about a person",
	}

	listCmd := &cobra.Command{
		Use:   "list PERSON_ID",
		Short: "List a person's conversation notes, newest first",
		Args:  cobra.ExactArgs(1),
		Run:   runNoteList,
	}

	addCmd := &cobra.Command{
		Use:   "add PERSON_ID CONTENT...",
		Short: "Record a conversation note",
		Args:  cobra.MinimumNArgs(2),
		Run:   runNoteAdd,
	}
	addCmd.Flags().String("context", "", "Where or how the conversation happened")

	noteCmd.AddCommand(listCmd, addCmd)
	RootCmd.AddCommand(noteCmd)
}

func runNoteList(cmd *cobra.Command, args []string) {
	personID := parseID(args[0])
	cfg := loadConfig(cmd)

	sess, err := openSession(cfg, nil)
	if err != nil {
		exitErr("open store", err)
	}
	defer sess.Close()

	convs, err := sess.backend.GetConversations(cmd.Context(), personID)
	if err != nil {
		exitErr("list notes", err)
	}

	if formatFlag == "text" {
		for _, c := range convs {
			fmt.Printf("%s\t%s\n", humanize.Time(c.CreatedAt), c.Content)
		}
		return
	}
	printJSON(convs)
}

func runNoteAdd(cmd *cobra.Command, args []string) {
	personID := parseID(args[0])
	content := strings.TrimSpace(strings.Join(args[1:], " "))
	convContext, _ := cmd.Flags().GetString("context")
	if content == "" {
		exitErr("add note", fmt.Errorf("content is required"))
	}
	cfg := loadConfig(cmd)

	sess, err := openSession(cfg, nil)
	if err != nil {
		exitErr("open store", err)
	}
	defer sess.Close()

	id, err := sess.backend.CreateConversation(cmd.Context(), personID, content, convContext)
	if err != nil {
		exitErr("add note", err)
	}
	printJSON(map[string]interface{}{"id": id, "person_id": personID})
}
