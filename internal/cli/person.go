package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/corelab/internal/model"
	"github.com/rcliao/corelab/internal/store"
)

func init() {
	personCmd := &cobra.Command{
		Use:   "person",
		Short: "Manage people",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List people",
		Args:  cobra.NoArgs,
		Run:   runPersonList,
	}
	listCmd.Flags().Bool("all", false, "Include inactive people (local database only)")

	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a person",
		Args:  cobra.ExactArgs(1),
		Run:   runPersonAdd,
	}
	addCmd.Flags().String("notes", "", "Free-text notes")

	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a person's name or notes",
		Args:  cobra.ExactArgs(1),
		Run:   runPersonUpdate,
	}
	updateCmd.Flags().String("name", "", "New name")
	updateCmd.Flags().String("notes", "", "New notes (empty clears them)")

	deactivateCmd := &cobra.Command{
		Use:   "deactivate ID",
		Short: "Mark a person inactive",
		Args:  cobra.ExactArgs(1),
		Run:   runPersonDeactivate,
	}

	personCmd.AddCommand(listCmd, addCmd, updateCmd, deactivateCmd)
	RootCmd.AddCommand(personCmd)
}

func runPersonList(cmd *cobra.Command, args []string) {
	all, _ := cmd.Flags().GetBool("all")
	cfg := loadConfig(cmd)

	var persons []model.Person
	if all {
		s := requireLocal(cfg, "person list --all")
		defer s.Close()
		var err error
		persons, err = s.ListPersons(cmd.Context(), store.ListPersonsParams{IncludeInactive: true})
		if err != nil {
			exitErr("list persons", err)
		}
	} else {
		sess, err := openSession(cfg, nil)
		if err != nil {
			exitErr("open store", err)
		}
		defer sess.Close()
		persons, err = sess.backend.GetPersons(cmd.Context())
		if err != nil {
			exitErr("list persons", err)
		}
	}

	if formatFlag == "text" {
		for _, p := range persons {
			status := ""
			if !p.IsActive {
				status = " (inactive)"
			}
			fmt.Printf("%d\t%s%s\t%s\n", p.ID, p.Name, status, humanize.Time(p.CreatedAt))
		}
		return
	}
	printJSON(persons)
}

func runPersonAdd(cmd *cobra.Command, args []string) {
	notes, _ := cmd.Flags().GetString("notes")
	cfg := loadConfig(cmd)

	sess, err := openSession(cfg, nil)
	if err != nil {
		exitErr("open store", err)
	}
	defer sess.Close()

	id, err := sess.backend.CreatePerson(cmd.Context(), args[0], notes)
	if err != nil {
		exitErr("add person", err)
	}
	printJSON(map[string]interface{}{"id": id, "name": args[0]})
}

func runPersonUpdate(cmd *cobra.Command, args []string) {
	id := parseID(args[0])
	cfg := loadConfig(cmd)

	sess, err := openSession(cfg, nil)
	if err != nil {
		exitErr("open store", err)
	}
	defer sess.Close()

	p, err := findPerson(cmd.Context(), sess, id)
	if err != nil {
		exitErr("update person", err)
	}
	if cmd.Flags().Changed("name") {
		p.Name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("notes") {
		p.Notes, _ = cmd.Flags().GetString("notes")
	}
	if err := sess.backend.UpdatePerson(cmd.Context(), p.ID, p.Name, p.Notes, p.IsActive); err != nil {
		exitErr("update person", err)
	}
	printJSON(p)
}

func runPersonDeactivate(cmd *cobra.Command, args []string) {
	id := parseID(args[0])
	cfg := loadConfig(cmd)

	sess, err := openSession(cfg, nil)
	if err != nil {
		exitErr("open store", err)
	}
	defer sess.Close()

	p, err := findPerson(cmd.Context(), sess, id)
	if err != nil {
		exitErr("deactivate person", err)
	}
	if err := sess.backend.UpdatePerson(cmd.Context(), p.ID, p.Name, p.Notes, false); err != nil {
		exitErr("deactivate person", err)
	}
	p.IsActive = false
	printJSON(p)
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		exitErr("parse id", fmt.Errorf("invalid id %q", s))
	}
	return id
}
