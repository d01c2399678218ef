package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/corelab/internal/api"
	"github.com/rcliao/corelab/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Import records from JSON",
		Long: "Import a snapshot produced by export, from FILE or stdin. Person ids are reassigned.\n" +
			"Against the local database the import is a single transaction that keeps timestamps;\n" +
			"with --server every record is replayed through the server's API.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		exitErr("parse json", err)
	}

	cfg := loadConfig(cmd)
	sess, err := openSession(cfg, nil)
	if err != nil {
		exitErr("open store", err)
	}
	defer sess.Close()

	var res *store.ImportResult
	if sess.local != nil {
		res, err = sess.local.Import(cmd.Context(), &snap)
	} else {
		res, err = replay(cmd.Context(), sess.backend, &snap)
	}
	if err != nil {
		exitErr("import", err)
	}

	b, _ := json.Marshal(struct {
		OK bool `json:"ok"`
		*store.ImportResult
	}{true, res})
	fmt.Println(string(b))
}

// replay writes snap through b one record at a time. Records written before
// a failure stay written.
func replay(ctx context.Context, b api.Backend, snap *store.Snapshot) (*store.ImportResult, error) {
	res := &store.ImportResult{}
	ids := make(map[int64]int64, len(snap.Persons))

	for _, p := range snap.Persons {
		id, err := b.CreatePerson(ctx, p.Name, p.Notes)
		if err != nil {
			return res, fmt.Errorf("person %d: %w", p.ID, err)
		}
		if !p.IsActive {
			if err := b.UpdatePerson(ctx, id, p.Name, p.Notes, false); err != nil {
				return res, fmt.Errorf("person %d: %w", p.ID, err)
			}
		}
		ids[p.ID] = id
		res.Persons++
	}

	for _, c := range snap.Conversations {
		pid, ok := ids[c.PersonID]
		if !ok {
			return res, fmt.Errorf("conversation %d: person %d: %w", c.ID, c.PersonID, store.ErrNotFound)
		}
		if _, err := b.CreateConversation(ctx, pid, c.Content, c.Context); err != nil {
			return res, fmt.Errorf("conversation %d: %w", c.ID, err)
		}
		res.Conversations++
	}

	for _, m := range snap.Memories {
		pid, ok := ids[m.PersonID]
		if !ok {
			return res, fmt.Errorf("memory %d: person %d: %w", m.ID, m.PersonID, store.ErrNotFound)
		}
		if _, err := b.CreateMemory(ctx, pid, m.Key, m.Value, m.Importance); err != nil {
			return res, fmt.Errorf("memory %d: %w", m.ID, err)
		}
		res.Memories++
	}
	return res, nil
}
