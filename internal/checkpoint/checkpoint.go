// Package checkpoint snapshots the prompt file before each iteration using
// the same crash-safe tmp+rename write strategy the teacher used for its
// own state file, rotating a bounded number of generations so rollback can
// restore the most recent one bit-for-bit.
package checkpoint

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const defaultKeep = 3

// Store manages rotating checkpoints of one file under dir.
type Store struct {
	promptPath string
	dir        string
	keep       int

	// SnapshotCommand, if set, is run (e.g. "git add -A && git commit -m
	// checkpoint") at the same cadence as each checkpoint. Its failure is
	// ignored and never affects run state.
	SnapshotCommand string
}

// New returns a Store that checkpoints promptPath into checkpointDir,
// keeping the last `keep` generations (default 3).
func New(promptPath, checkpointDir string, keep int) *Store {
	if keep <= 0 {
		keep = defaultKeep
	}
	return &Store{promptPath: promptPath, dir: checkpointDir, keep: keep}
}

const (
	checkpointPrefix = "PROMPT."
	checkpointSuffix = ".md"
)

func (s *Store) genPath(iter int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%d%s", checkpointPrefix, iter, checkpointSuffix))
}

// parseGen extracts the iteration number from a checkpoint filename, per the
// PROMPT.<iter>.md naming scheme. ok is false for anything else found in the
// checkpoint directory.
func parseGen(name string) (iter int, ok bool) {
	if !strings.HasPrefix(name, checkpointPrefix) || !strings.HasSuffix(name, checkpointSuffix) {
		return 0, false
	}
	mid := strings.TrimSuffix(strings.TrimPrefix(name, checkpointPrefix), checkpointSuffix)
	n, err := strconv.Atoi(mid)
	if err != nil {
		return 0, false
	}
	return n, true
}

// generations returns every checkpointed iteration number present on disk,
// sorted ascending.
func (s *Store) generations() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: listing directory: %w", err)
	}

	var gens []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := parseGen(e.Name()); ok {
			gens = append(gens, n)
		}
	}
	sort.Ints(gens)
	return gens, nil
}

// Checkpoint copies the current prompt file into the PROMPT.<iter>.md
// rotation slot and prunes generations older than `keep`. It is called
// before every adapter invocation, so a rollback always has something to
// restore from.
func (s *Store) Checkpoint(iter int) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint: creating directory: %w", err)
	}

	data, err := os.ReadFile(s.promptPath)
	if err != nil {
		return fmt.Errorf("checkpoint: reading prompt file: %w", err)
	}

	tmp := s.genPath(iter) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: writing tmp checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.genPath(iter)); err != nil {
		return fmt.Errorf("checkpoint: committing checkpoint: %w", err)
	}

	return s.prune()
}

func (s *Store) prune() error {
	gens, err := s.generations()
	if err != nil {
		return err
	}
	if len(gens) <= s.keep {
		return nil
	}

	excess := len(gens) - s.keep
	for _, gen := range gens[:excess] {
		if err := os.Remove(s.genPath(gen)); err != nil {
			return fmt.Errorf("checkpoint: pruning generation %d: %w", gen, err)
		}
	}
	return nil
}

// Rollback restores the most recent checkpoint over the prompt file,
// bit-for-bit. Returns an error if no checkpoint exists yet.
func (s *Store) Rollback() error {
	gens, err := s.generations()
	if err != nil {
		return err
	}
	if len(gens) == 0 {
		return fmt.Errorf("checkpoint: no checkpoint to roll back to")
	}
	latest := gens[len(gens)-1]

	data, err := os.ReadFile(s.genPath(latest))
	if err != nil {
		return fmt.Errorf("checkpoint: reading checkpoint %d: %w", latest, err)
	}

	tmp := s.promptPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: writing tmp prompt: %w", err)
	}
	if err := os.Rename(tmp, s.promptPath); err != nil {
		return fmt.Errorf("checkpoint: restoring prompt file: %w", err)
	}
	return nil
}

// RunSnapshotCommand runs the configured external VCS snapshot command, if
// any, ignoring its outcome: failures here never affect run state, per the
// spec's instruction that this hook is best-effort.
func (s *Store) RunSnapshotCommand(ctx context.Context) {
	if s.SnapshotCommand == "" {
		return
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", s.SnapshotCommand)
	cmd.Dir = filepath.Dir(s.promptPath)
	_ = cmd.Run()
}
