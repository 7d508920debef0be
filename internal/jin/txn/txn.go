// Package txn implements the multi-ref atomic transaction manager
// (§4.4, C4) that every ref-mutating operation touching more than one
// ref must go through. A single journal file at a well-known path
// under the store root makes the update crash-atomic: journal entries
// are newline-delimited JSON, one per line, appended and fsynced — the
// same append-and-fsync shape as a write-ahead operation log — and an
// advisory OS file lock (github.com/juju/fslock) makes
// TransactionInProgress enforceable across processes racing to call
// Begin, not just a "does the file exist" check.
package txn

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/juju/fslock"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/layer"
	"github.com/jinvcs/jin/internal/jin/objstore"
)

const journalName = ".transaction_in_progress"

// EntryStatus tracks whether an update has been applied to its ref yet.
type EntryStatus string

const (
	StatusPending EntryStatus = "pending"
	StatusApplied EntryStatus = "applied"
)

// Entry is one ref update recorded in the journal.
type Entry struct {
	RefPath string        `json:"ref_path"`
	OldOID  *objstore.OID `json:"old_oid,omitempty"`
	NewOID  objstore.OID  `json:"new_oid"`
	Status  EntryStatus   `json:"status"`
	Layer   layer.Layer   `json:"layer"`
}

func journalPath(root string) string {
	return filepath.Join(root, journalName)
}

func lockPath(root string) string {
	return filepath.Join(root, journalName+".lock")
}

// Exists reports whether a journal is currently present, meaning a
// transaction is mid-flight (normal operation) or crashed uncleanly
// (needs Recover).
func Exists(root string) bool {
	_, err := os.Stat(journalPath(root))
	return err == nil
}

// Tx is an in-flight multi-ref transaction.
type Tx struct {
	store   *objstore.Store
	root    string
	message string
	lock    *fslock.Lock
	entries []Entry
}

// Begin opens a new transaction against store. It fails with
// TransactionInProgress if a journal already exists; callers must run
// Recover first (spec §4.4 "Blocking rule").
func Begin(store *objstore.Store, message string) (*Tx, error) {
	root := store.Root
	l := fslock.New(lockPath(root))
	if err := l.TryLock(); err != nil {
		return nil, jinerr.Wrap(jinerr.KindTransactionInProgress, "another transaction is in progress", err)
	}
	if Exists(root) {
		l.Unlock()
		return nil, jinerr.New(jinerr.KindTransactionInProgress, "a transaction journal already exists; run recovery first")
	}
	return &Tx{store: store, root: root, message: message, lock: l}, nil
}

// AddUpdate records an intended ref update and fsyncs the journal entry
// before returning, so a crash immediately after AddUpdate still leaves
// a durable record of intent.
func (tx *Tx) AddUpdate(l layer.Layer, refPath string, newOID objstore.OID) error {
	var oldOID *objstore.OID
	if tx.store.RefExists(refPath) {
		oid, err := tx.store.ResolveRef(refPath)
		if err != nil {
			return err
		}
		oldOID = &oid
	}
	e := Entry{RefPath: refPath, OldOID: oldOID, NewOID: newOID, Status: StatusPending, Layer: l}
	tx.entries = append(tx.entries, e)
	return tx.appendJournal(e)
}

func (tx *Tx) appendJournal(e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return jinerr.Wrap(jinerr.KindIO, "marshal journal entry", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(journalPath(tx.root), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return jinerr.Wrap(jinerr.KindIO, "open transaction journal", err)
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "append transaction journal", err)
	}
	return f.Sync()
}

func writeJournal(root string, entries []Entry) error {
	var buf bytes.Buffer
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			return jinerr.Wrap(jinerr.KindIO, "marshal journal entry", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	tmp := journalPath(root) + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return jinerr.Wrap(jinerr.KindIO, "write transaction journal temp file", err)
	}
	f, err := os.OpenFile(tmp, os.O_WRONLY, 0o644)
	if err == nil {
		f.Sync()
		f.Close()
	}
	if err := os.Rename(tmp, journalPath(root)); err != nil {
		os.Remove(tmp)
		return jinerr.Wrap(jinerr.KindIO, "rename transaction journal into place", err)
	}
	return nil
}

// Commit applies every pending update in recorded order, marking each
// entry applied in the journal as it lands, then deletes the journal.
func (tx *Tx) Commit() error {
	defer tx.lock.Unlock()

	for i, e := range tx.entries {
		if err := tx.store.SetRef(e.RefPath, e.NewOID, tx.message); err != nil {
			return jinerr.Wrap(jinerr.KindIO, "apply ref update for "+e.RefPath, err)
		}
		tx.entries[i].Status = StatusApplied
		if err := writeJournal(tx.root, tx.entries); err != nil {
			return err
		}
	}
	if err := os.Remove(journalPath(tx.root)); err != nil && !os.IsNotExist(err) {
		return jinerr.Wrap(jinerr.KindIO, "remove transaction journal", err)
	}
	return nil
}

// Abort discards the transaction without touching any ref.
func (tx *Tx) Abort() error {
	defer tx.lock.Unlock()
	if err := os.Remove(journalPath(tx.root)); err != nil && !os.IsNotExist(err) {
		return jinerr.Wrap(jinerr.KindIO, "remove transaction journal", err)
	}
	return nil
}

// Recover runs crash recovery against store: for every journal entry
// marked applied, the ref is already at new_oid (no-op); for every
// entry still pending, the ref is restored to old_oid (or deleted if
// old_oid was unset); the journal is then deleted. Recover is
// idempotent — running it twice in a row is identical to running it
// once, since a clean journal-less store is simply a no-op call.
func Recover(store *objstore.Store) error {
	root := store.Root
	if !Exists(root) {
		return nil
	}

	data, err := os.ReadFile(journalPath(root))
	if err != nil {
		return jinerr.Wrap(jinerr.KindIO, "read transaction journal", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return jinerr.Wrap(jinerr.KindParse, "parse transaction journal entry", err)
		}
		if e.Status == StatusApplied {
			continue
		}
		if e.OldOID == nil {
			if err := store.DeleteRef(e.RefPath); err != nil {
				return err
			}
			continue
		}
		if err := store.SetRef(e.RefPath, *e.OldOID, "transaction rollback"); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return jinerr.Wrap(jinerr.KindParse, "scan transaction journal", err)
	}

	if err := os.Remove(journalPath(root)); err != nil && !os.IsNotExist(err) {
		return jinerr.Wrap(jinerr.KindIO, "remove transaction journal after recovery", err)
	}
	return nil
}
