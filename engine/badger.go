package engine

import (
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/crypto/blake2b"

	"github.com/orneryd/substate"
	"github.com/orneryd/substate/stream"
)

// BadgerStorageEngine is a disk-backed conforming StorageEngine. It
// delegates live undo/redo replay to an embedded MemoryEngine — the action
// stack a running process walks for Execute is the same in-memory
// structure the reference engine uses — and additionally writes a durable
// checkpoint of every committed step to BadgerDB, each guarded by a
// blake2b-256 digest so a truncated or corrupted on-disk record is caught
// on read rather than silently misreplayed (§6.5, grounded on the
// teacher's storage.BadgerEngine and its pkg/auth/pkg/encryption use of
// golang.org/x/crypto for integrity primitives).
//
// Cross-process replay of the checkpoint log (reconstructing the action
// stack from disk after a restart) is not implemented: doing so requires a
// factory-based reader for every core action kind, which the core package
// does not expose (only user-registered action kinds round-trip through
// ActionFactory). The checkpoint log therefore serves as a durable,
// tamper-evident audit trail rather than a cross-process undo source.
type BadgerStorageEngine struct {
	*MemoryEngine
	db       *badger.DB
	dataDir  string
	checksum bool
	nextStep int
	log      *log.Logger
}

// NewBadgerStorageEngine opens (creating if necessary) a BadgerDB database
// under cfg.DataDir and returns a StorageEngine that checkpoints every
// committed step to it.
func NewBadgerStorageEngine(cfg Config) (*BadgerStorageEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("substate: create data dir: %w", err)
	}
	opts := badger.DefaultOptions(cfg.DataDir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("substate: open badger db: %w", err)
	}
	return &BadgerStorageEngine{
		MemoryEngine: NewMemoryEngine(cfg),
		db:           db,
		dataDir:      cfg.DataDir,
		checksum:     cfg.ChecksumEnabled,
		log:          log.New(os.Stderr, "substate/badger: ", log.LstdFlags),
	}, nil
}

// Close releases the underlying BadgerDB handle.
func (e *BadgerStorageEngine) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

func stepKey(step int) []byte {
	return []byte(fmt.Sprintf("step:%010d", step))
}

func checksumKey(step int) []byte {
	return []byte(fmt.Sprintf("checksum:%010d", step))
}

// Commit delegates to the in-memory stack for live replay, then persists a
// serialized checkpoint of the committed actions plus a blake2b-256
// digest.
func (e *BadgerStorageEngine) Commit(actions []substate.Action, message string) error {
	if err := e.MemoryEngine.Commit(actions, message); err != nil {
		return err
	}
	stepIndex := e.nextStep
	e.nextStep++

	w := stream.AcquireWriter()
	defer stream.ReleaseWriter(w)
	if err := w.WriteString(message); err != nil {
		return err
	}
	if err := w.WriteI32(int32(len(actions))); err != nil {
		return err
	}
	for _, a := range actions {
		if err := a.WriteTo(w); err != nil {
			return err
		}
	}
	payload := w.Bytes()

	return e.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(stepKey(stepIndex), payload); err != nil {
			return err
		}
		if e.checksum {
			sum := blake2b.Sum256(payload)
			if err := txn.Set(checksumKey(stepIndex), sum[:]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reset clears the in-memory stack and drops the on-disk checkpoint log,
// reopening an empty BadgerDB at the same path (§4.10 "reset").
func (e *BadgerStorageEngine) Reset() error {
	if err := e.MemoryEngine.Reset(); err != nil {
		return err
	}
	e.nextStep = 0
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			return err
		}
	}
	if err := os.RemoveAll(e.dataDir); err != nil {
		return fmt.Errorf("substate: clear data dir: %w", err)
	}
	if err := os.MkdirAll(e.dataDir, 0o755); err != nil {
		return fmt.Errorf("substate: recreate data dir: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(e.dataDir).WithLogger(nil))
	if err != nil {
		return fmt.Errorf("substate: reopen badger db: %w", err)
	}
	e.db = db
	return nil
}

// VerifyChecksum reads back step's persisted payload and reports whether
// its blake2b-256 digest still matches the one stored at commit time. A
// mismatch indicates a truncated or corrupted on-disk record (§7).
func (e *BadgerStorageEngine) VerifyChecksum(step int) (bool, error) {
	if !e.checksum {
		return true, nil
	}
	var payload, wantSum []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stepKey(step))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}
		sumItem, err := txn.Get(checksumKey(step))
		if err != nil {
			return err
		}
		wantSum, err = sumItem.ValueCopy(nil)
		return err
	})
	if err != nil {
		return false, err
	}
	got := blake2b.Sum256(payload)
	return string(got[:]) == string(wantSum), nil
}
