package persistence

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/markusressel/alt2go/internal/configuration"
	"github.com/markusressel/alt2go/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketSettings = "settings"
	BucketEvents   = "events"

	KeyLimits  = "limits"
	KeyEnabled = "enabled"
)

// EventEntry is a regulator event as stored in the event log
type EventEntry struct {
	Time  time.Time `json:"time"`
	Field string    `json:"field"`
	Event string    `json:"event"`
	// duty after the tick that emitted the event
	Duty int `json:"duty"`
}

func (e EventEntry) String() string {
	return fmt.Sprintf("%s %s: %s (duty %d)", e.Time.Format(time.RFC3339), e.Field, e.Event, e.Duty)
}

type Persistence interface {
	Init() error

	LoadLimits(fieldId string) (configuration.LimitsConfig, error)
	SaveLimits(fieldId string, limits configuration.LimitsConfig) error
	DeleteLimits(fieldId string) error

	LoadEnabled(fieldId string) (bool, error)
	SaveEnabled(fieldId string, enabled bool) error

	// AppendEvent adds an entry to the event log, dropping the oldest entries
	// so that at most maxEntries remain
	AppendEvent(entry EventEntry, maxEntries int) error
	// LoadEvents returns up to limit of the most recent entries, oldest first.
	// limit <= 0 returns all entries.
	LoadEvents(limit int) ([]EventEntry, error)
	ClearEvents() error
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	// get parent path of dbPath
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		// create directory
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// update runs fn in a read-write transaction on a freshly opened database
func (p persistence) update(fn func(tx *bolt.Tx) error) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(fn)
}

// saveSetting stores value as json below the settings bucket of the given field
func (p persistence) saveSetting(fieldId string, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return p.update(func(tx *bolt.Tx) error {
		settings, err := tx.CreateBucketIfNotExists([]byte(BucketSettings))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		b, err := settings.CreateBucketIfNotExists([]byte(fieldId))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return b.Put([]byte(key), data)
	})
}

// loadSetting reads a json value below the settings bucket of the given field.
// Corrupt values are deleted and reported as missing.
func (p persistence) loadSetting(fieldId string, key string, value interface{}) error {
	return p.update(func(tx *bolt.Tx) error {
		settings := tx.Bucket([]byte(BucketSettings))
		if settings == nil {
			return os.ErrNotExist
		}
		b := settings.Bucket([]byte(fieldId))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(key))
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, value)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved %s of %s: %v", key, fieldId, err)
			err := b.Delete([]byte(key))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", key, err)
			}
			return os.ErrNotExist
		}
		return nil
	})
}

// SaveLimits persists runtime overrides of the configured limits
func (p persistence) SaveLimits(fieldId string, limits configuration.LimitsConfig) error {
	return p.saveSetting(fieldId, KeyLimits, limits)
}

// LoadLimits loads runtime overrides of the configured limits
func (p persistence) LoadLimits(fieldId string) (configuration.LimitsConfig, error) {
	var limits configuration.LimitsConfig
	err := p.loadSetting(fieldId, KeyLimits, &limits)
	return limits, err
}

func (p persistence) DeleteLimits(fieldId string) error {
	return p.update(func(tx *bolt.Tx) error {
		settings := tx.Bucket([]byte(BucketSettings))
		if settings == nil {
			// nothing saved yet
			return nil
		}
		b := settings.Bucket([]byte(fieldId))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(KeyLimits))
	})
}

func (p persistence) SaveEnabled(fieldId string, enabled bool) error {
	return p.saveSetting(fieldId, KeyEnabled, enabled)
}

func (p persistence) LoadEnabled(fieldId string) (bool, error) {
	var enabled bool
	err := p.loadSetting(fieldId, KeyEnabled, &enabled)
	return enabled, err
}

func (p persistence) AppendEvent(entry EventEntry, maxEntries int) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return p.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketEvents))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err = b.Put(itob(seq), data); err != nil {
			return err
		}

		if maxEntries <= 0 || seq <= uint64(maxEntries) {
			return nil
		}
		// keys are ordered by sequence, so the oldest entries come first
		oldestKept := itob(seq - uint64(maxEntries) + 1)
		c := b.Cursor()
		for k, _ := c.First(); k != nil && string(k) < string(oldestKept); k, _ = c.First() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p persistence) LoadEvents(limit int) ([]EventEntry, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var result []EventEntry
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketEvents))
		if b == nil {
			return nil
		}

		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(result) >= limit {
				break
			}
			var entry EventEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				ui.Warning("Skipping corrupt event log entry: %v", err)
				continue
			}
			result = append(result, entry)
		}
		return nil
	})

	// collected newest first
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, err
}

func (p persistence) ClearEvents() error {
	return p.update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(BucketEvents)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(BucketEvents))
	})
}

// itob returns an 8-byte big endian representation of v
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
