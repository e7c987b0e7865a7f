package services

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"mcx-exporter/internal/common"
	"mcx-exporter/internal/interfaces"

	bolt "go.etcd.io/bbolt"
)

const (
	casesBucket    = "cases"
	inboxBucket    = "inbox"
	metadataBucket = "metadata"
	lastUpdateKey  = "last_update"
)

type storage struct {
	db     *bolt.DB
	config *common.StorageConfig
}

// NewStorage opens (or creates) the local bbolt database that caches
// collected case snapshots between runs.
func NewStorage(config *common.StorageConfig) (interfaces.Storage, error) {
	dbDir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if config.BackupDir != "" {
		if err := os.MkdirAll(config.BackupDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create backup directory: %w", err)
		}
	}

	db, err := bolt.Open(config.DatabasePath, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(casesBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(inboxBucket)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(metadataBucket)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &storage{
		db:     db,
		config: config,
	}, nil
}

func (s *storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveCase stores one case snapshot, preserving the original collection
// time and bumping the version when the case was seen before.
func (s *storage) SaveCase(record *interfaces.CaseRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(casesBucket))
		now := time.Now()

		key := caseKey(record.CaseID)
		if existing := bucket.Get(key); existing != nil {
			var prev interfaces.CaseRecord
			if err := json.Unmarshal(existing, &prev); err == nil {
				record.Version = prev.Version + 1
				record.Collected = prev.Collected
			}
		} else {
			record.Version = 1
			record.Collected = now
		}
		record.Updated = now

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal case %d: %w", record.CaseID, err)
		}
		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to save case %d: %w", record.CaseID, err)
		}

		metaBucket := tx.Bucket([]byte(metadataBucket))
		lastUpdateData, _ := now.MarshalBinary()
		return metaBucket.Put([]byte(lastUpdateKey), lastUpdateData)
	})
}

func (s *storage) LoadCase(caseID int) (*interfaces.CaseRecord, error) {
	var record *interfaces.CaseRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(casesBucket))
		data := bucket.Get(caseKey(caseID))
		if data == nil {
			return fmt.Errorf("case %d not found", caseID)
		}

		record = &interfaces.CaseRecord{}
		return json.Unmarshal(data, record)
	})

	return record, err
}

func (s *storage) LoadAllCases() ([]*interfaces.CaseRecord, error) {
	var records []*interfaces.CaseRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(casesBucket))

		return bucket.ForEach(func(k, v []byte) error {
			var record interfaces.CaseRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return nil // skip unreadable entries
			}
			records = append(records, &record)
			return nil
		})
	})

	return records, err
}

// SaveInboxRows replaces the cached inbox with the latest raw rows, keyed by
// row index to preserve order.
func (s *storage) SaveInboxRows(rows [][]byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(inboxBucket)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		bucket, err := tx.CreateBucket([]byte(inboxBucket))
		if err != nil {
			return err
		}

		for i, row := range rows {
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, uint64(i))
			if err := bucket.Put(key, row); err != nil {
				return fmt.Errorf("failed to save inbox row %d: %w", i, err)
			}
		}
		return nil
	})
}

func (s *storage) LoadInboxRows() ([][]byte, error) {
	var rows [][]byte

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(inboxBucket))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			row := make([]byte, len(v))
			copy(row, v)
			rows = append(rows, row)
			return nil
		})
	})

	return rows, err
}

func (s *storage) CaseCount() (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket([]byte(casesBucket)).Stats().KeyN
		return nil
	})
	return count, err
}

func (s *storage) LastUpdate() (time.Time, error) {
	var lastUpdate time.Time

	err := s.db.View(func(tx *bolt.Tx) error {
		metaBucket := tx.Bucket([]byte(metadataBucket))
		data := metaBucket.Get([]byte(lastUpdateKey))
		if data == nil {
			return fmt.Errorf("no last update time recorded")
		}
		return lastUpdate.UnmarshalBinary(data)
	})

	return lastUpdate, err
}

func (s *storage) Backup() error {
	if s.config.BackupDir == "" {
		return nil
	}

	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(s.config.BackupDir, fmt.Sprintf("exporter_%s.db", timestamp))

	return s.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(backupPath, 0600)
	})
}

// CleanupOldData deletes case snapshots not updated within the retention
// window.
func (s *storage) CleanupOldData() error {
	if s.config.RetentionDays <= 0 {
		return nil
	}

	cutoffDate := time.Now().AddDate(0, 0, -s.config.RetentionDays)

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(casesBucket))
		c := bucket.Cursor()

		var keysToDelete [][]byte
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var record interfaces.CaseRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue
			}
			if record.Updated.Before(cutoffDate) {
				keysToDelete = append(keysToDelete, k)
			}
		}

		for _, key := range keysToDelete {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete old case: %w", err)
			}
		}
		return nil
	})
}

func caseKey(caseID int) []byte {
	return []byte(strconv.Itoa(caseID))
}
