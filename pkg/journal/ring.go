// Copyright (c) 2017 OysterPack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package journal

import (
	"encoding/binary"
	"os"
	"strings"
	"time"

	bolt "github.com/coreos/bbolt"
)

const (
	// READ_WRITE_MODE is the file mode used for the ring file
	READ_WRITE_MODE os.FileMode = 0600

	openTimeout = time.Second * 30
)

var (
	recordsBucket = []byte("records")
	metaBucket    = []byte("meta")

	createdKey = []byte("created")
)

// Ring is an ordered store of records with a fixed capacity.
//
// Records are keyed by a monotonically increasing sequence. Once the capacity is
// reached, Append fails with ErrRingFull - records are never overwritten.
type Ring interface {
	// Append stores the record at the next sequence.
	// ErrRingFull is returned if the ring is at capacity.
	Append(record []byte) error

	// Replay streams all stored records, oldest first.
	// Iteration stops on the first error returned by fn, and that error is returned.
	Replay(fn func(record []byte) error) error

	// Len returns the number of stored records
	Len() (int, error)

	// Capacity returns the maximum number of records the ring can hold
	Capacity() int

	// Close releases the underlying database resources
	Close() error
}

// OpenRing opens the ring stored in the bbolt file at filePath, creating the file
// if it does not exist. capacity applies to new and existing rings alike.
func OpenRing(filePath string, capacity int) (Ring, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, ErrFilePathIsBlank
	}
	if capacity <= 0 {
		return nil, ErrCapacityMustBePositive
	}

	if stat, err := os.Stat(filePath); err == nil && stat.IsDir() {
		return nil, errRingFilePathIsDir(filePath)
	}

	options := &bolt.Options{
		Timeout: openTimeout,
	}

	db, err := bolt.Open(filePath, READ_WRITE_MODE, options)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(recordsBucket); err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		if meta.Get(createdKey) == nil {
			created, err := time.Now().MarshalBinary()
			if err != nil {
				return err
			}
			return meta.Put(createdKey, created)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &boltRing{db: db, capacity: capacity}, nil
}

type boltRing struct {
	db       *bolt.DB
	capacity int
}

func (a *boltRing) Append(record []byte) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordsBucket)
		if int(b.Sequence()) >= a.capacity {
			return ErrRingFull
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, record)
	})
}

func (a *boltRing) Replay(fn func(record []byte) error) error {
	return a.db.View(func(tx *bolt.Tx) error {
		// keys are big-endian sequences, thus iteration order is append order
		return tx.Bucket(recordsBucket).ForEach(func(k, v []byte) error {
			return fn(v)
		})
	})
}

func (a *boltRing) Len() (int, error) {
	n := 0
	err := a.db.View(func(tx *bolt.Tx) error {
		n = int(tx.Bucket(recordsBucket).Sequence())
		return nil
	})
	return n, err
}

func (a *boltRing) Capacity() int {
	return a.capacity
}

func (a *boltRing) Close() error {
	return a.db.Close()
}
