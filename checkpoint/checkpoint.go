// Package checkpoint persists sampler progress to a bolt database so
// interrupted calibration runs can be resumed.
package checkpoint

import (
	"encoding/json"
	"math"
	"time"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"
)

// log is the global logging variable.
var log = logging.MustGetLogger("checkpoint")

// MAIN is the bucket holding all run records.
var MAIN = []byte("main")

// State is the sampler state stored for a run.
type State struct {
	Run      string
	Iter     int
	Theta    []float64
	LogPost  float64
	Accepted int
	// Factor is the row-major proposal factor at Iter.
	Factor []float64
	Dim    int
	Seed   int64
	Final  bool
	Saved  time.Time
}

// Store reads and writes run states and throttles periodic saves. A
// nil store ignores all operations, so callers need not special-case
// running without a checkpoint database.
type Store struct {
	db      *bolt.DB
	key     []byte
	last    time.Time
	seconds float64
}

// Open opens (creating when needed) the bolt database at path and
// scopes the store to the named run. seconds is the minimum wall-clock
// time between periodic saves.
func Open(path, run string, seconds float64) (*Store, error) {
	db, err := bolt.Open(path, 0644, nil)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:      db,
		key:     []byte(run),
		seconds: seconds,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes the state for the run. A state without a finite log
// posterior is not worth resuming from and is skipped. Failures are
// logged and returned; callers normally keep sampling.
func (s *Store) Save(state *State) error {
	if s == nil || s.db == nil {
		return nil
	}
	// Even if saving fails, we do not want to run this code too often.
	s.SetNow()
	if math.IsInf(state.LogPost, 0) || math.IsNaN(state.LogPost) {
		log.Warning("State has no finite log posterior, skipping checkpoint.")
		return nil
	}
	state.Saved = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		log.Error("Error serializing checkpoint: ", err)
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}
		return b.Put(s.key, data)
	})
	if err != nil {
		log.Error("Error saving checkpoint: ", err)
	}
	return err
}

// Load returns the stored state for the run, or nil when there is
// none.
func (s *Store) Load() (*State, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}
		v := b.Get(s.key)
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil || data == nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if len(state.Theta) == 0 {
		return nil, nil
	}

	if state.Final {
		log.Noticef("Found finished run checkpoint (iter=%v, log posterior=%v)",
			state.Iter, state.LogPost)
	} else {
		log.Noticef("Found unfinished run checkpoint (iter=%v, log posterior=%v)",
			state.Iter, state.LogPost)
	}
	return &state, nil
}

// Old returns true if the last checkpoint save was too long ago.
func (s *Store) Old() bool {
	if s == nil {
		return false
	}
	return time.Since(s.last).Seconds() > s.seconds
}

// SetNow sets the last checkpoint time to now.
func (s *Store) SetNow() {
	if s == nil {
		return
	}
	s.last = time.Now()
}
