// Package kvstore keeps tasks as JSON documents in a NATS JetStream
// key-value bucket, one key per task id.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/fluxorio/todolist/internal/task"
	"github.com/nats-io/nats.go"
)

// DefaultBucket is the bucket used when Config.Bucket is empty
const DefaultBucket = "todos"

var validKey = regexp.MustCompile(`^[-/_=.a-zA-Z0-9]+$`)

// Config configures the NATS connection and bucket
type Config struct {
	URL    string
	Bucket string
	// Name identifies the connection on the server
	Name string
	// Storage is nats.FileStorage or nats.MemoryStorage (default file)
	Storage nats.StorageType
}

// Store is a task.Store over a JetStream KeyValue bucket
type Store struct {
	nc  *nats.Conn
	js  nats.JetStreamContext
	cfg Config
	now func() time.Time

	mu sync.Mutex
	kv nats.KeyValue
}

// Open connects to NATS. A server that is down is retried in the
// background; operations fail with task.ErrNotConnected until it is reachable.
func Open(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	if cfg.Name == "" {
		cfg.Name = "todo-api"
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &Store{nc: nc, js: js, cfg: cfg, now: time.Now}, nil
}

// bucket binds or creates the KV bucket on first successful use
func (s *Store) bucket() (nats.KeyValue, error) {
	if !s.nc.IsConnected() {
		return nil, task.ErrNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv != nil {
		return s.kv, nil
	}

	kv, err := s.js.KeyValue(s.cfg.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = s.js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:  s.cfg.Bucket,
			History: 1,
			Storage: s.cfg.Storage,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("bind bucket %s: %w", s.cfg.Bucket, err)
	}
	s.kv = kv
	return kv, nil
}

type document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *Store) Create(_ context.Context, d task.Draft) (*task.Task, error) {
	kv, err := s.bucket()
	if err != nil {
		return nil, err
	}

	t := task.New(d, s.now())
	data, err := json.Marshal(document(t))
	if err != nil {
		return nil, err
	}
	if _, err := kv.Create(t.ID, data); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) List(_ context.Context) ([]task.Task, error) {
	kv, err := s.bucket()
	if err != nil {
		return nil, err
	}

	tasks := make([]task.Task, 0)
	keys, err := kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return tasks, nil
	}
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		entry, err := kv.Get(key)
		if errors.Is(err, nats.ErrKeyNotFound) {
			// deleted between Keys and Get
			continue
		}
		if err != nil {
			return nil, err
		}
		t, err := decode(entry.Value())
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Update is a read-modify-write guarded by the entry revision, so the stored
// document always holds exactly one writer's result. A revision conflict is
// retried until the write lands or ctx is done; the last writer wins.
func (s *Store) Update(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	if !validKey.MatchString(id) {
		return nil, nil
	}
	kv, err := s.bucket()
	if err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, err := kv.Get(id)
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		current, err := decode(entry.Value())
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", id, err)
		}
		next := p.Apply(current)
		data, err := json.Marshal(document(next))
		if err != nil {
			return nil, err
		}

		if _, err := kv.Update(id, data, entry.Revision()); err != nil {
			if isRevisionConflict(err) {
				continue
			}
			return nil, err
		}
		return &next, nil
	}
}

func (s *Store) Delete(_ context.Context, id string) error {
	if !validKey.MatchString(id) {
		return nil
	}
	kv, err := s.bucket()
	if err != nil {
		return err
	}
	if err := kv.Delete(id); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return err
	}
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	if !s.nc.IsConnected() {
		return task.ErrNotConnected
	}
	return s.nc.Flush()
}

func (s *Store) Close() error {
	s.nc.Close()
	return nil
}

func decode(data []byte) (task.Task, error) {
	var d document
	if err := json.Unmarshal(data, &d); err != nil {
		return task.Task{}, err
	}
	t := task.Task(d)
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func isRevisionConflict(err error) bool {
	var apiErr *nats.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == nats.JSErrCodeStreamWrongLastSequence
	}
	return errors.Is(err, nats.ErrKeyExists)
}
