package pagecache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

var errNATSUnavailable = errors.New("pagecache: nats key-value unavailable")

// NATSKeyValue captures the subset of nats.KeyValue used by the store.
type NATSKeyValue interface {
	Get(key string) (nats.KeyValueEntry, error)
	Put(key string, value []byte) (uint64, error)
	Delete(key string, opts ...nats.DeleteOpt) error
	Purge(key string, opts ...nats.DeleteOpt) error
	ListKeys(opts ...nats.WatchOpt) (nats.KeyLister, error)
}

const natsPageFormat = "page-v2"

// natsPageRecord is the JSON value written for each page. ExpiresAt is zero
// when the bucket's max age governs expiry.
type natsPageRecord struct {
	Format    string `json:"fmt"`
	Page      string `json:"page"`
	Content   []byte `json:"content"`
	StoredAt  int64  `json:"stored_at"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

func (r natsPageRecord) expired(now time.Time) bool {
	return r.ExpiresAt > 0 && now.UnixMilli() > r.ExpiresAt
}

// decodeNATSPageRecord reports ok=false for values that are not page records,
// such as pages written into a shared bucket by another tool.
func decodeNATSPageRecord(body []byte) (natsPageRecord, bool) {
	var record natsPageRecord
	if len(body) == 0 || body[0] != '{' {
		return record, false
	}
	if err := json.Unmarshal(body, &record); err != nil || record.Format != natsPageFormat {
		return natsPageRecord{}, false
	}
	return record, true
}

// natsStore keeps pages in a JetStream key-value bucket under
// pages.<prefix>.<name>, with prefix and name base64 encoded because KV keys
// only allow a restricted alphabet.
type natsStore struct {
	kv         NATSKeyValue
	defaultTTL time.Duration
	scope      string
	bucketTTL  bool
	now        func() time.Time
}

func newNATSStore(kv NATSKeyValue, defaultTTL time.Duration, prefix string, bucketTTL bool) Store {
	if defaultTTL <= 0 {
		defaultTTL = defaultCacheTTL
	}
	if prefix == "" {
		prefix = defaultCachePrefix
	}
	return &natsStore{
		kv:         kv,
		defaultTTL: defaultTTL,
		scope:      "pages." + natsKeyToken(prefix) + ".",
		bucketTTL:  bucketTTL,
		now:        time.Now,
	}
}

func (s *natsStore) Driver() Driver { return DriverNATS }

func (s *natsStore) Get(_ context.Context, name string) ([]byte, bool, error) {
	if s.kv == nil {
		return nil, false, errNATSUnavailable
	}
	key := s.pageKey(name)
	entry, err := s.kv.Get(key)
	switch {
	case isNATSMiss(err):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	if op := entry.Operation(); op == nats.KeyValueDelete || op == nats.KeyValuePurge {
		return nil, false, nil
	}

	record, ok := decodeNATSPageRecord(entry.Value())
	if !ok {
		return cloneBytes(entry.Value()), true, nil
	}
	if record.Page != name {
		return nil, false, nil
	}
	if record.expired(s.now()) {
		_ = s.kv.Purge(key)
		return nil, false, nil
	}
	return record.Content, true, nil
}

func (s *natsStore) Set(_ context.Context, name string, content []byte, ttl time.Duration) error {
	if s.kv == nil {
		return errNATSUnavailable
	}
	now := s.now()
	record := natsPageRecord{
		Format:   natsPageFormat,
		Page:     name,
		Content:  content,
		StoredAt: now.UnixMilli(),
	}
	if !s.bucketTTL {
		if ttl <= 0 {
			ttl = s.defaultTTL
		}
		record.ExpiresAt = now.Add(ttl).UnixMilli()
	}
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("pagecache: encode page %q: %w", name, err)
	}
	_, err = s.kv.Put(s.pageKey(name), body)
	return err
}

func (s *natsStore) Delete(_ context.Context, name string) error {
	if s.kv == nil {
		return errNATSUnavailable
	}
	if err := s.kv.Delete(s.pageKey(name)); err != nil && !isNATSMiss(err) {
		return err
	}
	return nil
}

// Flush purges the pages under this store's prefix only.
func (s *natsStore) Flush(_ context.Context) error {
	if s.kv == nil {
		return errNATSUnavailable
	}
	lister, err := s.kv.ListKeys(nats.IgnoreDeletes())
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = lister.Stop() }()

	for key := range lister.Keys() {
		if !strings.HasPrefix(key, s.scope) {
			continue
		}
		if err := s.kv.Purge(key); err != nil && !isNATSMiss(err) {
			return err
		}
	}
	for err := range lister.Error() {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *natsStore) pageKey(name string) string {
	return s.scope + natsKeyToken(name)
}

func isNATSMiss(err error) bool {
	return errors.Is(err, nats.ErrKeyNotFound) || errors.Is(err, nats.ErrKeyDeleted)
}

func natsKeyToken(part string) string {
	if part == "" {
		return "_"
	}
	return base64.RawURLEncoding.EncodeToString([]byte(part))
}
