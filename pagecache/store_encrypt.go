package pagecache

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
	"time"
)

var (
	encryptionMagic = []byte("PEN1")

	ErrEncryptionKey = errors.New("pagecache: encryption key must be 16, 24, or 32 bytes")
	ErrDecryptFailed = errors.New("pagecache: decrypt failed")
)

// encryptingStore seals values with AES-GCM before they reach a shared
// backend. The cache key is the additional data, so a ciphertext copied to a
// different key fails to open.
type encryptingStore struct {
	inner Store
	aead  cipher.AEAD
}

func newEncryptingStore(inner Store, key []byte) (Store, error) {
	if len(key) == 0 {
		return inner, nil
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrEncryptionKey
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &encryptingStore{inner: inner, aead: aead}, nil
}

func (s *encryptingStore) Driver() Driver { return s.inner.Driver() }

func (s *encryptingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return body, ok, err
	}
	plain, err := s.open(key, body)
	if err != nil {
		return nil, false, err
	}
	return plain, true, nil
}

func (s *encryptingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed, ttl)
}

func (s *encryptingStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *encryptingStore) Flush(ctx context.Context) error {
	return s.inner.Flush(ctx)
}

// Layout: magic | nonce | ciphertext+tag.
func (s *encryptingStore) seal(key string, plain []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	buf := make([]byte, len(encryptionMagic)+nonceSize, len(encryptionMagic)+nonceSize+len(plain)+s.aead.Overhead())
	copy(buf, encryptionMagic)
	nonce := buf[len(encryptionMagic):]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(buf, nonce, plain, []byte(key)), nil
}

// Values written before encryption was enabled carry no magic and are returned as-is.
func (s *encryptingStore) open(key string, in []byte) ([]byte, error) {
	if !bytes.HasPrefix(in, encryptionMagic) {
		return in, nil
	}
	rest := in[len(encryptionMagic):]
	nonceSize := s.aead.NonceSize()
	if len(rest) < nonceSize+s.aead.Overhead() {
		return nil, ErrDecryptFailed
	}
	plain, err := s.aead.Open(nil, rest[:nonceSize], rest[nonceSize:], []byte(key))
	if err != nil {
		return nil, ErrDecryptFailed
	}
	if plain == nil {
		plain = []byte{}
	}
	return plain, nil
}
