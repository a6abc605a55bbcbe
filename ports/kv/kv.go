// Package kv defines a minimal port to a key-value source of record. The
// loader package reads through the cache into a [Store]; [Source] bridges a
// store into a loader source.
package kv

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Get when the store holds nothing for the key.
var ErrNotFound = errors.New("not found")

// Store is the raw byte-level contract of a source of record.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Put marshals v as JSON and stores it under key.
func Put[T any](ctx context.Context, store Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, data)
}

// Get loads the value under key and unmarshals it into T.
func Get[T any](ctx context.Context, store Store, key string) (out T, err error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		return
	}
	err = json.Unmarshal(data, &out)
	if err != nil {
		return
	}
	return
}

// Source adapts store into a typed fetch function with the signature the
// loader package expects of a source.
func Source[T any](store Store) func(ctx context.Context, key string) (T, error) {
	return func(ctx context.Context, key string) (T, error) {
		return Get[T](ctx, store, key)
	}
}
