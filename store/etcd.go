package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdConfig configures the etcd-backed manifest store.
type EtcdConfig struct {
	// Endpoints are the etcd cluster endpoints (required).
	Endpoints []string

	// Namespace prefixes every key; "trellis" when empty.
	Namespace string

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration
}

// Etcd is a Store keeping manifests in an etcd cluster, shared by every
// node running the plugin manager.
//
// Thread-safety: all methods are safe for concurrent use.
type Etcd struct {
	client *clientv3.Client
	prefix string
}

// NewEtcd connects to the cluster and returns the store. The client must
// be closed with Close when no longer needed.
func NewEtcd(cfg EtcdConfig) (*Etcd, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints cannot be empty")
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "trellis"
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	return &Etcd{
		client: cli,
		prefix: namespace + "/discovery/manifest/",
	}, nil
}

// Put implements Store.
func (e *Etcd) Put(ctx context.Context, pkg string, manifest []byte) error {
	if _, err := e.client.Put(ctx, e.prefix+pkg, string(manifest)); err != nil {
		return fmt.Errorf("failed to store manifest for %s: %w", pkg, err)
	}
	return nil
}

// Get implements Store.
func (e *Etcd) Get(ctx context.Context, pkg string) ([]byte, error) {
	resp, err := e.client.Get(ctx, e.prefix+pkg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest for %s: %w", pkg, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, ErrNotFound
	}
	return resp.Kvs[0].Value, nil
}

// Delete implements Store.
func (e *Etcd) Delete(ctx context.Context, pkg string) error {
	if _, err := e.client.Delete(ctx, e.prefix+pkg); err != nil {
		return fmt.Errorf("failed to delete manifest for %s: %w", pkg, err)
	}
	return nil
}

// List implements Store.
func (e *Etcd) List(ctx context.Context) ([]string, error) {
	resp, err := e.client.Get(ctx, e.prefix,
		clientv3.WithPrefix(), clientv3.WithKeysOnly(), clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}
	pkgs := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		pkgs = append(pkgs, strings.TrimPrefix(string(kv.Key), e.prefix))
	}
	return pkgs, nil
}

// Close implements Store.
func (e *Etcd) Close() error {
	return e.client.Close()
}
