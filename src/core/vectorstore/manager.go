// Package vectorstore loads domain documents, splits them and keeps one
// indexed store per domain.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/tmc/langchaingo/vectorstores"

	"ragrouter/src/log"
)

var ErrStoreNotFound = errors.New("vector store not found")

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Domain pairs a store name with the folder holding its documents.
type Domain struct {
	Name string
	Dir  string
}

var Domains = []Domain{
	{Name: "hr", Dir: "hr_docs"},
	{Name: "tech", Dir: "tech_docs"},
	{Name: "finance", Dir: "finance_docs"},
}

// Store is an indexed collection the manager can rebuild.
type Store interface {
	vectorstores.VectorStore
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// StoreFactory opens the backend store for a domain name.
type StoreFactory func(name string) (Store, error)

type Manager struct {
	source   DocumentSource
	factory  StoreFactory
	splitter textsplitter.TextSplitter
	reindex  bool
	logger   logr.Logger

	mu     sync.RWMutex
	stores map[string]Store
}

type Option func(*Manager)

func WithChunking(size, overlap int) Option {
	return func(m *Manager) {
		m.splitter = textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		)
	}
}

// WithReindex forces SetupAllStores to rebuild stores that already hold data.
func WithReindex(reindex bool) Option {
	return func(m *Manager) {
		m.reindex = reindex
	}
}

func NewManager(source DocumentSource, factory StoreFactory, opts ...Option) *Manager {
	m := &Manager{
		source:  source,
		factory: factory,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(DefaultChunkSize),
			textsplitter.WithChunkOverlap(DefaultChunkOverlap),
		),
		logger: log.WithName("vectorstore"),
		stores: make(map[string]Store),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadDocuments reads every text document in dir from the configured source.
func (m *Manager) LoadDocuments(ctx context.Context, dir string) ([]schema.Document, error) {
	docs, err := m.source.Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	m.logger.V(1).Info("loaded documents", "dir", dir, "source", m.source.Name(), "count", len(docs))
	return docs, nil
}

// CreateVectorStore splits docs, indexes them into a freshly reset store and
// registers it under name.
func (m *Manager) CreateVectorStore(ctx context.Context, docs []schema.Document, name string) (Store, error) {
	store, err := m.factory(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", name, err)
	}
	if err := store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset store %s: %w", name, err)
	}

	chunks, err := textsplitter.SplitDocuments(m.splitter, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to split documents for %s: %w", name, err)
	}
	if len(chunks) == 0 {
		m.logger.Info("no documents to index, store is empty", "store", name)
	} else if _, err := store.AddDocuments(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to index documents for %s: %w", name, err)
	}

	m.Register(name, store)
	m.logger.Info("created vector store", "store", name, "documents", len(docs), "chunks", len(chunks))
	return store, nil
}

// Register makes store available under name, replacing any previous one.
func (m *Manager) Register(name string, store Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores[name] = store
}

// GetVectorStore returns the store registered under name.
func (m *Manager) GetVectorStore(name string) (Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	store, ok := m.stores[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrStoreNotFound, name, strings.Join(m.namesLocked(), ", "))
	}
	return store, nil
}

// SetupAllStores prepares the store of every domain. Stores that already
// hold chunks are reused unless reindexing was requested.
func (m *Manager) SetupAllStores(ctx context.Context) error {
	for _, d := range Domains {
		if !m.reindex {
			store, err := m.factory(d.Name)
			if err != nil {
				return fmt.Errorf("failed to open store %s: %w", d.Name, err)
			}
			n, err := store.Count(ctx)
			if err != nil {
				return fmt.Errorf("failed to count store %s: %w", d.Name, err)
			}
			if n > 0 {
				m.Register(d.Name, store)
				m.logger.Info("reusing vector store", "store", d.Name, "chunks", n)
				continue
			}
		}

		docs, err := m.LoadDocuments(ctx, d.Dir)
		if err != nil {
			return err
		}
		if _, err := m.CreateVectorStore(ctx, docs, d.Name); err != nil {
			return err
		}
	}
	return nil
}

// Names lists the registered stores in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.namesLocked()
}

func (m *Manager) namesLocked() []string {
	names := make([]string, 0, len(m.stores))
	for name := range m.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
