package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollamaapi "github.com/ollama/ollama/api"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ragrouter/src/config"
	"ragrouter/src/core/agents"
	"ragrouter/src/core/parser"
	"ragrouter/src/core/system"
	"ragrouter/src/core/vectorstore"
	"ragrouter/src/fsutil"
	"ragrouter/src/llm"
	"ragrouter/src/log"
	"ragrouter/src/storage/minioctrl"
	"ragrouter/src/storage/qdrant"
	"ragrouter/src/storage/weaviate"
	"ragrouter/src/tracing"
)

// application holds everything a command needs to answer queries.
type application struct {
	settings *config.Settings
	manager  *vectorstore.Manager
	system   *system.System
	db       *gorm.DB
	checks   []system.Component
	closers  []func() error
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Error(err, "Failed to close resource")
		}
	}
}

// database opens the PostgreSQL connection once.
func (a *application) database() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := gorm.Open(postgres.Open(a.settings.Postgres.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, sqlDB.Close)
	a.checks = append(a.checks, system.Component{Name: "postgres", Check: sqlDB.PingContext})
	return db, nil
}

// newStoreManager connects the document source and the vector backend.
func newStoreManager(ctx context.Context, s *config.Settings) (*application, error) {
	app := &application{settings: s}

	embedder, err := llm.NewEmbedder(s.LLM)
	if err != nil {
		app.Close()
		return nil, err
	}

	var factory vectorstore.StoreFactory
	switch s.VectorStore.Backend {
	case "qdrant":
		client, err := qdrant.NewClient(qdrant.Config{
			Host:   s.Qdrant.Host,
			Port:   s.Qdrant.Port,
			APIKey: s.Qdrant.APIKey,
			UseTLS: s.Qdrant.UseTLS,
		})
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		app.checks = append(app.checks, system.Component{Name: "qdrant", Check: func(ctx context.Context) error {
			_, err := client.HealthCheck(ctx)
			return err
		}})
		factory = vectorstore.QdrantFactory(client, embedder, s.VectorStore.IndexPrefix)
	default:
		sdk := weaviate.NewClient(s.Weaviate.URL, s.Weaviate.Scheme)
		app.checks = append(app.checks, system.Component{Name: "weaviate", Check: func(ctx context.Context) error {
			ok, err := sdk.Ready(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("weaviate is not ready")
			}
			return nil
		}})
		var opts []weaviate.StoreOption
		if s.Weaviate.HybridAlpha > 0 {
			opts = append(opts, weaviate.WithHybridAlpha(s.Weaviate.HybridAlpha))
		}
		factory = vectorstore.WeaviateFactory(sdk, embedder, s.VectorStore.IndexPrefix, opts...)
	}

	var source vectorstore.DocumentSource
	switch s.RAG.Source {
	case "minio":
		svc, err := newMinioService(s)
		if err != nil {
			app.Close()
			return nil, err
		}
		source = vectorstore.NewMinioSource(svc, s.Minio.Bucket)
	default:
		source = vectorstore.NewLocalSource(fsutil.NewLocalFileStore(), s.RAG.DataDir)
	}

	if s.LLM.Provider == llm.ProviderOllama || s.LLM.Provider == llm.ProviderAnthropic {
		check, err := ollamaCheck(s.LLM.OllamaURL)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.checks = append(app.checks, check)
	}

	app.manager = vectorstore.NewManager(source, factory,
		vectorstore.WithChunking(s.RAG.ChunkSize, s.RAG.ChunkOverlap),
		vectorstore.WithReindex(s.RAG.Reindex),
	)
	return app, nil
}

// newApplication builds the full query pipeline: stores, agents and tracing.
func newApplication(ctx context.Context, s *config.Settings) (*application, error) {
	app, err := newStoreManager(ctx, s)
	if err != nil {
		return nil, err
	}

	model, err := llm.NewModel(s.LLM)
	if err != nil {
		app.Close()
		return nil, err
	}

	tracer, err := app.newTracer()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, tracer.Close)

	log.Info("Setting up vector stores", "backend", s.VectorStore.Backend, "source", s.RAG.Source)
	if err := app.manager.SetupAllStores(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to set up vector stores: %w", err)
	}

	domainAgents := make(map[parser.Intent]system.Answerer, len(agents.Domains))
	for _, d := range agents.Domains {
		store, err := app.manager.GetVectorStore(string(d.Intent))
		if err != nil {
			app.Close()
			return nil, err
		}
		domainAgents[d.Intent] = agents.NewStoreAgent(model, store, d,
			agents.WithTracer(tracer),
			agents.WithTopK(s.RAG.TopK),
		)
	}

	app.system = system.New(system.Config{
		Router:            agents.NewOrchestrator(model, agents.WithTracer(tracer)),
		Agents:            domainAgents,
		Evaluator:         agents.NewEvaluator(model, agents.WithTracer(tracer)),
		Tracer:            tracer,
		StoreNames:        app.manager.Names,
		Provider:          s.LLM.Provider,
		Model:             s.LLM.Model,
		TracingConfigured: s.TracingConfigured(),
		Checks:            app.checks,
	})
	log.Info("Multi-agent system ready", "agents", len(domainAgents), "stores", app.manager.Names())
	return app, nil
}

func (a *application) newTracer() (tracing.Tracer, error) {
	switch a.settings.Tracing.Backend {
	case "postgres":
		db, err := a.database()
		if err != nil {
			return nil, err
		}
		return tracing.NewPostgresTracer(db)
	case "elasticsearch":
		t, err := tracing.NewElasticsearchTracer([]string{a.settings.Elasticsearch.URL}, a.settings.Tracing.Index)
		if err != nil {
			return nil, err
		}
		a.checks = append(a.checks, system.Component{Name: "elasticsearch", Check: t.Ping})
		return t, nil
	}
	return tracing.Noop{}, nil
}

func newMinioService(s *config.Settings) (*minioctrl.MinioService, error) {
	svc, err := minioctrl.NewMinioService(s.Minio.Endpoint, s.Minio.AccessKey, s.Minio.SecretKey, s.Minio.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio service: %w", err)
	}
	return svc, nil
}

func ollamaCheck(rawURL string) (system.Component, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return system.Component{}, fmt.Errorf("invalid ollama url %q: %w", rawURL, err)
	}
	client := ollamaapi.NewClient(base, &http.Client{Timeout: 10 * time.Second})
	return system.Component{Name: "ollama", Check: client.Heartbeat}, nil
}
