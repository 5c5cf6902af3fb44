// Package deepresearch wires the application together: configuration,
// corporate-network HTTP client, model adapter with retry classification,
// the routed file workspace, optional Redis-backed memory, optional
// PostgreSQL persistence and optional tracing. Construct an App once at
// startup and drive research runs through it.
package deepresearch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"go.opentelemetry.io/otel/trace"

	"github.com/gisard/deepresearch/agent"
	"github.com/gisard/deepresearch/backend"
	"github.com/gisard/deepresearch/config"
	"github.com/gisard/deepresearch/core"
	"github.com/gisard/deepresearch/db"
	"github.com/gisard/deepresearch/httpclient"
	"github.com/gisard/deepresearch/logging"
	"github.com/gisard/deepresearch/model"
	anthropicmodel "github.com/gisard/deepresearch/model/anthropic"
	openaimodel "github.com/gisard/deepresearch/model/openai"
	"github.com/gisard/deepresearch/research"
	"github.com/gisard/deepresearch/retry"
	"github.com/gisard/deepresearch/session"
	"github.com/gisard/deepresearch/store"
	"github.com/gisard/deepresearch/telemetry"
	"github.com/gisard/deepresearch/tool"
)

// Agent kinds selectable at run time.
const (
	AgentSimple     = "simple"
	AgentMemory     = "memory"
	AgentSequential = "sequential"
	AgentParallel   = "parallel"
)

// DefaultParallelTimeout bounds the specialist fan-out when unconfigured.
const DefaultParallelTimeout = 10 * time.Minute

// App is the assembled application. All collaborators are constructed once
// in New; none are global.
type App struct {
	cfg        *config.Config
	logger     logging.Logger
	httpClient *http.Client
	llm        model.Model
	classifier retry.Classifier
	kv         store.KV
	workspace  *backend.Composite
	sessions   core.SessionStore
	database   *db.DB
	repo       *db.ResearchRepo
	telemetry  *telemetry.Provider
	tracer     trace.Tracer
}

// Options allows tests to substitute collaborators before assembly.
type Options struct {
	Logger   logging.Logger
	Model    model.Model // Overrides the provider adapter
	KV       store.KV    // Overrides the configured memory store
	Sessions core.SessionStore
}

// New assembles the application from configuration. Optional subsystems
// (Redis, PostgreSQL, tracing) are only initialized when configured.
func New(ctx context.Context, cfg *config.Config, optFns ...func(o *Options)) (*App, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.New(cfg.Logging.LoggerConfig())
	}

	client, err := httpclient.New(func(o *httpclient.Options) {
		o.CertPath = cfg.CertPath
	})
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}

	app := &App{
		cfg:        cfg,
		logger:     logger,
		httpClient: client,
		sessions:   opts.Sessions,
	}
	if app.sessions == nil {
		app.sessions = session.NewInMemoryStore()
	}

	if opts.Model != nil {
		app.llm = opts.Model
	} else if err := app.initModel(); err != nil {
		return nil, err
	}

	if err := app.initMemory(opts.KV); err != nil {
		return nil, err
	}

	if cfg.HasDatabase() {
		database, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := database.Migrate(); err != nil {
			_ = database.Close()
			return nil, err
		}
		app.database = database
		app.repo = db.NewResearchRepo(database)
		logger.Info("database persistence enabled")
	}

	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	app.telemetry = provider
	app.tracer = provider.Tracer("deepresearch")

	return app, nil
}

// initModel constructs the provider adapter and its retry classifier.
func (a *App) initModel() error {
	switch a.cfg.Provider {
	case config.ProviderAnthropic:
		a.llm = anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.APIKey = a.cfg.AnthropicAPIKey
			o.HTTPClient = a.httpClient
			if a.cfg.Model != "" {
				o.Model = anthropicsdk.Model(a.cfg.Model)
			}
			if a.cfg.Temperature > 0 {
				o.Temperature = a.cfg.Temperature
			}
		})
		a.classifier = anthropicmodel.Classifier()
	case config.ProviderOpenAI:
		a.llm = openaimodel.NewModel(func(o *openaimodel.Options) {
			o.APIKey = a.cfg.OpenAIAPIKey
			o.HTTPClient = a.httpClient
			if a.cfg.Model != "" {
				o.Model = a.cfg.Model
			}
			if a.cfg.Temperature > 0 {
				o.Temperature = a.cfg.Temperature
			}
		})
		a.classifier = openaimodel.Classifier()
	default:
		return fmt.Errorf("unknown model provider %q", a.cfg.Provider)
	}
	return nil
}

// initMemory picks the KV store backing the persistent workspace prefixes.
func (a *App) initMemory(kv store.KV) error {
	if kv == nil {
		if a.cfg.HasRedis() {
			redisKV, err := store.NewRedisKV(a.cfg.Redis)
			if err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			kv = redisKV
			a.logger.Info("persistent memory enabled", "store", "redis")
		} else {
			kv = store.NewInMemoryKV()
			a.logger.Debug("using in-memory store, memory will not survive restarts")
		}
	}
	a.kv = kv
	a.workspace = research.NewWorkspace(kv, a.cfg.MemoryPrefixes)
	return nil
}

// Close releases all held resources. Safe to call once after use.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.kv != nil {
		if err := a.kv.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Repo exposes the research persistence layer; nil when no database is configured.
func (a *App) Repo() *db.ResearchRepo { return a.repo }

// Workspace exposes the routed file namespace shared by the agents.
func (a *App) Workspace() *backend.Composite { return a.workspace }

// retryPolicy builds the model-call retry policy from configuration.
func (a *App) retryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: a.cfg.MaxAttempts,
		Classifier:  a.classifier,
		Logger:      a.logger,
	}
}

// searchTool builds the Tavily search tool over the corporate HTTP client.
func (a *App) searchTool() tool.Tool {
	return tool.NewSearchTool(a.cfg.TavilyAPIKey, func(o *tool.SearchOptions) {
		o.HTTPClient = a.httpClient
		o.Retry = retry.Policy{MaxAttempts: a.cfg.MaxAttempts}
		o.Logger = a.logger
	})
}

// Agent constructs the requested agent kind.
func (a *App) Agent(kind string, optFns ...func(o *research.AgentOptions)) (agent.Agent, error) {
	base := func(o *research.AgentOptions) {
		o.Retry = a.retryPolicy()
	}
	fns := append([]func(o *research.AgentOptions){base}, optFns...)

	switch kind {
	case AgentSimple:
		return research.NewResearchAgent(a.llm, a.searchTool(), fns...), nil
	case AgentMemory:
		return research.NewMemoryResearchAgent(a.llm, a.searchTool(), a.workspace, fns...), nil
	case AgentSequential:
		return research.NewSequentialCoordinator(a.llm, a.searchTool(), a.workspace, fns...), nil
	case AgentParallel:
		timeout := time.Duration(a.cfg.ParallelTimeout)
		if timeout <= 0 {
			timeout = DefaultParallelTimeout
		}
		return research.NewParallelCoordinator(a.llm, a.searchTool(), a.workspace, timeout, fns...), nil
	default:
		return nil, fmt.Errorf("unknown agent kind %q (want simple, memory, sequential or parallel)", kind)
	}
}

// Result is the outcome of one research run.
type Result struct {
	Answer    string
	SessionID string
	QueryID   int64 // 0 when persistence is disabled
}

// Run executes one research query on the given conversation thread. When a
// database is configured the query and its final answer are persisted with
// lifecycle status tracking.
func (a *App) Run(ctx context.Context, kind, threadID, prompt string, optFns ...func(o *research.AgentOptions)) (*Result, error) {
	ag, err := a.Agent(kind, optFns...)
	if err != nil {
		return nil, err
	}

	var queryID int64
	if a.repo != nil {
		q, err := a.repo.CreateQuery(ctx, prompt)
		if err != nil {
			return nil, err
		}
		queryID = q.ID
		if err := a.repo.UpdateQueryStatus(ctx, queryID, db.StatusProcessing); err != nil {
			a.logger.Warn("failed to mark query processing", "query_id", queryID, "error", err)
		}
	}

	if err := a.sessions.Append(threadID, core.NewUserText(prompt)); err != nil {
		return nil, fmt.Errorf("record prompt: %w", err)
	}

	inv := agent.NewInvocation(ctx, threadID, func(o *agent.InvocationOptions) {
		o.Sessions = a.sessions
		o.Logger = a.logger
		o.Tracer = a.tracer
	})

	out, err := ag.Run(inv)
	if err != nil {
		a.markQuery(ctx, queryID, db.StatusFailed)
		return nil, err
	}

	answer := out.Text()
	if a.repo != nil && queryID != 0 {
		result := db.ResearchResult{Title: "Final answer", Content: answer}
		if err := a.repo.AddResults(ctx, queryID, []db.ResearchResult{result}); err != nil {
			a.logger.Warn("failed to persist result", "query_id", queryID, "error", err)
		}
		a.markQuery(ctx, queryID, db.StatusCompleted)
	}

	return &Result{Answer: answer, SessionID: threadID, QueryID: queryID}, nil
}

// markQuery best-effort transitions a persisted query's status.
func (a *App) markQuery(ctx context.Context, queryID int64, status string) {
	if a.repo == nil || queryID == 0 {
		return
	}
	if err := a.repo.UpdateQueryStatus(ctx, queryID, status); err != nil {
		a.logger.Warn("failed to update query status", "query_id", queryID, "status", status, "error", err)
	}
}
