package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"bookshelf-backend/internal/config"
	auditHandler "bookshelf-backend/internal/domains/audit/handler"
	auditService "bookshelf-backend/internal/domains/audit/service"
	authorHandler "bookshelf-backend/internal/domains/author/handler"
	authorRepo "bookshelf-backend/internal/domains/author/repository"
	authorService "bookshelf-backend/internal/domains/author/service"
	bookHandler "bookshelf-backend/internal/domains/book/handler"
	bookRepo "bookshelf-backend/internal/domains/book/repository"
	bookService "bookshelf-backend/internal/domains/book/service"
	infraCache "bookshelf-backend/internal/infrastructure/cache"
	"bookshelf-backend/internal/infrastructure/database"
	"bookshelf-backend/pkg/cache"
	"bookshelf-backend/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every dependency of the application. Exactly one of DB
// and SQLite is set, depending on STORE_DRIVER.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	SQLite      *database.SQLiteDB
	Cache       cache.Cache
	AsynqClient *asynq.Client
	JWTManager  *jwt.Manager

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	AuthorRepo authorRepo.RepositoryInterface
	BookRepo   bookRepo.RepositoryInterface

	// ========================================
	// SERVICE LAYER
	// ========================================
	AuthorService authorService.ServiceInterface
	BookService   bookService.ServiceInterface
	AuditService  *auditService.Service

	// ========================================
	// HANDLER LAYER
	// ========================================
	AuthorHandler *authorHandler.AuthorHandler
	BookHandler   *bookHandler.Handler
	AuditHandler  *auditHandler.AuditHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer loads configuration and builds the dependency graph.
//
// Order: config, store, cache and queue client, repositories, services,
// handlers.
func NewContainer() (*Container, error) {
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	return NewContainerWithConfig(cfg)
}

// NewContainerWithConfig builds the graph from an already loaded config.
func NewContainerWithConfig(cfg *config.Config) (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{Config: cfg}

	// ========================================
	// STEP 1: RECORD STORE
	// ========================================
	if err := c.initStore(); err != nil {
		c.Cleanup()
		return nil, err
	}

	// ========================================
	// STEP 2: CACHE + TASK QUEUE CLIENT
	// ========================================
	c.initCache()

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
	)

	// ========================================
	// STEP 3: REPOSITORIES
	// ========================================
	log.Println("📦 Initializing repositories...")
	c.initRepositories()
	log.Println("✅ Repositories initialized")

	// ========================================
	// STEP 4: SERVICES
	// ========================================
	log.Println("⚙️  Initializing services...")
	c.initServices()
	log.Println("✅ Services initialized")

	// ========================================
	// STEP 5: HANDLERS
	// ========================================
	log.Println("🎯 Initializing handlers...")
	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initStore() error {
	switch c.Config.Store.Driver {
	case config.StoreDriverSQLite:
		log.Printf("🗄️  Opening SQLite store at %s...", c.Config.Store.SQLitePath)

		db, err := database.OpenSQLite(c.Config.Store.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		c.SQLite = db
		log.Println("✅ SQLite store ready")

	default:
		log.Println("🗄️  Connecting to PostgreSQL...")

		dbConfig, err := config.LoadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}

		db := database.NewPostgresDB(dbConfig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := db.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.HealthCheck(ctx); err != nil {
			db.Close()
			return fmt.Errorf("database health check failed: %w", err)
		}

		c.DB = db
		log.Println("✅ Database connected")
	}
	return nil
}

// initCache connects Redis when enabled. Redis failure is not fatal: the
// stores fall back to uncached reads and the audit runs inline.
func (c *Container) initCache() {
	c.Cache = cache.Nop{}

	if !c.Config.Redis.Enabled {
		log.Println("⚪ Redis disabled, running without cache and task queue")
		return
	}

	log.Println("🔴 Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(
		c.Config.Redis.Host,
		c.Config.Redis.Password,
		c.Config.Redis.DB,
		c.Config.Redis.Prefix,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisCache.Connect(ctx); err != nil {
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		_ = redisCache.Close()
		return
	}

	c.Cache = redisCache
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	log.Println("✅ Redis connected")
}

func (c *Container) initRepositories() {
	if c.SQLite != nil {
		c.AuthorRepo = authorRepo.NewSQLiteRepository(c.SQLite.DB)
		c.BookRepo = bookRepo.NewSQLiteRepository(c.SQLite.DB)
		return
	}

	c.AuthorRepo = authorRepo.NewPostgresRepository(c.DB.Pool, c.Cache, c.Config.Redis.CacheTTL)
	c.BookRepo = bookRepo.NewPostgresRepository(c.DB.Pool, c.Cache, c.Config.Redis.CacheTTL)
}

func (c *Container) initServices() {
	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo, c.BookRepo)
	c.BookService = bookService.NewService(c.BookRepo, c.AuthorRepo)

	// A nil *asynq.Client would be a non-nil interface
	var queue auditService.Enqueuer
	if c.AsynqClient != nil {
		queue = c.AsynqClient
	}
	c.AuditService = auditService.NewService(
		c.AuthorRepo,
		c.BookRepo,
		c.Cache,
		queue,
		c.Config.Audit.Queue,
		c.Config.Audit.ReportTTL,
	)
}

func (c *Container) initHandlers() {
	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewHandler(c.BookService)
	c.AuditHandler = auditHandler.NewAuditHandler(c.AuditService)
}

// ========================================
// HELPER METHODS
// ========================================

// HealthCheck pings the record store.
func (c *Container) HealthCheck(ctx context.Context) error {
	switch {
	case c.SQLite != nil:
		return c.SQLite.HealthCheck(ctx)
	case c.DB != nil:
		return c.DB.HealthCheck(ctx)
	default:
		return fmt.Errorf("no record store configured")
	}
}

// Cleanup releases store, cache and queue connections. Safe to call on a
// partially built container.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close task queue client: %v", err)
		}
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	if c.DB != nil {
		c.DB.Close()
		log.Println("✅ Database connections closed")
	}

	if c.SQLite != nil {
		if err := c.SQLite.Close(); err != nil {
			log.Printf("⚠️  Failed to close SQLite: %v", err)
		} else {
			log.Println("✅ SQLite store closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
