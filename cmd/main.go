package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "cozy_nook/docs"
	"cozy_nook/internal/handlers"
	"cozy_nook/internal/logger"
	"cozy_nook/internal/repository"
	"cozy_nook/internal/repository/db"
	"cozy_nook/internal/server"
	"cozy_nook/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	shutdownTimeout = 10 * time.Second
	startupTimeout  = 5 * time.Second
)

// @title           Cozy Nook storefront API
// @version         1.0
// @description     Catalog, cart and checkout for the Cozy Nook bakery.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "cozy_nook",
		Short:         "Cozy Nook storefront data service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yml (default configs/config.yml)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "bootstrap",
		Short: "Create the admin account and seed the catalog, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(cmd.Context())
		},
	})
	return root
}

func runServe() error {
	log := logger.Get(viper.GetString("log.level"))

	services, closeAll, err := wire(log)
	if err != nil {
		return err
	}
	defer closeAll()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	err = bootstrap(ctx, services, log)
	cancel()
	if err != nil {
		return err
	}

	apiHandler := handlers.NewHandler(services, log)
	srv := server.New(server.Config{
		ReadHeaderTimeout: viper.GetDuration("http.read_header_timeout"),
		WriteTimeout:      viper.GetDuration("http.write_timeout"),
		IdleTimeout:       viper.GetDuration("http.idle_timeout"),
	})
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	waitForShutdown(srv, log)
	return nil
}

func runBootstrap(ctx context.Context) error {
	log := logger.Get(viper.GetString("log.level"))

	services, closeAll, err := wire(log)
	if err != nil {
		return err
	}
	defer closeAll()

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	return bootstrap(ctx, services, log)
}

// bootstrap makes sure the admin account exists and the catalog is seeded.
func bootstrap(ctx context.Context, services *service.Service, log *logger.Logger) error {
	if err := services.EnsureAdminBootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	products, err := services.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	log.Infow("storefront ready", "products", len(products), "storage", viper.GetString("storage.driver"))
	return nil
}

// wire opens the stores and builds the services. The returned func releases
// every resource that was opened.
func wire(log *logger.Logger) (*service.Service, func(), error) {
	sqlDB, err := openDB(log)
	if err != nil {
		return nil, nil, fmt.Errorf("init sqlite: %w", err)
	}
	closers := []func() error{sqlDB.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i](); cerr != nil {
				log.Errorw("close failed", "err", cerr)
			}
		}
	}

	kv, closeKV, err := openKV(sqlDB, log)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	if closeKV != nil {
		closers = append(closers, closeKV)
	}

	repos := repository.NewRepository(sqlDB, kv)
	services := service.NewService(repos, service.Options{
		SigningKey: viper.GetString("auth.signing_key"),
		TokenTTL:   viper.GetDuration("auth.token_ttl"),
		Log:        log,
	})
	return services, closeAll, nil
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "cozy_nook.db")
		dbPath = "cozy_nook.db"
	}
	return db.InitDB(dbPath)
}

// openKV picks the backend holding users, products, currentUser and cart.
func openKV(sqlDB *sql.DB, log *logger.Logger) (repository.KVStore, func() error, error) {
	switch driver := viper.GetString("storage.driver"); driver {
	case "", "sqlite":
		return repository.NewKVSQLite(sqlDB), nil, nil
	case "memory":
		log.Infow("storage.driver=memory; state is lost on exit")
		return repository.NewKVMemory(), nil, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		})
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis at %q: %w", viper.GetString("redis.addr"), err)
		}
		return repository.NewKVRedis(rdb, viper.GetString("storage.prefix")), rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage.driver %q (want sqlite, redis or memory)", driver)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
