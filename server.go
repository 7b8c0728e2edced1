package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ukane-philemon/reportcard/api"
	"github.com/ukane-philemon/reportcard/internal/auth"
	"github.com/ukane-philemon/reportcard/internal/config"
	"github.com/ukane-philemon/reportcard/internal/db/jsonfile"
	"github.com/ukane-philemon/reportcard/internal/db/mongodb"
	"github.com/ukane-philemon/reportcard/internal/db/redisdb"
	"github.com/ukane-philemon/reportcard/internal/importer"
	"github.com/ukane-philemon/reportcard/internal/student"
)

func main() {
	var configFile, importFile, password string
	var serveHTTP bool
	flag.StringVar(&configFile, "config", "", "Path to a YAML config file")
	flag.BoolVar(&serveHTTP, "http", false, "Serve the HTTP API instead of the interactive prompt")
	flag.StringVar(&importFile, "import", "", "Import students from an xlsx file and exit")
	flag.StringVar(&password, "hash-password", "", "Print the bcrypt hash of a password for admin.password_hash and exit")
	flag.Parse()

	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalf("auth.HashPassword error: %v", err)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("config.Load error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("openRepository error: %v", err)
	}

	switch {
	case importFile != "":
		err = importStudents(repo, importFile)
	case serveHTTP:
		err = serve(repo, cfg)
	default:
		err = runPrompt(repo, os.Stdin, os.Stdout)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if shutdownErr := repo.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("repo.Shutdown error: %v", shutdownErr)
	}

	if err != nil {
		log.Fatal(err)
	}
}

// openRepository connects to the storage backend selected in cfg.
func openRepository(ctx context.Context, cfg *config.Config) (student.Repository, error) {
	switch cfg.Backend {
	case config.BackendMongoDB:
		return mongodb.New(ctx, cfg.Mongo.Database, cfg.Mongo.URL)
	case config.BackendRedis:
		return redisdb.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	default:
		return jsonfile.New(cfg.DataFile)
	}
}

func importStudents(repo student.Repository, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("os.Open error: %w", err)
	}
	defer file.Close()

	res, err := importer.FromExcel(repo, file)
	if err != nil {
		return fmt.Errorf("importer.FromExcel error: %w", err)
	}

	fmt.Printf("Imported %d students.\n", res.Imported)
	for _, skipped := range res.Skipped {
		fmt.Printf("  row %d skipped: %s\n", skipped.Row, skipped.Reason)
	}
	return nil
}

func serve(repo student.Repository, cfg *config.Config) error {
	authManager, err := auth.NewManager(cfg.Admin.Username, cfg.Admin.PasswordHash, []byte(cfg.Admin.JWTSecret))
	if err != nil {
		return fmt.Errorf("auth.NewManager error: %w", err)
	}

	if cfg.Admin.Username == "" {
		log.Println("No admin account configured, the API is read-only")
	}

	router, err := api.NewRouter(repo, authManager, cfg.RequestsPerMinute)
	if err != nil {
		return fmt.Errorf("api.NewRouter error: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Ensure graceful shutdown by capturing SIGINT and SIGTERM signals.
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdownChan
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("srv.Shutdown error: %v", err)
		}
	}()

	log.Printf("Report card API has started successfully, listening on %s", cfg.HTTPAddr)

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("report card API shutdown error: %w", err)
	}

	log.Println("Report card API shutdown successfully...")
	return nil
}
