// C:\Users\wasab\OneDrive\デスクトップ\PORTION\main.go
package main

import (
	"context"
	"errors"
	"io/fs"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"portion/config"
	"portion/database"
	"portion/dates"
	"portion/events"
	"portion/images"
	"portion/loader"
	"portion/lock"
	"portion/logger"
	"portion/model"
	"portion/order"
	"portion/product"
	"portion/purchase"
	"portion/ration"
	"portion/stores"
	"portion/table"
	"portion/workbook"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		stdlog.Printf("WARN: failed to load .env: %v", err)
	}
	cfg, cfgErr := config.LoadConfig()

	log, err := logger.New(cfg.Logger)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer log.Sync()
	if cfgErr != nil {
		log.Warn("failed to load config file, using defaults", zap.Error(cfgErr))
	}

	loc, err := dates.Location(cfg.Timezone)
	if err != nil {
		log.Fatal("unknown timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("storage initialization failed", zap.String("storage", cfg.Storage), zap.Error(err))
	}
	defer closeStore()

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		log.Fatal("lock initialization failed", zap.Error(err))
	}
	defer closeLocker()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info("publishing events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	defer publisher.Close()

	var imageSource images.Source = images.DirSource{Dir: cfg.ImagesDir}
	if cfg.S3.Bucket != "" {
		s3src, err := images.NewS3Source(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix)
		if err != nil {
			log.Fatal("s3 image source failed", zap.Error(err))
		}
		imageSource = s3src
	}

	if _, err := stores.LoadStoresFile(cfg.StoresFile, cfg.ImportEncoding); err != nil {
		log.Warn("store names file not loaded, using defaults", zap.String("file", cfg.StoresFile), zap.Error(err))
	}

	ledger := order.NewLedger(store, locker, time.Duration(cfg.LockTimeoutSeconds)*time.Second, log)
	app := &App{
		Storage:   cfg.Storage,
		Store:     store,
		Ledger:    ledger,
		Orders:    order.NewService(ledger, publisher, loc, log),
		Purchases: purchase.NewService(ledger, loc, log),
		Rations:   ration.NewLog(ledger, publisher, loc, log),
		Catalog:   product.NewCatalog(store, cfg.SearchLimit, log),
		Images:    imageSource,
		Log:       log,
	}

	mux := http.NewServeMux()
	SetupRoutes(mux, app)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server starting", zap.String("addr", cfg.Addr), zap.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (table.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageXLSX:
		return workbook.NewStore(workbookPaths(cfg)), func() {}, nil
	case config.StorageSQLite:
		db, err := database.Open(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := loader.InitDatabase(ctx, db, loader.Sources{
			CatalogFile:      cfg.CatalogFile,
			ProductLinksFile: cfg.ProductLinksFile,
			Encoding:         cfg.ImportEncoding,
		}, log)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil
	default:
		return nil, nil, errors.New("unknown storage backend: " + cfg.Storage)
	}
}

func workbookPaths(cfg config.Config) map[string]string {
	return map[string]string{
		model.TableAllPurch:   filepath.Join(cfg.OrdersDir, "allpurch.xlsx"),
		model.TableMainPurch:  filepath.Join(cfg.OrdersDir, "mainpurch.xlsx"),
		model.TableOtherPurch: filepath.Join(cfg.OrdersDir, "otherpurch.xlsx"),
		model.TableRationInfo: filepath.Join(cfg.UsersDir, "rationinfo.xlsx"),
		model.TableProducts:   cfg.CatalogFile,
		model.TableProdLinks:  cfg.ProductLinksFile,
	}
}

func newLocker(ctx context.Context, cfg config.Config) (lock.Locker, func(), error) {
	if cfg.Redis.Addr == "" {
		return lock.NewLocal(), func() {}, nil
	}
	wait := time.Duration(cfg.LockTimeoutSeconds) * time.Second
	r, err := lock.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, wait)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { r.Close() }, nil
}
