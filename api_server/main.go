package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	loadEnv()
	cfg := loadConfig()

	db, err := openDB(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("[main] 连接数据库失败: %v", err)
	}
	defer db.Close()

	repo := NewRepo(db)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := repo.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatalf("[main] 初始化表结构失败: %v", err)
		}
		cancel()
	}

	cache := newAPIKeyCache()
	devices := newDevicePool(cfg)
	if devices != nil {
		defer devices.Close()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewServer(cfg, repo, cache, devices).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[main] listen %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] 服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
