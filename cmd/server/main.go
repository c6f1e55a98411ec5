package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gehunter2001-alt/ruStore/api"
	"github.com/gehunter2001-alt/ruStore/config"
	"github.com/gehunter2001-alt/ruStore/database"
	_ "github.com/gehunter2001-alt/ruStore/docs"
	"github.com/gehunter2001-alt/ruStore/handler"
	"github.com/gehunter2001-alt/ruStore/model"
)

// @title 每日清单 API
// @version 1.0
// @description 家庭日常核对清单服务：维护一份小任务清单，支持勾选、增删改和每个自然日自动重置完成标记。
// @BasePath /api/v1
func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	db, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	store := database.NewTaskStore(db)

	// 启动时执行每日重置检查（整个进程生命周期内只检查这一次）
	today := model.Today()
	applied, err := store.RunStartupReset(context.Background(), today)
	if err != nil {
		log.Fatalf("Failed to run daily reset check: %v", err)
	}
	if applied {
		log.Printf("Daily reset applied for %s", today)
	}

	// 创建处理器
	h := handler.NewHandler(store)

	// 设置路由
	mux := api.SetupRoutes(h)

	// 启动服务器
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	// 优雅关闭
	go func() {
		log.Printf("Server started on http://localhost:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := server.Close(); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
