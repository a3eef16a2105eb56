// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ada-voice-go/internal/config"
	"ada-voice-go/internal/handler"
	"ada-voice-go/internal/middleware"
	"ada-voice-go/internal/model"
	"ada-voice-go/internal/service"
	"ada-voice-go/pkg/bedrock"
	"ada-voice-go/pkg/log"
	"ada-voice-go/pkg/opensearch"
	"ada-voice-go/pkg/polly"
	"ada-voice-go/pkg/secrets"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化 AWS 客户端。进程生命周期内共享，SDK 客户端本身线程安全。
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		log.Fatalf("加载 AWS 配置失败: %v", err)
	}
	resolver := secrets.NewResolver(awsCfg)
	bedrockClient := bedrock.NewClient(awsCfg, cfg.Bedrock)
	pollyClient := polly.NewClient(awsCfg)

	// 4. 初始化 Service (依赖注入)
	// 索引客户端每个请求构建一次，因为它携带当次请求解析到的凭证。
	newIndex := func(creds model.Credentials) (opensearch.Index, error) {
		return opensearch.NewIndex(cfg.OpenSearch.Endpoint, cfg.OpenSearch.IndexName, creds)
	}
	ragService := service.NewRagService(resolver, bedrockClient, newIndex, cfg.OpenSearch)
	directService := service.NewDirectService(bedrockClient)
	speechService := service.NewSpeechService(pollyClient)

	// 5. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 6. 注册路由
	askHandler := handler.NewAskHandler(ragService, directService, speechService)
	apiV1 := r.Group("/api/v1")
	{
		ask := apiV1.Group("/ask")
		{
			ask.POST("", askHandler.Ask)
			ask.POST("/direct", askHandler.AskDirect)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
