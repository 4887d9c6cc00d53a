package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/server"
	"go.uber.org/zap"

	"github.com/sachin-patro/starting-ragchatbot-codebase/agent"
	"github.com/sachin-patro/starting-ragchatbot-codebase/appconfig"
	"github.com/sachin-patro/starting-ragchatbot-codebase/controller"
	"github.com/sachin-patro/starting-ragchatbot-codebase/db"
	"github.com/sachin-patro/starting-ragchatbot-codebase/embedding"
	"github.com/sachin-patro/starting-ragchatbot-codebase/ingest"
	"github.com/sachin-patro/starting-ragchatbot-codebase/llm"
	"github.com/sachin-patro/starting-ragchatbot-codebase/mcp"
	"github.com/sachin-patro/starting-ragchatbot-codebase/middleware"
	"github.com/sachin-patro/starting-ragchatbot-codebase/rag"
	"github.com/sachin-patro/starting-ragchatbot-codebase/session"
	"github.com/sachin-patro/starting-ragchatbot-codebase/tools"
)

func main() {
	mcpMode := flag.Bool("mcp", false, "serve the retrieval tool over MCP stdio instead of HTTP")
	flag.Parse()

	dotenv.LoadEnv()
	cfg := appconfig.Load()
	ctx := getCancellableContext()

	embedder, err := embedding.NewJinaClient(embedding.Config{
		APIKey: cfg.JinaKey,
		Model:  cfg.EmbeddingModel,
	})
	if err != nil {
		logger.Fatal("Embedding client init failed", zap.Error(err))
	}

	mongoClient, err := db.ProvideMongoClient(cfg.MongoURI)
	if err != nil {
		logger.Fatal("Mongo connection failed", zap.Error(err))
	}
	store := db.ProvideMongoStore(mongoClient, cfg.MongoDB, embedder)

	if *mcpMode {
		if err := mcp.NewServer(store).Run(ctx); err != nil {
			logger.Fatal("MCP server failed", zap.Error(err))
		}
		return
	}

	llmClient, err := llm.NewAnthropicClient(llm.Config{
		APIKey: cfg.Anthropic,
		Model:  cfg.AnthropicModel,
	})
	if err != nil {
		logger.Fatal("LLM client init failed", zap.Error(err))
	}

	ingestor := ingest.NewIngestor(store, ingest.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap))
	registry := tools.NewRegistry(
		tools.NewSearchTool(store, cfg.MaxResults),
		tools.NewOutlineTool(store),
	)
	system := rag.NewSystem(store, ingestor, agent.NewGenerator(llmClient), registry, session.NewManager(cfg.MaxHistory))
	auth := middleware.ProvideAPIKeyAuth(cfg.APIKey)

	if cfg.DocsPath != "" {
		courses, chunks, err := system.AddCourseFolder(ctx, cfg.DocsPath)
		if err != nil {
			logger.Error("Startup ingestion failed", zap.Error(err))
		} else {
			logger.Info("Startup ingestion complete",
				zap.Int("courses", courses), zap.Int("chunks", chunks))
		}
	}

	boot, err := server.New().
		GRPCPort(cfg.GRPCPort).
		HTTPPort(cfg.HTTPPort).
		AddRestController(func() *controller.QueryController {
			return controller.ProvideQueryController(system, auth)
		}).
		AddRestController(func() *controller.CourseController {
			return controller.ProvideCourseController(system, auth)
		}).
		Build()

	if err != nil {
		logger.Fatal("Dependency Injection Failed", zap.Error(err))
	}

	boot.Serve(ctx)
}

func getCancellableContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	return ctx
}
