// @title           Document RAG API
// @version         1.0
// @description     PDF ingestion, hybrid retrieval and agent runs over an indexed knowledge base.
//
// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/DocRagAPI/internal/agents"
	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/data/mongoStore"
	"github.com/akolanti/DocRagAPI/internal/data/seed"
	"github.com/akolanti/DocRagAPI/internal/data/store"
	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
	"github.com/akolanti/DocRagAPI/internal/domain/supportModel"
	"github.com/akolanti/DocRagAPI/internal/handlers"
	"github.com/akolanti/DocRagAPI/internal/middleware"
	"github.com/akolanti/DocRagAPI/internal/rag"
	"github.com/akolanti/DocRagAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocRagAPI/internal/rag/llm/gemini"
	"github.com/akolanti/DocRagAPI/internal/rag/parse"
	"github.com/akolanti/DocRagAPI/internal/rag/vectorDB/milvusDB"
	"github.com/akolanti/DocRagAPI/internal/server"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
)

var listenAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	settings := config.Load()
	flag.StringVar(&listenAddr, "listen-addr", settings.ListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//stores, with in-memory fallback when the document database is offline
	var docStore ragModel.DocumentStore
	var supportStore supportModel.SupportStore
	if mongo := mongoStore.GetMongoStore(serviceContext, settings.MongoURI, settings.MongoDB); mongo != nil {
		docStore = mongo
		supportStore = mongo
	} else {
		logger.Error("Document database is offline, using in-memory stores")
		docStore = store.InitInMemoryDocStore()
		supportStore = store.InitInMemorySupportStore()
	}
	if err := seed.Customers(serviceContext, supportStore); err != nil {
		logger.Warn("Could not seed demo customers", "error", err)
	}

	//external services
	vectorDB := milvusDB.NewClient(settings.MilvusURL, settings.MilvusToken, settings.MilvusCollection)
	if err := vectorDB.EnsureCollection(serviceContext); err != nil {
		logger.Error("Vector collection setup failed. Shutting down.", "error", err)
		return
	}
	embeddingService := openaiEmbedding.NewClient(settings.OpenAIAPIKey)
	llmProvider, err := gemini.NewClient(serviceContext, settings.GeminiAPIKey, config.GeminiModelName)
	if err != nil {
		logger.Error("LLM provider failed to initialize. Shutting down.", "error", err)
		return
	}

	parser := parse.NewParser(parse.NewTesseractEngine())
	ragService := rag.NewService(docStore, parser, embeddingService, vectorDB, llmProvider)

	//agent topology, validated before the server accepts traffic
	agentConfig, err := agents.LoadConfig(settings.AgentsConfigPath)
	if err != nil {
		logger.Error("Agents config failed to load. Shutting down.", "error", err)
		return
	}
	registry := agents.NewRegistry()
	agents.RegisterDefaultTools(registry, ragService, supportStore)
	if err := registry.Validate(agentConfig); err != nil {
		logger.Error("Agents config references unknown tools. Shutting down.", "error", err)
		return
	}
	engine := agents.NewEngine(settings.OpenAIAPIKey, agentConfig, registry, supportStore)

	deps := server.Deps{
		Chain:        middleware.New(&settings),
		RagHandler:   handlers.NewRagHandler(ragService),
		AgentHandler: handlers.NewAgentHandler(engine),
	}

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, deps)

	<-stopExecution
	logger.Info("Server stopped")
}
