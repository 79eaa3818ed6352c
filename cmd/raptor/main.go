package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"raptor/internal/chunker"
	"raptor/internal/cluster"
	"raptor/internal/config"
	"raptor/internal/domain"
	"raptor/internal/embedding/openai"
	"raptor/internal/embedding/tfidf"
	"raptor/internal/service"
	"raptor/internal/summarizer"
	"raptor/internal/tree"
	"raptor/internal/tui"
	"raptor/internal/vectorstore"
	"raptor/internal/vectorstore/memory"
	"raptor/internal/vectorstore/qdrant"
	"raptor/internal/vectorstore/sqlite"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/raptor/config.yaml if not provided)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: raptor [--config=config.yaml] file1.txt [file2.txt ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Assemble components
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "sentence", "":
		ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		log.Fatalf("unknown chunker: %s", cfg.Chunker.Type)
	}

	var st vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memory.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		st = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	case "sqlite":
		if cfg.VectorStore.SQLite == nil {
			log.Fatalf("sqlite config missing")
		}
		db, err := sqlite.Open(cfg.VectorStore.SQLite.Path)
		if err != nil {
			log.Fatalf("sqlite store init failed: %v", err)
		}
		defer db.Close()
		st = db
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	var chat domain.ChatModel
	switch cfg.Summarizer.Type {
	case "extractive", "":
		chat = summarizer.NewExtractiveChat(cfg.Summarizer.MaxSentences)
	case "openai":
		if cfg.Summarizer.OpenAI == nil {
			log.Fatalf("openai summarizer config missing")
		}
		client, err := summarizer.NewChatClient(summarizer.ChatConfig{
			BaseURL:   cfg.Summarizer.OpenAI.BaseURL,
			APIKeyEnv: cfg.Summarizer.OpenAI.APIKeyEnv,
			Model:     cfg.Summarizer.OpenAI.Model,
			Timeout:   time.Duration(cfg.Summarizer.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai summarizer init failed: %v", err)
		}
		chat = client
	default:
		log.Fatalf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	var strategy tree.ClusterStrategy
	switch cfg.Clustering.Strategy {
	case "similarity", "":
		sc := cfg.Clustering.Similarity
		if sc == nil {
			log.Fatalf("similarity clustering config missing")
		}
		strategy = cluster.NewSimilarity(sc.Threshold, sc.MaxClusterSize)
	case "centroid":
		cc := cfg.Clustering.Centroid
		if cc == nil {
			log.Fatalf("centroid clustering config missing")
		}
		strategy = cluster.NewCentroid(cluster.CentroidConfig{
			MaxClusters:           cc.MaxClusters,
			MaxIterations:         cc.MaxIterations,
			MinClusterSize:        cc.MinClusterSize,
			MaxClusterSize:        cc.MaxClusterSize,
			UseDimensionReduction: cc.UseDimensionReduction,
			Seed:                  cc.Seed,
		})
	default:
		log.Fatalf("unknown clustering strategy: %s", cfg.Clustering.Strategy)
	}

	builder := tree.NewBuilder(strategy, chat, emb, tree.UUIDSource{})
	svc := service.New(service.Config{
		Chunker:             ch,
		Embedder:            emb,
		Store:               st,
		Source:              vectorstore.NewSource(st, cfg.Retrieval.FetchK),
		Summarizer:          summarizer.NewFrequencySummarizer(),
		Builder:             builder,
		TopK:                cfg.Retrieval.TopK,
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
	})

	summary, err := svc.IngestDocuments(inputs)
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}

	m := tui.New(svc, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
