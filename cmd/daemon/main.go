package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/semiosislab/semiosis/go-engine/internal/axes"
	"github.com/semiosislab/semiosis/go-engine/internal/daemon"
	"github.com/semiosislab/semiosis/go-engine/internal/embed"
	"github.com/semiosislab/semiosis/go-engine/internal/history"
	"github.com/semiosislab/semiosis/go-engine/internal/metrics"
	"github.com/semiosislab/semiosis/go-engine/internal/profile"
	"github.com/semiosislab/semiosis/go-engine/internal/seed"
	"github.com/semiosislab/semiosis/go-engine/internal/status"
	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
	"github.com/semiosislab/semiosis/go-engine/internal/translate"
	"github.com/semiosislab/semiosis/go-engine/internal/vigilance"
)

// #region main
func main() {
	dbPath := envOr("SEMIOSIS_DB", "semiosis.db")
	profilePath := envOr("SEMIOSIS_PROFILE", "profile.json")
	statusAddr := envOr("SEMIOSIS_STATUS_ADDR", ":8585")
	ollamaURL := envOr("OLLAMA_URL", "http://localhost:11434")
	embedModel := envOr("OLLAMA_EMBED_MODEL", "mxbai-embed-large")
	llmModel := envOr("OLLAMA_LLM_MODEL", "llama3.2")
	qdrantHost := envOr("QDRANT_HOST", "localhost")
	qdrantPort := envIntOr("QDRANT_PORT", 6334)
	axesSeed := int64(envIntOr("SEMIOSIS_AXES_SEED", 1))

	store, err := history.NewStore(dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	// The owner's declared profile is not optional: without it vigilance has
	// no reference to watch.
	prof, err := profile.Load(profilePath)
	if err != nil {
		log.Fatalf("load profile %s: %v", profilePath, err)
	}
	profiles := profile.NewStore(prof)

	embedder := embed.NewOllamaEmbedder(embed.OllamaConfig{
		BaseURL: ollamaURL, Model: embedModel, Normalize: true,
	})
	translator := translate.NewOllamaTranslator(translate.OllamaConfig{
		BaseURL: ollamaURL, Model: llmModel,
	})

	// Axis directions: embedded pole difference when the collaborator is up,
	// deterministic fallback otherwise.
	dirs := buildDirections(embedder, axesSeed)

	ensureGenesis(store, qdrantHost, qdrantPort)

	rec := metrics.NewRecorder()
	vigil := vigilance.New(vigilance.DefaultConfig(), profiles, dirs, nil)

	d, err := daemon.New(daemon.DefaultConfig(), store, vigil, embedder, translator, dirs, rec, nil)
	if err != nil {
		log.Fatalf("assemble daemon: %v", err)
	}
	d.Expressions = make(chan daemon.Expression, 8)

	srv := status.NewServer(rec, store, vigil.LastAlert, d.Current)
	go func() {
		log.Printf("[MAIN] status surface on %s", statusAddr)
		if err := http.ListenAndServe(statusAddr, srv.Router()); err != nil {
			log.Printf("[MAIN] status server: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[MAIN] daemon: %v", err)
		}
	}()
	go func() {
		for e := range d.Expressions {
			fmt.Printf("\n[tick %d, %s] %s\n> ", e.StateID, e.Trigger, e.Text)
		}
	}()

	repl(d, rec, store)
}

// #endregion main

// #region repl
func repl(d *daemon.Daemon, rec *metrics.Recorder, store *history.Store) {
	fmt.Println("Semiosis engine ready.")
	fmt.Println("Type to talk; /mode idle|conversation|autonomous, /status, /drift, /quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case line == "/quit" || line == "quit" || line == "exit":
			return
		case strings.HasPrefix(line, "/mode"):
			arg := strings.TrimSpace(strings.TrimPrefix(line, "/mode"))
			switch daemon.Mode(arg) {
			case daemon.ModeIdle, daemon.ModeConversation, daemon.ModeAutonomous:
				d.SetMode(daemon.Mode(arg))
			default:
				fmt.Println("usage: /mode idle|conversation|autonomous")
			}
		case line == "/status":
			out, _ := json.MarshalIndent(rec.Snapshot(), "", "  ")
			fmt.Println(string(out))
		case line == "/drift":
			pending, _ := store.CountPendingImpacts()
			x := d.Current()
			fmt.Printf("tick %d, mode %s, pending impacts %d\n", x.StateID, d.Mode(), pending)
		default:
			if err := d.SubmitUser(line); err != nil {
				fmt.Printf("submit: %v\n", err)
			}
		}
	}
}

// #endregion repl

// #region bootstrap
// ensureGenesis seeds tick zero when the store is empty: from the corpus
// vector store when reachable, from a random draw otherwise.
func ensureGenesis(store *history.Store, qdrantHost string, qdrantPort int) {
	_, err := store.Current()
	if err == nil {
		return
	}
	if !errors.Is(err, history.ErrNoGenesis) {
		log.Fatalf("read current tick: %v", err)
	}

	log.Println("[MAIN] no genesis tick, seeding...")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	segMap := tensor.DefaultSegmentMap()

	var materials []seed.Material
	cfg := seed.DefaultConfig()
	cfg.Host, cfg.Port = qdrantHost, qdrantPort
	if client, cerr := seed.NewClient(cfg); cerr == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		materials, cerr = client.Fetch(ctx)
		cancel()
		client.Close()
		if cerr != nil {
			log.Printf("[MAIN] corpus fetch failed, falling back to random genesis: %v", cerr)
			materials = nil
		}
	} else {
		log.Printf("[MAIN] corpus store unreachable, falling back to random genesis: %v", cerr)
	}

	x, err := seed.Aggregate(materials, segMap, rng)
	if err != nil {
		log.Fatalf("seed genesis: %v", err)
	}
	if err := store.CommitGenesis(x); err != nil {
		log.Fatalf("commit genesis: %v", err)
	}
	log.Printf("[MAIN] genesis committed from %d corpus vectors", len(materials))
}

func buildDirections(embedder *embed.OllamaEmbedder, fallbackSeed int64) *axes.Directions {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	dirs, err := axes.FromEmbeddings(ctx, embedder)
	if err != nil {
		log.Printf("[MAIN] axis embedding failed, using deterministic directions: %v", err)
		return axes.Deterministic(fallbackSeed)
	}
	return dirs
}

// #endregion bootstrap

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// #endregion helpers
