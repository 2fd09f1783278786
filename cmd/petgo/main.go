package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/petgo/petgo/internal/config"
	"github.com/petgo/petgo/internal/core/engine"
	"github.com/petgo/petgo/internal/core/queue"
	"github.com/petgo/petgo/internal/data"
	"github.com/petgo/petgo/internal/offline"
	"github.com/petgo/petgo/internal/persist"
	"github.com/petgo/petgo/internal/scripting"
	"github.com/petgo/petgo/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             PetGo  v0.1.0                 \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     persistent virtual-pet simulator      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mInstance:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main daemon logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/petgo.toml"
	if p := os.Getenv("PETGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Default()
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Open the save database and run migrations
	printSection("Database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("SQLite opened")

	if err := persist.RunMigrations(ctx, db.SQL); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("Migrations applied")
	fmt.Println()

	// 4. Load content tables
	printSection("Content")

	speciesTable, err := data.LoadSpeciesTable("data/yaml/species_list.yaml")
	if err != nil {
		return fmt.Errorf("load species table: %w", err)
	}
	printStat("Species", speciesTable.Count())

	itemTable, err := data.LoadItemTable("data/yaml/item_list.yaml")
	if err != nil {
		return fmt.Errorf("load item table: %w", err)
	}
	printStat("Items", itemTable.Count())

	// 5. Initialize Lua formula engine
	luaEngine, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua formulas loaded")
	fmt.Println()

	// 6. Build the engine: save repo, offline reconciler, systems.
	saveRepo, err := persist.NewSaveRepo(db, cfg.Database.KeepSaves, log)
	if err != nil {
		return fmt.Errorf("save repo: %w", err)
	}

	careSys := system.NewCareSystem(speciesTable, luaEngine, cfg.Care)
	reconciler := &offline.Reconciler{
		TickDuration: cfg.Engine.TickDuration,
		MinElapsed:   cfg.Engine.MinOffline,
		Decay:        careSys.DecaySpan,
	}

	eng := engine.New(engine.Config{
		TickDuration:      cfg.Engine.TickDuration,
		MaxUpdatesPerTick: cfg.Engine.MaxUpdatesPerTick,
		MaxUpdateRetries:  cfg.Engine.MaxUpdateRetries,
	}, log, saveRepo, reconciler, engine.NewWallClock())

	if err := eng.Register(careSys); err != nil {
		return fmt.Errorf("register care: %w", err)
	}
	if err := eng.Register(system.NewIncubationSystem(speciesTable)); err != nil {
		return fmt.Errorf("register incubation: %w", err)
	}
	if err := eng.Register(system.NewBattleSystem(speciesTable, luaEngine, cfg.Care, time.Now().UnixNano())); err != nil {
		return fmt.Errorf("register battle: %w", err)
	}
	if err := eng.Register(system.NewInventorySystem(itemTable)); err != nil {
		return fmt.Errorf("register inventory: %w", err)
	}
	if err := eng.Register(system.NewPersistenceSystem(saveRepo, cfg.Engine.SaveEveryTicks)); err != nil {
		return fmt.Errorf("register persistence: %w", err)
	}

	// 7. Start: loads state, runs offline catch-up, initializes systems.
	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("engine start: %w", err)
	}

	printSection("Ready")
	printReady(fmt.Sprintf("Simulation loop started (tick: %s)", cfg.Engine.TickDuration))
	st := eng.Status()
	if st.OfflineTicks > 0 {
		printReady(fmt.Sprintf("Caught up %d offline ticks", st.OfflineTicks))
	}
	fmt.Println()

	// 8. Console command reader: the UI-layer producer.
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go readCommands(runCtx, stop, eng, log)

	return eng.Run(runCtx)
}

// readCommands turns stdin lines into updates through a write-only queue
// handle. It never reads or drains the queue.
func readCommands(ctx context.Context, quit context.CancelFunc, eng *engine.Engine, log *zap.Logger) {
	w := eng.Writer("console")
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}
		switch fields[0] {
		case "feed":
			w.Emit(system.UpdateFeed, nil)
		case "play":
			w.Emit(system.UpdatePlay, nil)
		case "sleep":
			w.Emit(system.UpdateSleep, system.SleepPayload{})
		case "wake":
			w.Emit(system.UpdateWake, nil)
		case "clean":
			w.Emit(system.UpdateClean, nil)
		case "medicine":
			w.Emit(system.UpdateMedicine, nil)
		case "rename":
			w.Emit(system.UpdateRename, system.RenamePayload{Name: arg})
		case "hatch":
			w.Emit(system.UpdateEggStart, system.EggStartPayload{SpeciesID: arg})
		case "battle":
			w.Emit(system.UpdateBattleStart, system.BattlePayload{OpponentSpeciesID: arg})
		case "use":
			w.Emit(system.UpdateItemUse, system.ItemPayload{ItemID: arg})
		case "give":
			w.Enqueue(queue.NewUpdate(system.UpdateItemAdd, system.ItemPayload{ItemID: arg, Count: 1}))
		case "pause":
			eng.Pause()
		case "resume":
			eng.Resume()
		case "status":
			printStatus(eng)
		case "quit", "exit":
			quit()
			return
		default:
			fmt.Printf("  unknown command %q\n", fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn("console reader stopped", zap.Error(err))
	}
}

func printStatus(eng *engine.Engine) {
	st := eng.Status()
	fmt.Printf("  running=%v paused=%v ticks=%d queue=%d avg_tick=%s\n",
		st.Running, st.Paused, st.Ticks, st.QueueDepth, st.AvgTickDuration)
	for _, sys := range st.Systems {
		fmt.Printf("    [%d] %-12s init=%v active=%v errors=%d\n",
			sys.Index, sys.Name, sys.Initialized, sys.Active, sys.Errors)
	}
	if pet := eng.State().Pet; pet != nil {
		fmt.Printf("  %s (%s, %s) hunger=%.0f happiness=%.0f energy=%.0f health=%.0f sick=%v asleep=%v\n",
			pet.Name, pet.SpeciesID, pet.Stage, pet.Stats.Hunger, pet.Stats.Happiness,
			pet.Stats.Energy, pet.Stats.Health, pet.Sick, pet.Asleep)
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
