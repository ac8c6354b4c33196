// Command counterdemo wires the composition engine end to end: a shared
// dynamic store, a registry, two mounted sub-apps (one native reducer, one
// scripted), a ticking background process, and the admin HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/composekit/subapp/admin"
	"github.com/composekit/subapp/internal/config"
	"github.com/composekit/subapp/internal/events"
	"github.com/composekit/subapp/internal/metrics"
	"github.com/composekit/subapp/pkg/logger"
	"github.com/composekit/subapp/process"
	"github.com/composekit/subapp/scripted"
	"github.com/composekit/subapp/store"
	"github.com/composekit/subapp/subapp"
)

const greeterScript = `
function reduce(state, action) {
	if (state === undefined || state === null) {
		return { name: "world" };
	}
	if (action.type === "SET_NAME") {
		return { name: action.payload };
	}
	return state;
}
`

func counterReducer(state any, action store.Action) any {
	current, _ := state.(map[string]any)
	if current == nil {
		return map[string]any{"value": 0}
	}
	switch action.Type {
	case "INCREMENT":
		value, _ := current["value"].(int)
		return map[string]any{"value": value + 1}
	default:
		return state
	}
}

// tickProcess dispatches INCREMENT into its own slice once per interval.
type tickProcess struct {
	interval time.Duration
}

func (p tickProcess) Run(ctx context.Context, view store.ProcessView) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			view.Dispatch(store.Action{Type: "INCREMENT"})
		}
	}
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		envFile    = flag.String("env", "", "Optional .env file to load before reading environment")
	)
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "load env (%s): %v\n", *envFile, err)
			os.Exit(1)
		}
	}

	cfg := config.LoadOrDefault(*configPath)
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "apply env config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}).WithField("component", "counterdemo")

	eventLog := events.NewLog(256)
	collector := metrics.NewCollector("")

	var runtime store.Runtime
	var stopRuntime func()
	switch cfg.Runtime.Kind {
	case config.RuntimeGoroutine:
		rt := process.NewGoRuntime(log)
		runtime, stopRuntime = rt, rt.Stop
	case config.RuntimeCron:
		rt := process.NewCronRuntime(cfg.Runtime.CronSpec, log)
		runtime, stopRuntime = rt, rt.Stop
	case config.RuntimeNone:
		log.Warn("no process runtime configured; background processes will be skipped")
	}

	root := store.New(nil, nil, store.Dynamic(
		store.WithRuntime(runtime),
		store.WithLogger(log),
		store.WithEventLog(eventLog),
		store.WithMetrics(collector),
	))

	registry := subapp.NewRegistry(
		subapp.WithRegistryLogger(log),
		subapp.WithRegistryEventLog(eventLog),
		subapp.WithRegistryMetrics(collector),
	)

	counterView := subapp.ComponentFunc(func(ctx subapp.RenderContext) (string, error) {
		return fmt.Sprintf("counter: %v", ctx.Store.GetState()), nil
	})
	counter, err := subapp.New(registry, "widgets.counter", counterView, counterReducer, subapp.Options{
		Process: tickProcess{interval: time.Second},
	})
	if err != nil {
		log.WithError(err).Error("bind counter sub-app")
		os.Exit(1)
	}

	greeterReducer, err := scripted.Reducer(greeterScript, scripted.WithLogger(log))
	if err != nil {
		log.WithError(err).Error("compile greeter script")
		os.Exit(1)
	}
	greeterView := subapp.ComponentFunc(func(ctx subapp.RenderContext) (string, error) {
		return fmt.Sprintf("greeter: %v", ctx.Store.GetState()), nil
	})
	greeter, err := subapp.New(registry, "widgets.greeter", greeterView, greeterReducer, subapp.Options{})
	if err != nil {
		log.WithError(err).Error("bind greeter sub-app")
		os.Exit(1)
	}

	// First render mounts each sub-app: reducer added, slice seeded,
	// counter's process started on the configured runtime.
	ambient := subapp.RootHandle(root)
	for name, c := range map[string]subapp.Component{"counter": counter, "greeter": greeter} {
		out, renderErr := c.Render(subapp.RenderContext{Store: ambient})
		if renderErr != nil {
			log.WithError(renderErr).Errorf("mount %s", name)
			os.Exit(1)
		}
		log.Info(out)
	}

	root.Dispatch(store.Action{Type: "widgets.greeter/SET_NAME", Payload: "composekit"})

	var adminSrv *admin.Server
	if cfg.Admin.Addr != "" {
		adminSrv = admin.NewServer(admin.Config{
			Addr:              cfg.Admin.Addr,
			RequestsPerSecond: cfg.Admin.RequestsPerSecond,
			Burst:             cfg.Admin.Burst,
		}, root, registry, collector, log)
		adminSrv.Start()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	render := time.NewTicker(5 * time.Second)
	defer render.Stop()

loop:
	for {
		select {
		case <-sigCh:
			break loop
		case <-render.C:
			out, renderErr := counter.Render(subapp.RenderContext{Store: ambient})
			if renderErr != nil {
				log.WithError(renderErr).Error("render counter")
				continue
			}
			log.Info(out)
		}
	}

	log.Info("shutting down")
	if adminSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := adminSrv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("admin shutdown")
		}
		cancel()
	}
	if stopRuntime != nil {
		stopRuntime()
	}

	for _, ev := range eventLog.Recent(10) {
		log.WithField("type", string(ev.Type)).WithField("key", ev.Key).Debug(ev.Message)
	}
}
