package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlite/nextlite/internal/config"
	"github.com/nextlite/nextlite/pkg/dispatch"
	"github.com/nextlite/nextlite/pkg/evaluator"
	"github.com/nextlite/nextlite/pkg/hmr"
	"github.com/nextlite/nextlite/pkg/httpserver"
	"github.com/nextlite/nextlite/pkg/route"
	"github.com/nextlite/nextlite/pkg/shell"
	"github.com/nextlite/nextlite/pkg/transform"
	"github.com/nextlite/nextlite/pkg/vfs"
)

func newServeCommand() *cobra.Command {
	var listen string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve a project directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runServe(cmd.Context(), dir, listen, verbose)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "override the listen address from devserver.json")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func runServe(ctx context.Context, dir, listenOverride string, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	logger := slog.Default().With("component", "cli")

	projectCfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	if listenOverride != "" {
		projectCfg.Listen = listenOverride
	}
	if err := projectCfg.Validate(); err != nil {
		return err
	}

	fs, err := vfs.NewOS(dir)
	if err != nil {
		return err
	}

	routeCfg := route.ResolveConfig(fs)

	for _, dir := range []string{projectCfg.PagesDir, projectCfg.AppDir} {
		if err := route.Validate(fs, dir); err != nil {
			logger.Warn("route conflicts found", "dir", dir, "error", err)
		}
	}

	var forcedMode *route.Mode
	if projectCfg.PreferAppRouter != nil {
		mode := route.ModePages
		if *projectCfg.PreferAppRouter {
			mode = route.ModeApp
		}
		forcedMode = &mode
	}
	resolver := route.NewResolver(fs, projectCfg.PagesDir, projectCfg.AppDir, forcedMode)

	virtualPrefix := "/__virtual__/" + portFromListen(projectCfg.Listen)
	transformer := transform.NewTransformer(transform.PassthroughBackend{}, routeCfg.AliasMap, virtualPrefix)

	synth := shell.NewSynthesizer(shell.Config{
		PublicEnvPrefix:   "NEXT_PUBLIC_",
		Env:               envMap(),
		GlobalStylesheets: discoverGlobalStylesheets(fs),
	})

	yaegi := evaluator.NewYaegiEvaluator(projectCfg.EvaluatorWhitelist, time.Duration(projectCfg.HandlerTimeout))

	requireWhitelist := make(map[string]bool, len(projectCfg.EvaluatorWhitelist))
	for _, pkg := range projectCfg.EvaluatorWhitelist {
		requireWhitelist[pkg] = true
	}

	d := dispatch.New(dispatch.Dispatcher{
		FS:               fs,
		Resolver:         resolver,
		Transformer:      transformer,
		Shell:            synth,
		Evaluator:        yaegi,
		Config:           routeCfg,
		PagesDir:         projectCfg.PagesDir,
		AppDir:           projectCfg.AppDir,
		PublicDir:        projectCfg.PublicDir,
		VirtualPrefix:    virtualPrefix,
		Env:              envMap(),
		HandlerTimeout:   time.Duration(projectCfg.HandlerTimeout),
		RequireWhitelist: requireWhitelist,
	})

	emitter := hmr.NewEmitter()
	broadcaster := hmr.NewWebSocketBroadcaster("nextlite-hmr")
	ignore := projectCfg.WatchIgnore
	emitter.Subscribe(func(evt hmr.Event) {
		for _, seg := range ignore {
			if strings.Contains(evt.Path, seg) {
				return
			}
		}
		broadcaster.Deliver(evt)
	})

	notifier := hmr.NewNotifier(emitter, time.Duration(projectCfg.HMRDebounce))
	if errs := notifier.Watch(fs, projectCfg.PagesDir, projectCfg.AppDir, projectCfg.PublicDir); len(errs) > 0 {
		for _, werr := range errs {
			logger.Warn("watch error", "error", werr)
		}
	}
	defer notifier.Close()

	srv := httpserver.New(projectCfg.Listen, d, broadcaster)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving", "dir", dir, "listen", projectCfg.Listen, "mode", resolver.Mode())
	return srv.ListenAndServe(runCtx)
}

func envMap() map[string]string {
	out := map[string]string{}
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				out[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return out
}

// discoverGlobalStylesheets finds top-level global CSS files so the
// bootstrap document can link them (§4.D step 5). It does not search:
// only the fixed conventional paths /styles/globals.css and
// /app/globals.css are considered "global" rather than scoped to a
// component.
func discoverGlobalStylesheets(fs vfs.FS) []string {
	var sheets []string
	for _, candidate := range []string{"/styles/globals.css", "/app/globals.css"} {
		if fs.Exists(candidate) {
			sheets = append(sheets, candidate)
		}
	}
	return sheets
}

func portFromListen(listen string) string {
	for i := len(listen) - 1; i >= 0; i-- {
		if listen[i] == ':' {
			return listen[i+1:]
		}
	}
	return listen
}
