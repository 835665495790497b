package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tcsched/internal/api"
	"tcsched/internal/config"
	"tcsched/internal/ical"
	"tcsched/internal/kiosk"
	appLog "tcsched/internal/log"
	"tcsched/internal/model"
	"tcsched/internal/schedule"
	"tcsched/internal/snapshot"
	"tcsched/internal/tui"
)

type flagConfig struct {
	configPath string
	baseURL    string
	username   string
	date       string
	listen     string
	once       bool
	exportPath string
	serve      bool
	snapPath   string
	debug      bool
}

func main() {
	flags := parseFlags()

	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI overrides.
	if flags.baseURL != "" {
		conf.BaseURL = flags.baseURL
	}
	if flags.username != "" {
		conf.Username = flags.username
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	loc := resolveLocation(conf.Timezone)

	refDate := time.Now().In(loc)
	if flags.date != "" {
		d, perr := time.ParseInLocation("2006-01-02", flags.date, loc)
		if perr != nil {
			appLog.Error("bad -date value", perr, "date", flags.date)
			os.Exit(1)
		}
		refDate = d
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	client, err := signIn(ctx, conf, flags.configPath)
	if err != nil {
		appLog.Error("sign-in failed", err)
		os.Exit(1)
	}
	loader := reloginLoader(client, conf, flags.configPath)

	switch {
	case flags.snapPath != "":
		err = runSnapshot(ctx, conf, loader, refDate, flags.snapPath, loc)
	case flags.serve:
		err = kiosk.NewServer(conf, kiosk.Loader(loader), loc).Run(ctx)
	case flags.exportPath != "":
		err = runExport(ctx, loader, refDate, flags.exportPath)
	case flags.once:
		err = runOnce(ctx, loader, refDate)
	default:
		err = runTUI(ctx, conf, loader, refDate, loc)
	}

	if err != nil {
		appLog.Error("tcsched failed", err)
		os.Exit(1)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", config.DefaultPath(), "Path to config file")
	flag.StringVar(&cfg.baseURL, "base-url", "", "Portal API base URL (overrides config if set)")
	flag.StringVar(&cfg.username, "user", "", "Portal username (overrides config if set)")
	flag.StringVar(&cfg.date, "date", "", "Reference date YYYY-MM-DD (default today)")
	flag.StringVar(&cfg.listen, "listen", "", "Kiosk listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Print the week's schedule as plain text and exit")
	flag.StringVar(&cfg.exportPath, "export", "", "Write the week's schedule as an .ics file and exit")
	flag.BoolVar(&cfg.serve, "serve", false, "Run the HTML/JSON kiosk server")
	flag.StringVar(&cfg.snapPath, "snapshot", "", "Capture the week as a PNG file and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}

// signIn builds the portal client, reusing a persisted token when it is
// still usable and logging in otherwise.
func signIn(ctx context.Context, conf *config.Config, configPath string) (*api.Client, error) {
	loc := resolveLocation(conf.Timezone)
	client := api.NewClient(conf.BaseURL, conf.CacheDir, loc)

	tok, err := api.LoadToken(conf.CacheDir)
	if err != nil {
		appLog.Warn("could not read persisted token", "err", err)
	}
	if api.TokenUsable(tok) {
		client.SetToken(tok)
		appLog.Debug("reusing persisted token")
		return client, nil
	}

	if err := login(ctx, client, conf, configPath); err != nil {
		return nil, err
	}
	return client, nil
}

func login(ctx context.Context, client *api.Client, conf *config.Config, configPath string) error {
	if conf.Username == "" {
		return errors.New("no username configured (set username in config or pass -user)")
	}
	password := config.Password(configPath)
	if password == "" {
		return errors.New("no password available (set TCSCHED_PASSWORD, optionally via a .env next to the config)")
	}

	if _, err := client.Login(ctx, conf.Username, password); err != nil {
		return err
	}
	if err := api.SaveToken(conf.CacheDir, client.Token()); err != nil {
		appLog.Warn("could not persist token", "err", err)
	}
	return nil
}

// reloginLoader wraps FetchSchedule with a single re-login attempt when
// the persisted token turns out to be rejected server-side.
func reloginLoader(client *api.Client, conf *config.Config, configPath string) tui.Loader {
	return func(ctx context.Context) (model.Identity, []model.Session, error) {
		ident, sessions, err := client.FetchSchedule(ctx)
		if !errors.Is(err, api.ErrUnauthorized) {
			return ident, sessions, err
		}

		appLog.Info("token rejected; logging in again")
		api.DropToken(conf.CacheDir)
		if lerr := login(ctx, client, conf, configPath); lerr != nil {
			return model.Identity{}, nil, lerr
		}
		return client.FetchSchedule(ctx)
	}
}

func resolveLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func runTUI(ctx context.Context, conf *config.Config, loader tui.Loader, refDate time.Time, loc *time.Location) error {
	// Keep log lines out of the alternate screen.
	if err := os.MkdirAll(conf.CacheDir, 0o700); err == nil {
		if f, ferr := os.OpenFile(filepath.Join(conf.CacheDir, "tcsched.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); ferr == nil {
			appLog.SetOutput(f)
			defer f.Close()
		}
	}

	m := tui.NewModel(loader, refDate, loc)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil // interrupted by signal, not a failure
	}
	return err
}

// runOnce prints the week's sessions as plain text, for scripting.
func runOnce(ctx context.Context, loader tui.Loader, refDate time.Time) error {
	ident, sessions, err := loader(ctx)
	if err != nil {
		return err
	}

	week := schedule.WeekOf(refDate)
	filtered := schedule.FilterWeek(sessions, week)
	groups := schedule.GroupByDate(filtered)
	st := schedule.ComputeStats(filtered)

	fmt.Printf("Semaine du %s au %s — %d séances, %dh\n",
		week.Start.Format("2006-01-02"), week.End.Format("2006-01-02"), st.Sessions, st.Hours)

	for _, g := range groups {
		fmt.Println(g.Date)
		for _, s := range g.Sessions {
			line := fmt.Sprintf("  %s │ %s", s.TimeRange(), s.CourseTitle)
			if s.Room != "" {
				line += " │ " + s.Room
			}
			if ident.IsStudent() && s.Instructor != nil {
				line += " │ " + s.Instructor.Name
			}
			if s.Group != nil {
				line += " │ " + s.Group.Name
			}
			fmt.Println(line)
		}
	}
	if len(groups) == 0 {
		fmt.Println("Aucune séance cette semaine")
	}
	return nil
}

func runExport(ctx context.Context, loader tui.Loader, refDate time.Time, outPath string) error {
	ident, sessions, err := loader(ctx)
	if err != nil {
		return err
	}

	week := schedule.WeekOf(refDate)
	filtered := schedule.FilterWeek(sessions, week)

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ical.WriteWeek(f, week, filtered, ident); err != nil {
		return err
	}
	appLog.Info("schedule exported", "path", outPath, "sessions", len(filtered))
	return nil
}

// runSnapshot spins up an ephemeral kiosk on a loopback port, lets
// Chromium render it, and writes the PNG.
func runSnapshot(ctx context.Context, conf *config.Config, loader tui.Loader, refDate time.Time, outPath string, loc *time.Location) error {
	ks := kiosk.NewServer(conf, kiosk.Loader(loader), loc)
	ks.Refresh(ctx)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	// The headless browser cannot present basic auth credentials, so the
	// loopback listener serves without the auth wrapper.
	srv := &http.Server{Handler: ks.LoopbackHandler()}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	url := fmt.Sprintf("http://%s/?week=%s", ln.Addr().String(), refDate.Format("2006-01-02"))
	if err := snapshot.Capture(ctx, snapshot.Options{URL: url, OutputPath: outPath}); err != nil {
		return err
	}
	appLog.Info("snapshot written", "path", outPath)
	return nil
}
