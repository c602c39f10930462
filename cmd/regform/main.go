// regform is the terminal student registration form.
//
// With no command it runs the interactive form. The lookup, datasets and
// history commands work without a terminal and are handy for checking a
// dataset or the local submission log from scripts.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ppimalaysia/regform/pkg/api"
	"github.com/ppimalaysia/regform/pkg/config"
	"github.com/ppimalaysia/regform/pkg/model"
	"github.com/ppimalaysia/regform/pkg/selection"
	"github.com/ppimalaysia/regform/pkg/store"
	"github.com/ppimalaysia/regform/pkg/ui"
	"github.com/ppimalaysia/regform/pkg/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath  string
	logFile     string
	dbPath      string
	showVersion bool
}

func run(argv []string) error {
	var f flags
	flagSet := pflag.NewFlagSet("regform", pflag.ContinueOnError)
	flagSet.StringVar(&f.configPath, "config", config.DefaultPath(), "path to the YAML config file")
	flagSet.StringVar(&f.logFile, "log-file", "", "log file for the interactive form (default: <state_dir>/regform.log)")
	flagSet.StringVar(&f.dbPath, "db", "", "SQLite database path (default: <state_dir>/regform.db)")
	flagSet.BoolVar(&f.showVersion, "version", false, "print the version and exit")
	flagSet.BoolP("help", "h", false, "show help")
	// Flags after the command belong to the command
	flagSet.SetInterspersed(false)

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if f.showVersion {
		fmt.Println("regform", version.Version)
		return nil
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.dbPath == "" {
		f.dbPath = cfg.DBPath()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := flagSet.Args()
	if len(args) == 0 {
		return runForm(cfg, f, false)
	}
	switch args[0] {
	case "profile":
		return runForm(cfg, f, true)
	case "lookup":
		return runLookup(ctx, cfg, args[1:])
	case "datasets":
		return runDatasets(ctx, cfg)
	case "history":
		return runHistory(f.dbPath)
	default:
		return fmt.Errorf("unknown command %q (see --help)", args[0])
	}
}

// runForm starts the interactive form, or the saved profile when profile is set
func runForm(cfg config.Config, f flags, profile bool) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("the form needs an interactive terminal; try 'regform lookup'")
	}

	logFile := f.logFile
	if logFile == "" {
		logFile = cfg.LogPath()
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	lf, err := tea.LogToFile(logFile, "regform")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer lf.Close()

	db, err := store.OpenDB(f.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	deviceID, err := db.DeviceID()
	if err != nil {
		return err
	}
	client := api.New(cfg.API.BaseURL, deviceID, cfg.API.Timeout)
	token, err := db.Token()
	if err != nil {
		log.Printf("Warning: reading saved token: %v", err)
	}
	if profile && token == "" {
		return errors.New("no registration is saved on this device; run 'regform' first")
	}
	client.SetToken(token)
	if w, _, err := term.GetSize(fd); err == nil {
		client.Width = w
	}

	m := ui.NewFormModel(ui.FormOptions{
		Config:       cfg,
		ConfigPath:   f.configPath,
		Sources:      ui.NewSources(cfg.Datasets),
		Client:       client,
		Store:        db,
		StartProfile: profile,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running form: %w", err)
	}
	return nil
}

// lookupElements are placeholder element ids for headless controls
var lookupElements = selection.Elements{Input: "lookup-input", Menu: "lookup-menu"}

// lookup runs one search through a headless control. TextChanged blocks on
// the dataset load here since there is no UI loop to keep responsive.
func lookup[R any](ctx context.Context, src selection.Source[R], opts selection.Options[R], query string) []selection.Option[R] {
	opts.Elements = lookupElements
	c := selection.New(src, opts)
	c.Init(nil)
	defer c.Dispose()
	c.TextChanged(ctx, query)
	return c.Options()
}

func printOptions[R any](opts []selection.Option[R]) {
	if len(opts) == 0 {
		fmt.Println("no matches")
		return
	}
	width := 0
	for _, o := range opts {
		if w := runewidth.StringWidth(o.Value); w > width {
			width = w
		}
	}
	for _, o := range opts {
		fmt.Printf("%s  %s\n", runewidth.FillRight(o.Value, width), o.Label)
	}
}

func runLookup(ctx context.Context, cfg config.Config, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: regform lookup <university|postcode|region> <term>")
	}
	kind, query := args[0], args[1]
	sources := ui.NewSources(cfg.Datasets)

	switch kind {
	case "university":
		other := model.OtherUniversity
		printOptions(lookup[model.University](ctx, sources.Universities, selection.Options[model.University]{
			MinChars: cfg.UI.University.MinChars,
			MaxItems: cfg.UI.University.MaxItems,
			Label:    model.UniversityLabel,
			Value:    model.UniversityValue,
			Fallback: &other,
		}, query))
	case "postcode":
		printOptions(lookup[model.Postcode](ctx, sources.Postcodes, selection.Options[model.Postcode]{
			MinChars: cfg.UI.Postcode.MinChars,
			MaxItems: cfg.UI.Postcode.MaxItems,
			Label:    model.PostcodeLabel,
			Value:    model.PostcodeValue,
			Filter:   model.FilterPostcodes,
		}, query))
	case "region":
		printOptions(lookup[model.RegionCode](ctx, sources.RegionCodes, selection.Options[model.RegionCode]{
			MinChars: -1,
			MaxItems: 50,
			Label:    model.RegionLabel,
			Value:    model.RegionValue,
		}, query))
	default:
		return fmt.Errorf("unknown lookup %q: want university, postcode or region", kind)
	}
	return nil
}

func runDatasets(ctx context.Context, cfg config.Config) error {
	start := time.Now()
	counts, err := ui.WarmAll(ctx, ui.NewSources(cfg.Datasets))
	if err != nil {
		return err
	}
	fmt.Printf("%-14s %6d  %s\n", ui.DatasetUniversities, counts.Universities, cfg.Datasets.Universities)
	fmt.Printf("%-14s %6d  %s\n", ui.DatasetPostcodes, counts.Postcodes, cfg.Datasets.Postcodes)
	fmt.Printf("%-14s %6d  %s\n", ui.DatasetRegionCodes, counts.RegionCodes, cfg.Datasets.RegionCodes)
	fmt.Printf("loaded in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func runHistory(dbPath string) error {
	db, err := store.OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	subs, err := db.RecentSubmissions(20)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("no submissions yet")
		return nil
	}
	for _, s := range subs {
		line := fmt.Sprintf("%s  %-6s %-8s", s.CreatedAt.Local().Format("2006-01-02 15:04:05"), s.Action, s.Outcome)
		if s.Error != "" {
			line += "  " + s.Error
		}
		fmt.Println(line)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `regform: student registration form for the terminal.

Usage:
  regform [flags]                                   run the form
  regform [flags] profile                           view and edit the saved registration
  regform [flags] lookup <university|postcode|region> <term>
  regform [flags] datasets                          load every dataset and print counts
  regform [flags] history                           show recent backend calls

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
