// Command cityweather is a terminal front-end: it prints one city, or runs
// an interactive search and city browser.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"city-weather/bootstrap"
	"city-weather/config"
	"city-weather/logger"
	"city-weather/models"
	"city-weather/resolver"
	"city-weather/units"
	"city-weather/view"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "cityweather: %v\n", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	_ = godotenv.Load()

	configFile := flag.String("config", "", "Path to configuration file")
	city := flag.String("city", "", "Print this city and exit")
	lat := flag.Float64("lat", 0, "Latitude to print (with -lon)")
	lon := flag.Float64("lon", 0, "Longitude to print (with -lat)")
	unitFlag := flag.String("unit", "c", "Temperature unit: c or f")
	flag.Parse()

	unit, err := models.ParseTemperatureUnit(*unitFlag)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFile(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// pages go to stdout, warnings and errors to stderr
	level := cfg.App.LogLevel
	if level == "info" {
		level = "warn"
	}
	log := logger.NewWithWriter(level, os.Stderr).WithField("service", cfg.App.Name)
	app := bootstrap.New(cfg, log)

	coordsSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lon" {
			coordsSet = true
		}
	})

	ctx := context.Background()
	switch {
	case *city != "":
		vm, err := app.Aggregator.LoadByCityName(ctx, *city)
		return printOnce(out, vm, err, unit, *city)
	case coordsSet:
		coords := models.Coordinates{Latitude: *lat, Longitude: *lon}
		vm, err := app.Aggregator.LoadByCoordinates(ctx, coords)
		return printOnce(out, vm, err, unit, coords.String())
	}

	coordinator := app.NewCoordinator()
	defer coordinator.Close()
	coordinator.SetUnit(unit)
	return interactive(ctx, coordinator, in, out)
}

func printOnce(out io.Writer, vm *models.CityViewModel, err error, unit models.TemperatureUnit, label string) error {
	if err != nil {
		fmt.Fprint(out, view.RenderError(label).Text())
		return err
	}
	vm.TemperatureUnit = unit
	localTime := units.LocalTimeFromOffset(vm.Current.TimezoneOffsetSeconds, time.Now())
	fmt.Fprint(out, view.RenderCity(vm, unit, view.NoDayExpanded, localTime).Text())
	return nil
}

// syncWriter serialises the prompt loop and the search subscriber
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func interactive(ctx context.Context, c *view.Coordinator, in io.Reader, w io.Writer) error {
	out := &syncWriter{w: w}

	// search results arrive after the debounce, outside the prompt loop
	c.Subscribe(func(s view.State) {
		if s.Screen == view.ScreenSearch && s.SearchQuery != "" && s.SearchResultsFor == s.SearchQuery {
			fmt.Fprint(out, renderState(s))
		}
	})

	fmt.Fprint(out, renderState(c.Snapshot()))
	fmt.Fprint(out, helpText)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		cmd, err := parseCommand(scanner.Text())
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if cmd.kind == cmdQuit {
			return nil
		}
		if output := execute(ctx, c, cmd); output != "" {
			fmt.Fprint(out, output)
		}
	}
}

// pickResult returns search result i, or a message when the displayed
// results do not answer the current query or have no such entry
func pickResult(s view.State, i int) (models.CityCandidate, string) {
	if s.SearchResultsFor != s.SearchQuery {
		return models.CityCandidate{}, "results pending\n"
	}
	if i < 0 || i >= len(s.SearchResults) {
		return models.CityCandidate{}, fmt.Sprintf("no result #%d\n", i+1)
	}
	return s.SearchResults[i], ""
}

// execute applies cmd and returns what to print
func execute(ctx context.Context, c *view.Coordinator, cmd command) string {
	switch cmd.kind {
	case cmdHelp:
		return helpText
	case cmdSearch:
		c.Search(ctx, cmd.text)
		return ""
	case cmdPick:
		city, msg := pickResult(c.Snapshot(), cmd.index)
		if msg != "" {
			return msg
		}
		_ = c.Navigate(ctx, city.Name)
	case cmdCity:
		_ = c.Navigate(ctx, cmd.text)
	case cmdUnit:
		c.SetUnit(cmd.unit)
	case cmdDay:
		c.ToggleDay(cmd.index)
	case cmdHome:
		c.Home()
	case cmdLocate:
		var geo resolver.Geolocator
		if cmd.coords != nil {
			geo = resolver.StaticGeolocator(*cmd.coords)
		}
		_ = c.UseMyLocation(ctx, geo)
	default:
		return ""
	}
	return renderState(c.Snapshot())
}
