// Package bootstrap wires configuration into the provider stack, the
// resolvers and the aggregator.
package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/robfig/cron/v3"

	"city-weather/aggregator"
	"city-weather/cache"
	"city-weather/config"
	"city-weather/datasource"
	"city-weather/diagnostics"
	"city-weather/logger"
	"city-weather/resolver"
	"city-weather/view"
)

// App holds the wired components shared by the HTTP server and the
// terminal client
type App struct {
	Config      *config.Config
	Logger      logger.Logger
	Provider    datasource.Provider
	Diagnostics diagnostics.Sink
	Aggregator  *aggregator.Aggregator
	Search      *resolver.CitySearch
	Locator     *resolver.LocationResolver
	SearchCache *cache.CachedSearcher
	AirCache    *cache.CachedAirQualitySource
}

// Option customises New
type Option func(*options)

type options struct {
	httpClient *http.Client
	diag       diagnostics.Sink
}

// WithHTTPClient replaces the provider's HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithDiagnostics replaces the log-backed diagnostics sink
func WithDiagnostics(sink diagnostics.Sink) Option {
	return func(o *options) { o.diag = sink }
}

// New builds the component graph for cfg
func New(cfg *config.Config, log logger.Logger, opts ...Option) *App {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log.Info("Initializing dependencies...")

	owm := datasource.NewOpenWeatherMapProvider(cfg.OpenWeather.APIKey,
		datasource.WithBaseURL(cfg.OpenWeather.BaseURL),
		datasource.WithHTTPClient(o.httpClient),
		datasource.WithTimeout(cfg.OpenWeather.Timeout),
		datasource.WithUnits(cfg.OpenWeather.Units),
		datasource.WithLogger(log),
	)
	log.Infof("%s provider initialized (%s)", owm.Name(), cfg.OpenWeather.BaseURL)

	var provider datasource.Provider = owm
	if cfg.RateLimit.Enabled {
		provider = datasource.NewRateLimitedProvider(owm, datasource.UniformRateLimits(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		log.Infof("Applied rate limiting: %.2f rps, burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	diag := o.diag
	if diag == nil {
		diag = diagnostics.NewLogSink(log)
	}

	app := &App{
		Config:      cfg,
		Logger:      log,
		Provider:    provider,
		Diagnostics: diag,
	}

	var searcher datasource.CitySearcher = provider
	if cfg.Search.CacheTTL > 0 {
		app.SearchCache = cache.NewCachedSearcher(provider, cfg.Search.CacheTTL, log)
		searcher = app.SearchCache
	}

	var air datasource.AirQualitySource = provider
	if cfg.AirQuality.CacheTTL > 0 {
		app.AirCache = cache.NewCachedAirQualitySource(provider, cfg.AirQuality.CacheTTL, log)
		air = app.AirCache
	}

	app.Aggregator = aggregator.New(provider, provider, air, log,
		aggregator.WithDiagnostics(diag),
		aggregator.WithLocation(cfg.Display.Location()),
		// one request timeout plus room for a rate-limit wait
		aggregator.WithFetchTimeout(2*cfg.OpenWeather.Timeout),
	)
	app.Search = resolver.NewCitySearch(searcher, cfg.Search.Limit, diag, log)
	app.Locator = resolver.NewLocationResolver(provider, log)

	log.Info("Dependencies initialized")
	return app
}

// NewCoordinator creates a view coordinator over the app's components.
// The caller owns it and must Close it.
func (a *App) NewCoordinator() *view.Coordinator {
	return view.NewCoordinator(
		a.Aggregator,
		a.Locator,
		resolver.NewDebouncedSearch(a.Search, a.Config.Search.Debounce),
		view.NewLocalClock(view.DefaultClockInterval, a.Logger),
		a.Logger,
	)
}

// StartCachePruning drops expired search results every search cache TTL.
// It does nothing when the search cache is disabled. The returned function
// stops the schedule.
func (a *App) StartCachePruning() (stop func()) {
	if a.SearchCache == nil {
		return func() {}
	}

	c := cron.New()
	schedule := fmt.Sprintf("@every %s", a.Config.Search.CacheTTL)
	if _, err := c.AddFunc(schedule, func() {
		if n := a.SearchCache.Prune(); n > 0 {
			a.Logger.Debugf("Pruned %d expired search results", n)
		}
	}); err != nil {
		a.Logger.Errorf("Failed to schedule cache pruning %q: %v", schedule, err)
		return func() {}
	}
	c.Start()
	a.Logger.Infof("Search cache pruning scheduled %s", schedule)
	return func() { c.Stop() }
}
