package main

import (
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"
)

// Globals are shared flags, loadable from the environment or a .env file.
type Globals struct {
	APIKey   string  `name:"api-key" env:"OPENWEATHER_API_KEY" required:"" help:"OpenWeatherMap API key."`
	DB       string  `env:"MORNINGWEATHER_DB" default:"data/morningweather.db" help:"Path to the SQLite database."`
	Timezone string  `env:"MORNINGWEATHER_TZ" default:"Local" help:"IANA timezone for display and scheduling."`
	Lat      float64 `env:"DEVICE_LAT" default:"-33.8688" help:"Latitude the static device locator reports."`
	Lon      float64 `env:"DEVICE_LON" default:"151.2093" help:"Longitude the static device locator reports."`
	DenyGPS  bool    `name:"deny-gps" help:"Simulate denied location permission."`
	Debug    bool    `help:"Enable debug logging."`
}

type cli struct {
	Globals

	Serve     ServeCmd     `cmd:"" default:"withargs" help:"Run the HTTP server."`
	Fetch     FetchCmd     `cmd:"" help:"Fetch weather once and print it."`
	Search    SearchCmd    `cmd:"" help:"Search for a place by name."`
	Locations LocationsCmd `cmd:"" help:"Manage saved locations."`
	Notify    NotifyCmd    `cmd:"" help:"Manage notification preferences."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("morningweather"),
		kong.Description("Weather acquisition service backed by OpenWeatherMap."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
		kong.UsageOnError(),
	)

	level := zerolog.InfoLevel
	if c.Debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("tz", c.Timezone).Msg("could not load timezone, using UTC")
		loc = time.UTC
	}

	err = ctx.Run(&app{Globals: c.Globals, log: log, loc: loc})
	ctx.FatalIfErrorf(err)
}
