package main

import (
	"fmt"
	"strconv"
	"strings"

	"city-weather/models"
	"city-weather/view"
)

type commandKind int

const (
	cmdUnknown commandKind = iota
	cmdSearch
	cmdPick
	cmdCity
	cmdUnit
	cmdDay
	cmdHome
	cmdLocate
	cmdHelp
	cmdQuit
)

type command struct {
	kind   commandKind
	text   string
	index  int
	unit   models.TemperatureUnit
	coords *models.Coordinates
}

const helpText = `Commands:
  /<text>             search cities
  #<n>                open search result n
  city <name>         open a city
  unit c|f            switch temperature unit
  day <n>             expand or collapse forecast day n
  locate [lat lon]    use a position (none: no geolocation)
  home                back to search
  quit
`

func parseCommand(line string) (command, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return command{kind: cmdUnknown}, nil
	case strings.HasPrefix(line, "/"):
		return command{kind: cmdSearch, text: strings.TrimPrefix(line, "/")}, nil
	case strings.HasPrefix(line, "#"):
		n, err := strconv.Atoi(strings.TrimPrefix(line, "#"))
		if err != nil || n < 1 {
			return command{}, fmt.Errorf("invalid result number %q", line)
		}
		return command{kind: cmdPick, index: n - 1}, nil
	}

	fields := strings.Fields(line)
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "city":
		if len(args) == 0 {
			return command{}, fmt.Errorf("usage: city <name>")
		}
		return command{kind: cmdCity, text: strings.Join(args, " ")}, nil
	case "unit":
		if len(args) != 1 {
			return command{}, fmt.Errorf("usage: unit c|f")
		}
		unit, err := models.ParseTemperatureUnit(args[0])
		if err != nil {
			return command{}, err
		}
		return command{kind: cmdUnit, unit: unit}, nil
	case "day":
		if len(args) != 1 {
			return command{}, fmt.Errorf("usage: day <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return command{}, fmt.Errorf("invalid day %q", args[0])
		}
		return command{kind: cmdDay, index: n}, nil
	case "locate":
		switch len(args) {
		case 0:
			return command{kind: cmdLocate}, nil
		case 2:
			lat, err1 := strconv.ParseFloat(args[0], 64)
			lon, err2 := strconv.ParseFloat(args[1], 64)
			if err1 != nil || err2 != nil {
				return command{}, fmt.Errorf("invalid coordinates %q %q", args[0], args[1])
			}
			return command{kind: cmdLocate, coords: &models.Coordinates{Latitude: lat, Longitude: lon}}, nil
		default:
			return command{}, fmt.Errorf("usage: locate [lat lon]")
		}
	case "home":
		return command{kind: cmdHome}, nil
	case "help", "?":
		return command{kind: cmdHelp}, nil
	case "quit", "exit":
		return command{kind: cmdQuit}, nil
	}
	return command{}, fmt.Errorf("unknown command %q (try help)", fields[0])
}

// renderState renders the visible screen
func renderState(s view.State) string {
	if s.Screen == view.ScreenSearch {
		return view.RenderSearch(s.SearchQuery, s.SearchResults, s.LocationErr).Text()
	}
	switch {
	case s.Loading:
		return fmt.Sprintf("Loading %s...\n", s.City)
	case s.Err != nil:
		return view.RenderError(s.City).Text()
	case s.ViewModel != nil:
		page := view.RenderCity(s.ViewModel, s.Unit, s.ExpandedDay, s.LocalTime).Text()
		if s.LocationErr != nil {
			page += view.LocationErrorMessage(s.LocationErr) + "\n"
		}
		return page
	}
	return ""
}
