package view

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"city-weather/models"
	"city-weather/units"
)

const iconBaseURL = "https://openweathermap.org/img/wn/"

// Display formats for the fixed en-US locale
const (
	DateFormat = "Monday, January 2"
	TimeFormat = "03:04 PM"
)

// CurrentPanel is the rendered current-conditions block
type CurrentPanel struct {
	Temperature        string `json:"temperature"`
	IconURL            string `json:"iconUrl,omitempty"`
	Description        string `json:"description"`
	FeelsLike          string `json:"feelsLike"`
	Humidity           string `json:"humidity"`
	Wind               string `json:"wind"`
	Pressure           string `json:"pressure"`
	AirQuality         string `json:"airQuality"`
	AirQualitySeverity int    `json:"airQualitySeverity"`
}

// DayDetails is shown for the expanded forecast day only
type DayDetails struct {
	Pressure   string `json:"pressure"`
	Humidity   string `json:"humidity"`
	Clouds     string `json:"clouds"`
	Wind       string `json:"wind"`
	AirQuality string `json:"airQuality"`
	FeelsLike  string `json:"feelsLike"`
}

// DayRow is one accordion row of the daily forecast
type DayRow struct {
	Index       int         `json:"index"`
	Label       string      `json:"label"`
	IconURL     string      `json:"iconUrl,omitempty"`
	Description string      `json:"description"`
	HighLow     string      `json:"highLow"`
	Expanded    bool        `json:"expanded"`
	Details     *DayDetails `json:"details,omitempty"`
}

// CityPage is the rendered city screen
type CityPage struct {
	City      string       `json:"city"`
	Date      string       `json:"date,omitempty"`
	LocalTime string       `json:"localTime,omitempty"`
	Unit      string       `json:"unit"`
	Current   CurrentPanel `json:"current"`
	Days      []DayRow     `json:"days"`
}

// ErrorPage is the rendered required-data failure screen
type ErrorPage struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Href    string `json:"href"`
}

// SearchOption is one rendered search candidate
type SearchOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Href  string `json:"href"`
}

// SearchPage is the rendered search screen
type SearchPage struct {
	Title          string         `json:"title"`
	Query          string         `json:"query,omitempty"`
	Options        []SearchOption `json:"options"`
	LocationAction string         `json:"locationAction"`
	LocationError  string         `json:"locationError,omitempty"`
}

// RenderCity renders vm in unit. expanded is the open forecast day or -1;
// a zero localTime omits the date and time lines.
func RenderCity(vm *models.CityViewModel, unit models.TemperatureUnit, expanded int, localTime time.Time) CityPage {
	symbol := units.TemperatureUnitSymbol(unit)
	temp := func(celsius float64) string {
		return fmt.Sprintf("%d%s", units.ConvertTemperature(celsius, unit), symbol)
	}

	current := vm.Current
	var airQuality *int
	if vm.AirQuality != nil {
		aqi := vm.AirQuality.AQI
		airQuality = &aqi
	}
	level := units.AirQualityLevelOf(airQuality)

	page := CityPage{
		City: current.CityName,
		Unit: symbol,
		Current: CurrentPanel{
			Temperature:        temp(current.Temperature),
			IconURL:            IconURL(current.Icon, true),
			Description:        current.ConditionDescription,
			FeelsLike:          temp(current.FeelsLike),
			Humidity:           percent(current.HumidityPercent),
			Wind:               windSpeed(current.WindSpeed),
			Pressure:           pressure(current.PressureHPa),
			AirQuality:         level.Label,
			AirQualitySeverity: level.SeverityRank,
		},
		Days: make([]DayRow, 0, len(vm.ForecastDays)),
	}
	if !localTime.IsZero() {
		page.Date = localTime.Format(DateFormat)
		page.LocalTime = localTime.Format(TimeFormat)
	}

	for i, day := range vm.ForecastDays {
		s := day.Sample
		row := DayRow{
			Index:       i,
			Label:       day.DayLabel,
			IconURL:     IconURL(s.Icon, false),
			Description: s.ConditionDescription,
			HighLow:     temp(s.TempMax) + " / " + temp(s.TempMin),
			Expanded:    i == expanded,
		}
		if row.Expanded {
			row.Details = &DayDetails{
				Pressure:   pressure(s.PressureHPa),
				Humidity:   percent(s.HumidityPercent),
				Clouds:     percent(s.CloudsPercent),
				Wind:       windSpeed(s.WindSpeed),
				AirQuality: units.AirQualityLevelOf(day.AirQualityIndex).Label,
				FeelsLike:  temp(s.FeelsLike),
			}
		}
		page.Days = append(page.Days, row)
	}
	return page
}

// RenderError renders the failure screen for city
func RenderError(city string) ErrorPage {
	return ErrorPage{
		Title:   "Error",
		Message: "Weather data not available for " + city,
		Action:  "Return to search",
		Href:    "/",
	}
}

// RenderSearch renders the search screen
func RenderSearch(query string, candidates []models.CityCandidate, locationErr error) SearchPage {
	page := SearchPage{
		Title:          "Weather Forecast",
		Query:          query,
		Options:        make([]SearchOption, 0, len(candidates)),
		LocationAction: "Use my current location",
		LocationError:  LocationErrorMessage(locationErr),
	}
	for _, c := range candidates {
		page.Options = append(page.Options, SearchOption{
			Label: c.Label(),
			Value: c.Value(),
			Href:  CityPath(c.Name),
		})
	}
	return page
}

// CityPath is the route of the city screen for name
func CityPath(name string) string {
	return "/city/" + url.PathEscape(name)
}

// IconURL returns the provider icon URL; large selects the 2x variant
func IconURL(icon string, large bool) string {
	if icon == "" {
		return ""
	}
	if large {
		return iconBaseURL + icon + "@2x.png"
	}
	return iconBaseURL + icon + ".png"
}

// LocationErrorMessage is the user-facing text for a location failure
func LocationErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrGeolocationUnsupported):
		return "Geolocation is not supported on this device."
	case errors.Is(err, models.ErrGeolocationDenied):
		return capitalize(err.Error())
	case errors.Is(err, models.ErrWeatherUnavailable):
		return "Weather data not available"
	default:
		return capitalize(err.Error())
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func percent(v int) string {
	return strconv.Itoa(v) + "%"
}

func windSpeed(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " m/s"
}

func pressure(v int) string {
	return strconv.Itoa(v) + " hPa"
}
