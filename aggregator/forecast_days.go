package aggregator

import (
	"time"

	"city-weather/models"
)

// DaysShown is the number of forecast days the city view displays
const DaysShown = 7

var weekdayNames = [DaysShown]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// WeekdayIndex returns the Monday-based weekday index of t (Monday is 0)
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DayLabels returns the weekday names rotated so that index 0 is todayIndex
func DayLabels(todayIndex int) []string {
	todayIndex = ((todayIndex % 7) + 7) % 7
	labels := make([]string, DaysShown)
	for i := range labels {
		labels[i] = weekdayNames[(todayIndex+i)%7]
	}
	return labels
}

// BuildForecastDays turns the 3-hour forecast list into display days.
//
// Entries 0..6 of samples stand for today and the following six days by
// position alone; the aggregator does not re-bin them by timestamp. Labels
// and calendar dates come from today, in today's location. Each day's AQI
// is taken from the first air-quality sample on the same calendar date.
// The result never has more than DaysShown entries and is never padded.
func BuildForecastDays(samples []models.ForecastSample, airQuality []models.AirQualitySample, today time.Time) []models.ForecastDay {
	n := len(samples)
	if n > DaysShown {
		n = DaysShown
	}

	loc := today.Location()
	labels := DayLabels(WeekdayIndex(today))
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	days := make([]models.ForecastDay, 0, n)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, i)
		days = append(days, models.ForecastDay{
			DayLabel:        labels[i],
			Date:            date,
			Sample:          samples[i],
			AirQualityIndex: aqiOnDate(airQuality, date),
		})
	}
	return days
}

func aqiOnDate(samples []models.AirQualitySample, date time.Time) *int {
	y, m, d := date.Date()
	for _, s := range samples {
		sy, sm, sd := s.Timestamp.In(date.Location()).Date()
		if sy == y && sm == m && sd == d {
			aqi := s.AQI
			return &aqi
		}
	}
	return nil
}
