package testutils

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// FakeCity is a city served by the fake OpenWeatherMap server
type FakeCity struct {
	Name     string
	Country  string
	Lat, Lon float64
	Temp     float64
	Timezone int
	AQI      int
}

// DefaultFakeCities are served when NewOpenWeatherServer gets none
var DefaultFakeCities = []FakeCity{
	{Name: "London", Country: "GB", Lat: 51.5085, Lon: -0.1257, Temp: 14.2, Timezone: 3600, AQI: 2},
	{Name: "Paris", Country: "FR", Lat: 48.8534, Lon: 2.3488, Temp: 16.8, Timezone: 3600, AQI: 3},
}

// OpenWeatherServer imitates the OpenWeatherMap 2.5 endpoints the app calls
type OpenWeatherServer struct {
	*httptest.Server

	mu     sync.Mutex
	cities []FakeCity
	hits   map[string]int
	// failAir makes both air_pollution endpoints answer 500
	failAir bool
}

// NewOpenWeatherServer starts a fake server closed when t finishes
func NewOpenWeatherServer(t *testing.T, cities ...FakeCity) *OpenWeatherServer {
	t.Helper()
	if len(cities) == 0 {
		cities = DefaultFakeCities
	}
	s := &OpenWeatherServer{cities: cities, hits: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/weather", s.handleWeather)
	mux.HandleFunc("/forecast", s.handleForecast)
	mux.HandleFunc("/air_pollution", s.handleAirPollution)
	mux.HandleFunc("/air_pollution/forecast", s.handleAirPollution)
	mux.HandleFunc("/find", s.handleFind)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		if r.URL.Query().Get("appid") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"cod": 401, "message": "Invalid API key"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Hits returns how many requests reached path
func (s *OpenWeatherServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *OpenWeatherServer) lookup(r *http.Request) (FakeCity, bool) {
	q := r.URL.Query()
	if name := q.Get("q"); name != "" {
		for _, c := range s.cities {
			if strings.EqualFold(c.Name, name) {
				return c, true
			}
		}
		return FakeCity{}, false
	}
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil || len(s.cities) == 0 {
		return FakeCity{}, false
	}
	// a position resolves to the nearest city
	nearest, best := s.cities[0], math.Inf(1)
	for _, c := range s.cities {
		if d := math.Hypot(c.Lat-lat, c.Lon-lon); d < best {
			nearest, best = c, d
		}
	}
	return nearest, true
}

func (s *OpenWeatherServer) handleWeather(w http.ResponseWriter, r *http.Request) {
	city, ok := s.lookup(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"cod": "404", "message": "city not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"coord":    map[string]float64{"lat": city.Lat, "lon": city.Lon},
		"weather":  []map[string]interface{}{{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}},
		"main":     map[string]interface{}{"temp": city.Temp, "feels_like": city.Temp - 1, "pressure": 1015, "humidity": 60},
		"wind":     map[string]float64{"speed": 3.1},
		"sys":      map[string]string{"country": city.Country},
		"timezone": city.Timezone,
		"name":     city.Name,
	})
}

func (s *OpenWeatherServer) handleForecast(w http.ResponseWriter, r *http.Request) {
	city, ok := s.lookup(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"cod": "404", "message": "city not found"})
		return
	}
	start := time.Now().UTC().Truncate(3 * time.Hour)
	list := make([]map[string]interface{}, 0, 40)
	for i := 0; i < 40; i++ {
		list = append(list, map[string]interface{}{
			"dt": start.Add(time.Duration(i*3) * time.Hour).Unix(),
			"main": map[string]interface{}{
				"temp": city.Temp, "feels_like": city.Temp, "temp_min": city.Temp - 2, "temp_max": city.Temp + 2,
				"pressure": 1012, "humidity": 70,
			},
			"weather": []map[string]interface{}{{"id": 500, "description": "light rain", "icon": "10d"}},
			"clouds":  map[string]int{"all": 75},
			"wind":    map[string]float64{"speed": 4.2},
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"list": list})
}

func (s *OpenWeatherServer) handleAirPollution(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fail := s.failAir
	s.mu.Unlock()
	city, ok := s.lookup(r)
	if fail || !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	start := time.Now().UTC().Truncate(time.Hour)
	n := 1
	if strings.HasSuffix(r.URL.Path, "/forecast") {
		n = 96
	}
	list := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, map[string]interface{}{
			"dt":   start.Add(time.Duration(i) * time.Hour).Unix(),
			"main": map[string]int{"aqi": city.AQI},
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"list": list})
}

func (s *OpenWeatherServer) handleFind(w http.ResponseWriter, r *http.Request) {
	prefix := strings.ToLower(r.URL.Query().Get("q"))
	list := []map[string]interface{}{}
	for _, c := range s.cities {
		if prefix != "" && strings.HasPrefix(strings.ToLower(c.Name), prefix) {
			list = append(list, map[string]interface{}{
				"name":  c.Name,
				"coord": map[string]float64{"lat": c.Lat, "lon": c.Lon},
				"sys":   map[string]string{"country": c.Country},
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"list": list, "count": len(list)})
}

// SetFailAirQuality toggles air-quality failures
func (s *OpenWeatherServer) SetFailAirQuality(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAir = fail
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
