// internal/planner/weather/client.go
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"itinerary-workers/internal/common/config"
	commonhttp "itinerary-workers/internal/common/http"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/destinations"
)

// ForecastHorizon is how far ahead the forecast API answers.
const ForecastHorizon = 16

const (
	SourceForecast = "forecast"
	SourceSeasonal = "seasonal"
	SourceNone     = "none"
)

type DayOutlook struct {
	Date                string  `json:"date"`
	High                float64 `json:"high"`
	Low                 float64 `json:"low"`
	PrecipitationChance int     `json:"precipitationChance"`
}

type Outlook struct {
	Destination string       `json:"destination"`
	Source      string       `json:"source"`
	Days        []DayOutlook `json:"days,omitempty"`
	Summary     string       `json:"summary"`
}

type forecastResponse struct {
	Daily struct {
		Time          []string  `json:"time"`
		High          []float64 `json:"temperature_2m_max"`
		Low           []float64 `json:"temperature_2m_min"`
		Precipitation []int     `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Client fetches a short-range forecast and degrades to seasonal norms. It never returns
// an error; failures are logged and answered from the destination data asset.
type Client struct {
	baseURL string
	http    *commonhttp.Client
	timeout time.Duration
	cache   redis.Cmdable
	ttl     time.Duration
	catalog *destinations.Catalog
	logger  logger.Logger
	now     func() time.Time
}

// NewClient builds a weather client. cache may be nil.
func NewClient(cfg config.WeatherConfig, cache redis.Cmdable, catalog *destinations.Catalog, log logger.Logger) *Client {
	if catalog == nil {
		catalog = destinations.Default()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    commonhttp.NewClient(0),
		timeout: timeout,
		cache:   cache,
		ttl:     time.Duration(cfg.CacheTTL) * time.Second,
		catalog: catalog,
		logger:  log.WithFields(map[string]interface{}{"component": "weather"}),
		now:     time.Now,
	}
}

// Outlook describes the weather for the trip dates.
func (c *Client) Outlook(ctx context.Context, req models.TripRequest) Outlook {
	dest, ok := c.catalog.Destination(req.Destination)
	if !ok {
		return Outlook{
			Destination: req.Destination,
			Source:      SourceNone,
			Summary:     "No weather data for this destination; check a local forecast before packing.",
		}
	}

	dates := req.Dates(ForecastHorizon)
	if len(dates) == 0 {
		return c.seasonal(dest, c.now())
	}
	if !c.inHorizon(dates) || c.baseURL == "" {
		return c.seasonal(dest, dates[0])
	}

	key := cacheKey(dest.Key, dates)
	if out, ok := c.cached(ctx, key); ok {
		return out
	}

	out, err := c.fetch(ctx, dest, dates)
	if err != nil {
		c.logger.Warn("Weather lookup failed, using seasonal norms", map[string]interface{}{
			"destination": dest.Key,
			"error":       err.Error(),
		})
		return c.seasonal(dest, dates[0])
	}
	c.store(ctx, key, out)
	return out
}

func (c *Client) inHorizon(dates []time.Time) bool {
	today := c.now().UTC().Truncate(24 * time.Hour)
	last := dates[len(dates)-1]
	return !dates[0].Before(today) && last.Sub(today) < ForecastHorizon*24*time.Hour
}

func (c *Client) fetch(ctx context.Context, dest destinations.Destination, dates []time.Time) (Outlook, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	v := url.Values{}
	v.Set("latitude", fmt.Sprintf("%.4f", dest.Lat))
	v.Set("longitude", fmt.Sprintf("%.4f", dest.Lon))
	v.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	v.Set("timezone", "auto")
	v.Set("start_date", dates[0].Format(models.DateLayout))
	v.Set("end_date", dates[len(dates)-1].Format(models.DateLayout))

	var resp forecastResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/v1/forecast?"+v.Encode(), &resp); err != nil {
		return Outlook{}, err
	}

	daily := resp.Daily
	n := len(daily.Time)
	if n == 0 || len(daily.High) < n || len(daily.Low) < n {
		return Outlook{}, fmt.Errorf("forecast response has %d days with mismatched series", n)
	}

	out := Outlook{Destination: dest.Name, Source: SourceForecast}
	for i := 0; i < n; i++ {
		day := DayOutlook{Date: daily.Time[i], High: daily.High[i], Low: daily.Low[i]}
		if i < len(daily.Precipitation) {
			day.PrecipitationChance = daily.Precipitation[i]
		}
		out.Days = append(out.Days, day)
	}
	out.Summary = summarize(out.Days)
	return out, nil
}

func (c *Client) seasonal(dest destinations.Destination, when time.Time) Outlook {
	out := Outlook{Destination: dest.Name, Source: SourceSeasonal}
	high, low, rain, ok := dest.Seasonal(int(when.Month()))
	if !ok {
		out.Source = SourceNone
		out.Summary = "No seasonal norms on record; check a local forecast before packing."
		return out
	}
	out.Summary = fmt.Sprintf("Typical %s in %s: highs around %.0f°C, lows around %.0f°C, about %d rainy days.",
		when.Month(), dest.Name, high, low, rain)
	return out
}

func summarize(days []DayOutlook) string {
	high, low := days[0].High, days[0].Low
	wet := 0
	for _, d := range days {
		if d.High > high {
			high = d.High
		}
		if d.Low < low {
			low = d.Low
		}
		if d.PrecipitationChance >= 50 {
			wet++
		}
	}
	return fmt.Sprintf("Forecast: highs up to %.0f°C, lows down to %.0f°C, %d of %d days likely wet.",
		high, low, wet, len(days))
}

func cacheKey(dest string, dates []time.Time) string {
	return fmt.Sprintf("weather:%s:%s:%s", dest,
		dates[0].Format(models.DateLayout), dates[len(dates)-1].Format(models.DateLayout))
}

func (c *Client) cached(ctx context.Context, key string) (Outlook, bool) {
	if c.cache == nil {
		return Outlook{}, false
	}
	val, err := c.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("Weather cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return Outlook{}, false
	}
	var out Outlook
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return Outlook{}, false
	}
	return out, true
}

func (c *Client) store(ctx context.Context, key string, out Outlook) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug("Weather cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
