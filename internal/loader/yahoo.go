package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"StockGuess/internal/model"
)

// DefaultChartURL is the Yahoo v8 chart endpoint, symbol appended.
const DefaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// Source templates. {url} is replaced by the chart URL and {url_escaped} by
// its query-escaped form.
var DefaultSources = []string{
	"{url}",
	"https://api.allorigins.win/raw?url={url_escaped}",
	"https://cors-anywhere.herokuapp.com/{url}",
	"https://corsproxy.io/?{url_escaped}",
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var errNoResult = errors.New("yahoo: no chart result")

// YahooFetcher implements Fetcher using the Yahoo Finance chart API. Each
// source is tried in order and the first one returning a usable chart wins.
type YahooFetcher struct {
	Client   *http.Client
	ChartURL string
	Sources  []string
	Timeout  time.Duration
}

// NewYahooFetcher creates a Yahoo fetcher with optional proxy support. An
// empty sources list uses DefaultSources.
func NewYahooFetcher(proxyURL string, sources []string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &YahooFetcher{
		Client:   &http.Client{Transport: transport},
		ChartURL: DefaultChartURL,
		Sources:  sources,
		Timeout:  10 * time.Second,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// ChartRequestURL builds the chart URL for a daily range ending at to.
func (f *YahooFetcher) ChartRequestURL(symbol string, from, to time.Time) string {
	return fmt.Sprintf("%s%s?period1=%d&period2=%d&interval=1d&includePrePost=true&events=div%%2Csplit%%2Cearn",
		f.ChartURL, url.PathEscape(symbol), from.Unix(), to.Unix())
}

func (f *YahooFetcher) FetchDaily(ctx context.Context, symbol string, from, to time.Time) (model.Series, error) {
	chartURL := f.ChartRequestURL(symbol, from, to)

	var lastErr error
	for _, src := range f.Sources {
		target := expandSource(src, chartURL)
		series, err := f.fetchOne(ctx, target)
		if err == nil {
			return series, nil
		}
		lastErr = fmt.Errorf("%s: %w", sourceHost(target), err)
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = errors.New("yahoo: no sources configured")
	}
	return nil, lastErr
}

func (f *YahooFetcher) fetchOne(ctx context.Context, target string) (model.Series, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}
	return parseChart(body)
}

// parseChart converts a chart response to a series. Rows with a null price
// are skipped and adjclose replaces close when present.
func parseChart(body []byte) (model.Series, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("yahoo: invalid json")
	}
	if desc := gjson.GetBytes(body, "chart.error.description"); desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("yahoo api error: %s", desc.String())
	}
	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, errNoResult
	}

	stamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	adj := result.Get("indicators.adjclose.0.adjclose").Array()

	series := make(model.Series, 0, len(stamps))
	for i, ts := range stamps {
		o, okO := number(opens, i)
		h, okH := number(highs, i)
		l, okL := number(lows, i)
		c, okC := number(closes, i)
		if !okO || !okH || !okL || !okC {
			continue
		}
		if a, ok := number(adj, i); ok {
			c = a
			h = math.Max(h, c)
			l = math.Min(l, c)
		}
		var vol int64
		if v, ok := number(volumes, i); ok {
			vol = int64(v)
		}
		t := time.Unix(ts.Int(), 0).UTC()
		series = append(series, model.Bar{
			Date:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: vol,
		})
	}
	if len(series) == 0 {
		return nil, model.ErrEmptySeries
	}

	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	// includePrePost can report a live row sharing the last session's date.
	deduped := series[:1]
	for _, b := range series[1:] {
		if b.Date.Equal(deduped[len(deduped)-1].Date) {
			deduped[len(deduped)-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	return deduped, nil
}

func number(arr []gjson.Result, i int) (float64, bool) {
	if i >= len(arr) || arr[i].Type != gjson.Number {
		return 0, false
	}
	return arr[i].Float(), true
}

func expandSource(tmpl, chartURL string) string {
	r := strings.NewReplacer("{url_escaped}", url.QueryEscape(chartURL), "{url}", chartURL)
	return r.Replace(tmpl)
}

func sourceHost(target string) string {
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		return u.Host
	}
	return "source"
}
