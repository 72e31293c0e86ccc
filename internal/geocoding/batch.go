package geocoding

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ThomasAyr/carte-scolaire/internal/metrics"
	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

// AddressRow is one line sent to the bulk endpoint. An empty Street geocodes
// the city itself.
type AddressRow struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	CityCode string `json:"citycode"`
	PostCode string `json:"postcode"`
}

// BatchResult pairs an input row with its position, if one was found.
type BatchResult struct {
	AddressRow
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (r BatchResult) Found() bool { return r.Lat != nil && r.Lon != nil }

var batchHeader = []string{"adresse", "city", "citycode", "postcode"}

// GeocodeCSV posts rows to /search/csv/ and returns one result per row, in
// input order.
func (c *Client) GeocodeCSV(ctx context.Context, rows []AddressRow) ([]BatchResult, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var data bytes.Buffer
	w := csv.NewWriter(&data)
	_ = w.Write(batchHeader)
	for _, r := range rows {
		_ = w.Write([]string{r.Street, r.City, r.CityCode, r.PostCode})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("data", "addresses.csv")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data.Bytes()); err != nil {
		return nil, err
	}
	fields := [][2]string{
		{"columns", "adresse"},
		{"columns", "city"},
		{"citycode", "citycode"},
		{"result_columns", "latitude"},
		{"result_columns", "longitude"},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + "/search/csv/"
	start := time.Now()
	provider.LogRequest(name, http.MethodPost, u)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDurationMs.WithLabelValues(name + "-csv").Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(name+"-csv", "error").Inc()
		return nil, fmt.Errorf("bulk geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(name+"-csv", "error").Inc()
		return nil, fmt.Errorf("bulk geocoder returned HTTP %d", resp.StatusCode)
	}

	out, err := parseBatch(resp.Body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(name+"-csv", "error").Inc()
		return nil, err
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(name+"-csv", "ok").Inc()
	provider.LogResponse(name+"-csv", resp.StatusCode, time.Since(start), len(out))
	return out, nil
}

func parseBatch(r io.Reader) ([]BatchResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading bulk header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	if _, ok := col["latitude"]; !ok {
		return nil, errors.New("bulk response has no latitude column")
	}

	var out []BatchResult
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading bulk response: %w", err)
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		res := BatchResult{AddressRow: AddressRow{
			Street:   get("adresse"),
			City:     get("city"),
			CityCode: get("citycode"),
			PostCode: get("postcode"),
		}}
		lat, errLat := strconv.ParseFloat(get("latitude"), 64)
		lon, errLon := strconv.ParseFloat(get("longitude"), 64)
		if errLat == nil && errLon == nil {
			res.Lat, res.Lon = &lat, &lon
		}
		out = append(out, res)
	}
	return out, nil
}
