package provider

import (
	"context"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/equity-cli/internal/fetcher"
	"github.com/sells-group/equity-cli/internal/model"
)

// FileProvider serves a snapshot loaded from a YAML file. It backs offline
// runs and test fixtures. The snapshot is loaded once, on first use.
type FileProvider struct {
	path string

	once sync.Once
	snap Snapshot
	err  error
}

// NewFileProvider creates a provider backed by the given snapshot file.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Name implements Provider.
func (f *FileProvider) Name() string { return "file" }

// Available implements Provider.
func (f *FileProvider) Available() bool {
	if f.path == "" {
		return false
	}
	_, err := os.Stat(f.path)
	return err == nil
}

// load parses the snapshot file once.
func (f *FileProvider) load() (Snapshot, error) {
	f.once.Do(func() {
		data, err := os.ReadFile(f.path)
		if err != nil {
			f.err = eris.Wrap(err, "file provider: read snapshot")
			return
		}
		if err := yaml.Unmarshal(data, &f.snap); err != nil {
			f.err = eris.Wrap(err, "file provider: parse snapshot")
			return
		}
	})
	return f.snap, f.err
}

// Profile implements Provider.
func (f *FileProvider) Profile(_ context.Context, ticker string) (model.CompanyProfile, error) {
	snap, err := f.load()
	if err != nil {
		return model.CompanyProfile{}, err
	}
	if snap.Profile.Ticker != "" && !strings.EqualFold(snap.Profile.Ticker, ticker) {
		return model.CompanyProfile{}, eris.Errorf("file provider: snapshot is for %s, not %s", snap.Profile.Ticker, ticker)
	}
	return snap.Profile, nil
}

// Financials implements Provider.
func (f *FileProvider) Financials(_ context.Context, _ string) ([]model.YearlyFinancials, error) {
	snap, err := f.load()
	if err != nil {
		return nil, err
	}
	return snap.Financials, nil
}

// Estimates implements Provider.
func (f *FileProvider) Estimates(_ context.Context, _ string) (model.Estimates, error) {
	snap, err := f.load()
	if err != nil {
		return model.Estimates{}, err
	}
	return snap.Estimates, nil
}

// Benchmark implements Provider.
func (f *FileProvider) Benchmark(_ context.Context) (model.BenchmarkSeries, error) {
	snap, err := f.load()
	if err != nil {
		return model.BenchmarkSeries{}, err
	}
	return snap.Benchmark, nil
}

// Peers implements Provider.
func (f *FileProvider) Peers(_ context.Context, _ string) ([]model.PeerRecord, error) {
	snap, err := f.load()
	if err != nil {
		return nil, err
	}
	return snap.Peers, nil
}

// openSource opens a benchmark data source. Plain paths and file:// URLs
// read from disk; http(s) and ftp URLs go through the matching fetcher.
func openSource(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		path := rawURL
		if err == nil && u.Scheme == "file" {
			path = u.Path
		}
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, eris.Wrap(openErr, "open benchmark file")
		}
		return f, nil
	}

	var f fetcher.Fetcher
	switch u.Scheme {
	case "http", "https":
		f = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	case "ftp":
		f = fetcher.NewFTPFetcher(fetcher.FTPOptions{})
	default:
		return nil, eris.Errorf("unsupported benchmark url scheme %q", u.Scheme)
	}
	return f.Download(ctx, rawURL)
}

// LoadBenchmarkCSV reads a benchmark return series from a CSV source. The
// source may be a local path, a file://, http(s) or ftp URL. Expected
// columns are year and return (decimal), with an optional header row.
// CAPM scalars are left zero for Normalize to fill.
func LoadBenchmarkCSV(ctx context.Context, source string) (model.BenchmarkSeries, error) {
	body, err := openSource(ctx, source)
	if err != nil {
		return model.BenchmarkSeries{}, err
	}
	defer body.Close()

	_, rows, err := fetcher.ReadCSV(body, fetcher.CSVOptions{TrimSpace: true, Comment: '#'})
	if err != nil {
		return model.BenchmarkSeries{}, eris.Wrap(err, "parse benchmark csv")
	}

	var series model.BenchmarkSeries
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		year, yearErr := strconv.Atoi(row[0])
		if yearErr != nil {
			// Tolerate a header row, nothing else.
			if i == 0 {
				continue
			}
			return model.BenchmarkSeries{}, eris.Errorf("benchmark csv row %d: bad year %q", i+1, row[0])
		}
		ret, retErr := strconv.ParseFloat(row[1], 64)
		if retErr != nil {
			return model.BenchmarkSeries{}, eris.Errorf("benchmark csv row %d: bad return %q", i+1, row[1])
		}
		series.MarketIndex = append(series.MarketIndex, model.BenchmarkYear{Year: year, Return: ret})
	}
	if len(series.MarketIndex) == 0 {
		return model.BenchmarkSeries{}, eris.Errorf("benchmark csv %s: no data rows", source)
	}
	return series, nil
}

// LoadPeersXLSX reads peer ratio snapshots from a workbook. The first row
// is the header: name, ticker, then one column per metric key. Metric
// cells that fail to parse contribute zero.
func LoadPeersXLSX(path string) ([]model.PeerRecord, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, eris.Errorf("peer workbook %s: no data rows", path)
	}

	header := rows[0]
	if len(header) < 3 {
		return nil, eris.Errorf("peer workbook %s: expected name, ticker and metric columns", path)
	}

	peers := make([]model.PeerRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 2 || row[0] == "" {
			continue
		}
		record := model.PeerRecord{
			Name:           row[0],
			Ticker:         row[1],
			CurrentMetrics: make(map[string]float64, len(header)-2),
		}
		for col := 2; col < len(header) && col < len(row); col++ {
			value, parseErr := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if parseErr != nil {
				value = 0
			}
			record.CurrentMetrics[header[col]] = value
		}
		peers = append(peers, record)
	}
	if len(peers) == 0 {
		return nil, eris.Errorf("peer workbook %s: no peers", path)
	}
	return peers, nil
}
