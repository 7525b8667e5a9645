package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockDashboard/internal/model"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// Column headers of the KIND corp list download.
const (
	colName   = "회사명"
	colCode   = "종목코드"
	colMarket = "시장구분"
)

// KRXLoader scrapes the KIND listed-company table.
type KRXLoader struct {
	URL      string
	Encoding string // charset label of the response body, e.g. "euc-kr"
	Client   *http.Client
	Log      *zap.Logger
}

// NewKRXLoader creates a loader with optional proxy support.
func NewKRXLoader(listURL, encoding, proxyURL string, log *zap.Logger) *KRXLoader {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &KRXLoader{
		URL:      listURL,
		Encoding: encoding,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Log: log,
	}
}

// Load downloads and parses the listing.
func (l *KRXLoader) Load(ctx context.Context) (*Directory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch company list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch company list: status %d", resp.StatusCode)
	}

	enc := l.Encoding
	if enc == "" {
		enc = "euc-kr"
	}
	body, err := charset.NewReaderLabel(enc, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode company list as %s: %w", enc, err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse company list: %w", err)
	}

	companies, err := ParseTable(doc)
	if err != nil {
		return nil, err
	}
	l.Log.Info("company list loaded", zap.Int("companies", len(companies)))
	return New(companies, time.Now()), nil
}

// ParseTable extracts companies from the first table in doc. Columns are
// located by header text so column order does not matter.
func ParseTable(doc *goquery.Document) ([]model.Company, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("company list: no table found")
	}

	nameIdx, codeIdx, marketIdx := -1, -1, -1
	var companies []model.Company
	header := true

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th, td")
		if header {
			cells.Each(func(i int, cell *goquery.Selection) {
				switch strings.TrimSpace(cell.Text()) {
				case colName:
					nameIdx = i
				case colCode:
					codeIdx = i
				case colMarket:
					marketIdx = i
				}
			})
			header = false
			return
		}
		if nameIdx < 0 || codeIdx < 0 {
			return
		}
		name := strings.TrimSpace(cells.Eq(nameIdx).Text())
		code, ok := NormalizeCode(cells.Eq(codeIdx).Text())
		if name == "" || !ok {
			return
		}
		c := model.Company{Name: name, Code: code}
		if marketIdx >= 0 {
			c.Market = strings.TrimSpace(cells.Eq(marketIdx).Text())
		}
		companies = append(companies, c)
	})

	if nameIdx < 0 || codeIdx < 0 {
		return nil, fmt.Errorf("company list: header must contain %q and %q", colName, colCode)
	}
	return companies, nil
}

// NormalizeCode left-pads a numeric code to 6 digits. Spreadsheet exports
// drop leading zeros, so "5930" becomes "005930".
func NormalizeCode(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) > 6 {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return strings.Repeat("0", 6-len(s)) + s, true
}
