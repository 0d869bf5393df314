package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"leadpipe/config"
	"leadpipe/models"
)

// HTMLHandler scrapes public notice pages that publish foreclosure sales as
// an HTML table: one row per sale with address, city, date, time and the
// trustee firm.
type HTMLHandler struct {
	cfg    *config.SourceConfig
	client *http.Client
}

func NewHTMLHandler(cfg *config.SourceConfig, client *http.Client) *HTMLHandler {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTMLHandler{cfg: cfg, client: client}
}

func (h *HTMLHandler) ID() string {
	return h.cfg.ID
}

func (h *HTMLHandler) Scrape(ctx context.Context) (*ScrapeResult, error) {
	url, ok := h.cfg.Endpoints["listings"]
	if !ok {
		return nil, fmt.Errorf("source %s has no listings endpoint", h.cfg.ID)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; leadpipe/1.0)")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	listings, err := h.parseListings(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	if h.cfg.RateLimitMS > 0 {
		time.Sleep(time.Duration(h.cfg.RateLimitMS) * time.Millisecond)
	}

	return &ScrapeResult{Listings: listings, Raw: raw}, nil
}

// parseListings expects rows of the form:
// address | city | sale date | sale time | firm
func (h *HTMLHandler) parseListings(r io.Reader) ([]*models.LegacyListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var listings []*models.LegacyListing
	doc.Find("table.sales tbody tr, table.foreclosures tbody tr").Each(func(i int, row *goquery.Selection) {
		if h.cfg.MaxListings > 0 && len(listings) >= h.cfg.MaxListings {
			return
		}

		cells := row.Find("td").Map(func(_ int, cell *goquery.Selection) string {
			return strings.TrimSpace(cell.Text())
		})
		if len(cells) < 3 || cells[0] == "" {
			return
		}

		listing := &models.LegacyListing{
			Address:  cells[0],
			City:     cells[1],
			SaleDate: cells[2],
			Source:   h.cfg.ID,
			County:   h.cfg.County,
		}
		if len(cells) > 3 {
			listing.SaleTime = cells[3]
		}
		if len(cells) > 4 {
			listing.Firm = cells[4]
		}
		listings = append(listings, listing)
	})

	return listings, nil
}
