package extcal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/nhle/family-board/internal/model"
)

// fetchTimeout is the maximum time allowed for a single feed fetch.
const fetchTimeout = 15 * time.Second

// ICSFeed implements Feed over an ICS subscription endpoint fetched via
// HTTP, with optional basic auth.
type ICSFeed struct {
	id       string
	name     string
	url      string
	username string
	password string
	client   *http.Client
	logger   *slog.Logger
}

var _ Feed = (*ICSFeed)(nil)

// NewICSFeed builds a feed from its configuration. password may be empty
// when the endpoint is public.
func NewICSFeed(cfg model.FeedConfig, password string, logger *slog.Logger) *ICSFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &ICSFeed{
		id:       cfg.ID,
		name:     cfg.Name,
		url:      cfg.URL,
		username: cfg.Username,
		password: password,
		client:   &http.Client{Timeout: fetchTimeout},
		logger:   logger,
	}
}

// Events fetches the feed and returns the items overlapping [from, to].
func (f *ICSFeed) Events(ctx context.Context, from, to time.Time) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request %s: %w", f.id, err)
	}
	if f.username != "" {
		req.SetBasicAuth(f.username, f.password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", f.id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed %s: unexpected status %s", f.id, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed %s: %w", f.id, err)
	}

	items, err := parseItems(body, from, to, f.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", f.id, err)
	}

	f.logger.Debug("external feed fetched", "feed", f.id, "items", len(items))
	return items, nil
}

// parseItems parses an ICS payload and keeps the events overlapping
// [from, to]. Events that fail to parse are skipped, not fatal.
func parseItems(body []byte, from, to time.Time, logger *slog.Logger) ([]Item, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	items := make([]Item, 0)
	for _, ve := range cal.Events() {
		item, err := parseVEvent(ve)
		if err != nil {
			logger.Warn("skipping malformed feed event", "err", err)
			continue
		}
		if item.End.Before(from) || item.Start.After(to) {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func parseVEvent(ve *ical.VEvent) (Item, error) {
	var item Item

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return item, fmt.Errorf("event missing UID")
	}
	item.ID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		item.Title = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return item, fmt.Errorf("event %s: reading start: %w", item.ID, err)
	}
	item.Start = start

	end, err := ve.GetEndAt()
	if err != nil {
		// Feeds commonly omit DTEND on point-in-time entries.
		end = start
	}
	item.End = end

	// All-day entries carry VALUE=DATE on DTSTART.
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			item.AllDay = true
		}
	}

	return item, nil
}
