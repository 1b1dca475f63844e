package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/headline-hq/chirper/internal/logger"
)

// Sheet column layout. The names are the wire format of an existing
// deployment's ledger sheet and must stay stable.
var sheetHeaders = []string{
	"url",
	"timestamp",
	"news_api_requests",
	"tweets_today",
	"tweets_this_month",
	"last_tweet_time",
}

// timestamp layouts accepted when reading last_tweet_time. New rows are
// written as RFC 3339; older deployments wrote naive ISO timestamps.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// SheetStore is the durable ledger backed by one Google Sheet tab.
type SheetStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	log           logger.Logger
}

// NewSheetStore builds a store from a service-account credentials JSON
// blob and the target spreadsheet id.
func NewSheetStore(ctx context.Context, credentialsJSON, spreadsheetID, sheetName string, log logger.Logger) (*SheetStore, error) {
	if strings.TrimSpace(credentialsJSON) == "" {
		return nil, fmt.Errorf("sheets credentials are empty")
	}
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		log:           log,
	}, nil
}

// Load reads the whole ledger tab. An empty tab is initialized with the
// header row; a header-only tab yields a zero state.
func (s *SheetStore) Load(ctx context.Context) (State, error) {
	readRange := s.sheetName + "!A:F"

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return State{}, fmt.Errorf("read ledger sheet: %w", err)
	}

	if len(resp.Values) == 0 {
		s.log.InfoObj("initializing empty ledger sheet", "ledger_init", map[string]any{
			"sheet": s.sheetName,
		})
		if err := s.appendRow(ctx, headerRow()); err != nil {
			return State{}, fmt.Errorf("write ledger headers: %w", err)
		}
		return State{}, nil
	}

	if !strings.EqualFold(cellString(resp.Values[0], 0), sheetHeaders[0]) {
		s.log.WarnObj("ledger sheet headers do not match the expected layout", "ledger_header_mismatch", map[string]any{
			"sheet": s.sheetName,
		})
	}

	return parseRows(resp.Values[1:]), nil
}

// Append writes one posted-article row carrying the updated counters.
func (s *SheetStore) Append(ctx context.Context, url string, u Usage, now time.Time) error {
	lastPost := ""
	if !u.LastPostTime.IsZero() {
		lastPost = u.LastPostTime.Format(time.RFC3339)
	}

	row := []any{
		url,
		now.Format(time.RFC3339),
		strconv.Itoa(u.NewsAPIRequests),
		strconv.Itoa(u.PostsToday),
		strconv.Itoa(u.PostsThisMonth),
		lastPost,
	}
	if err := s.appendRow(ctx, row); err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}
	return nil
}

func (s *SheetStore) appendRow(ctx context.Context, row []any) error {
	vr := &sheets.ValueRange{Values: [][]any{row}}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.sheetName+"!A:F", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func headerRow() []any {
	row := make([]any, len(sheetHeaders))
	for i, h := range sheetHeaders {
		row[i] = h
	}
	return row
}

// parseRows builds a State from the data rows: posted URLs come from
// every row's first column, counters from the last row. Malformed cells
// degrade to zero values rather than failing the run.
func parseRows(rows [][]any) State {
	st := State{}

	for _, row := range rows {
		if url := cellString(row, 0); url != "" {
			st.PostedURLs = append(st.PostedURLs, url)
		}
	}

	if len(rows) == 0 {
		return st
	}

	last := rows[len(rows)-1]
	st.Usage.NewsAPIRequests = cellInt(last, 2)
	st.Usage.PostsToday = cellInt(last, 3)
	st.Usage.PostsThisMonth = cellInt(last, 4)
	st.Usage.LastPostTime = cellTime(last, 5)

	return st
}

func cellString(row []any, idx int) string {
	if idx >= len(row) {
		return ""
	}
	s, ok := row[idx].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func cellInt(row []any, idx int) int {
	n, err := strconv.Atoi(cellString(row, idx))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func cellTime(row []any, idx int) time.Time {
	raw := cellString(row, idx)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
