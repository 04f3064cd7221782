package ledger

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SheetsAPI the slice of the spreadsheet backend the projector needs.
// The production implementation talks to the Google Sheets v4 REST API;
// tests use an in-memory fake.
type SheetsAPI interface {
	// SheetTitles lists the tab titles of the spreadsheet.
	SheetTitles(ctx context.Context) ([]string, error)

	// AddSheets creates the named tabs in one batch.
	AddSheets(ctx context.Context, titles []string) error

	// AppendRow appends one row after the last data row of the tab.
	AppendRow(ctx context.Context, sheet string, values []interface{}) error

	// UpdateRange overwrites an A1 range on the tab with one row.
	UpdateRange(ctx context.Context, sheet, a1Range string, values []interface{}) error

	// ReadColumn reads a single-column A1 range top to bottom. Trailing
	// empty cells are not included.
	ReadColumn(ctx context.Context, sheet, a1Range string) ([]string, error)
}

// SheetsClient Google Sheets v4 REST client over resty.
type SheetsClient struct {
	httpClient    *resty.Client
	spreadsheetID string
	logger        *zap.Logger
}

type sheetsErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewSheetsClient(baseURL, spreadsheetID, accessToken string, logger *zap.Logger) *SheetsClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &SheetsClient{
		httpClient:    client,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}
}

func (c *SheetsClient) checkResponse(resp *resty.Response, errBody *sheetsErrorBody, action string) error {
	if resp.IsError() {
		c.logger.Error("sheets API returned error",
			zap.String("action", action),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", errBody.Error.Message),
		)
		return fmt.Errorf("sheets API error on %s: %s (code %d)", action, errBody.Error.Message, resp.StatusCode())
	}
	return nil
}

func (c *SheetsClient) rangeURL(sheet, a1Range string) string {
	full := sheet
	if a1Range != "" {
		full = sheet + "!" + a1Range
	}
	return fmt.Sprintf("/v4/spreadsheets/%s/values/%s", c.spreadsheetID, url.PathEscape(full))
}

func (c *SheetsClient) SheetTitles(ctx context.Context) ([]string, error) {
	var result struct {
		Sheets []struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	var errBody sheetsErrorBody

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("fields", "sheets.properties.title").
		SetResult(&result).
		SetError(&errBody).
		Get(fmt.Sprintf("/v4/spreadsheets/%s", c.spreadsheetID))
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}
	if err := c.checkResponse(resp, &errBody, "get metadata"); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(result.Sheets))
	for _, s := range result.Sheets {
		titles = append(titles, s.Properties.Title)
	}
	return titles, nil
}

func (c *SheetsClient) AddSheets(ctx context.Context, titles []string) error {
	if len(titles) == 0 {
		return nil
	}

	requests := make([]map[string]interface{}, 0, len(titles))
	for _, title := range titles {
		requests = append(requests, map[string]interface{}{
			"addSheet": map[string]interface{}{
				"properties": map[string]interface{}{"title": title},
			},
		})
	}

	var errBody sheetsErrorBody
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"requests": requests}).
		SetError(&errBody).
		Post(fmt.Sprintf("/v4/spreadsheets/%s:batchUpdate", c.spreadsheetID))
	if err != nil {
		return fmt.Errorf("failed to add sheets: %w", err)
	}
	return c.checkResponse(resp, &errBody, "batch update")
}

func (c *SheetsClient) AppendRow(ctx context.Context, sheet string, values []interface{}) error {
	var errBody sheetsErrorBody
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"valueInputOption": "USER_ENTERED",
			"insertDataOption": "INSERT_ROWS",
		}).
		SetBody(map[string]interface{}{"values": [][]interface{}{values}}).
		SetError(&errBody).
		Post(c.rangeURL(sheet, "A:Z") + ":append")
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return c.checkResponse(resp, &errBody, "append")
}

func (c *SheetsClient) UpdateRange(ctx context.Context, sheet, a1Range string, values []interface{}) error {
	var errBody sheetsErrorBody
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("valueInputOption", "USER_ENTERED").
		SetBody(map[string]interface{}{"values": [][]interface{}{values}}).
		SetError(&errBody).
		Put(c.rangeURL(sheet, a1Range))
	if err != nil {
		return fmt.Errorf("failed to update range: %w", err)
	}
	return c.checkResponse(resp, &errBody, "update")
}

func (c *SheetsClient) ReadColumn(ctx context.Context, sheet, a1Range string) ([]string, error) {
	var result struct {
		Values [][]string `json:"values"`
	}
	var errBody sheetsErrorBody

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("majorDimension", "COLUMNS").
		SetResult(&result).
		SetError(&errBody).
		Get(c.rangeURL(sheet, a1Range))
	if err != nil {
		return nil, fmt.Errorf("failed to read column: %w", err)
	}
	if err := c.checkResponse(resp, &errBody, "read"); err != nil {
		return nil, err
	}

	if len(result.Values) == 0 {
		return nil, nil
	}
	return result.Values[0], nil
}
