package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// apiResponse Bot API response envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Client Telegram Bot API client over resty.
type Client struct {
	httpClient  *resty.Client
	logger      *zap.Logger
	pollTimeout int
}

// NewClient creates a Bot API client. pollTimeout is the long-poll
// timeout in seconds; the HTTP timeout is set above it so a quiet poll
// is not reported as an error.
func NewClient(baseURL, token string, pollTimeout int, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(fmt.Sprintf("%s/bot%s", baseURL, token)).
		SetTimeout(time.Duration(pollTimeout+15) * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient:  client,
		logger:      logger,
		pollTimeout: pollTimeout,
	}
}

func (c *Client) call(ctx context.Context, method string, body interface{}, out interface{}) error {
	var response apiResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&response).
		Post("/" + method)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	if !response.OK {
		c.logger.Error("bot API returned error",
			zap.String("method", method),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("description", response.Description),
		)
		return fmt.Errorf("bot API error on %s: %s", method, response.Description)
	}
	if out != nil && response.Result != nil {
		if err := json.Unmarshal(response.Result, out); err != nil {
			return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for the next batch of updates.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	body := map[string]interface{}{
		"offset":          offset,
		"timeout":         c.pollTimeout,
		"allowed_updates": []string{"message", "callback_query"},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", body, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends text with an optional keyboard markup.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup interface{}) (int64, error) {
	body := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if markup != nil {
		body["reply_markup"] = markup
	}

	var sent Message
	if err := c.call(ctx, "sendMessage", body, &sent); err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendPhoto re-sends a stored photo by file id.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	body := map[string]interface{}{
		"chat_id": chatID,
		"photo":   fileID,
	}
	if caption != "" {
		body["caption"] = caption
	}
	return c.call(ctx, "sendPhoto", body, nil)
}

// SendVideo re-sends a stored video by file id.
func (c *Client) SendVideo(ctx context.Context, chatID int64, fileID, caption string) error {
	body := map[string]interface{}{
		"chat_id": chatID,
		"video":   fileID,
	}
	if caption != "" {
		body["caption"] = caption
	}
	return c.call(ctx, "sendVideo", body, nil)
}

// SendDocument uploads a generated file as a document.
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, content []byte, caption string) error {
	var response apiResponse
	req := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("document", filename, bytes.NewReader(content)).
		SetFormData(map[string]string{
			"chat_id": strconv.FormatInt(chatID, 10),
		}).
		SetResult(&response)
	if caption != "" {
		req.SetFormData(map[string]string{"caption": caption})
	}

	if _, err := req.Post("/sendDocument"); err != nil {
		return fmt.Errorf("failed to call sendDocument: %w", err)
	}
	if !response.OK {
		return fmt.Errorf("bot API error on sendDocument: %s", response.Description)
	}
	return nil
}

// ClearReplyMarkup removes the inline keyboard from a sent message.
func (c *Client) ClearReplyMarkup(ctx context.Context, chatID int64, messageID int64) error {
	body := map[string]interface{}{
		"chat_id":      chatID,
		"message_id":   messageID,
		"reply_markup": InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{}},
	}
	return c.call(ctx, "editMessageReplyMarkup", body, nil)
}

// AnswerCallback acknowledges a button press, optionally with a toast.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	body := map[string]interface{}{
		"callback_query_id": callbackID,
	}
	if text != "" {
		body["text"] = text
	}
	return c.call(ctx, "answerCallbackQuery", body, nil)
}
