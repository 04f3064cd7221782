package bot

import "context"

// Gateway outbound side of the chat transport. The service layer talks
// to this interface only, so tests run against an in-memory fake.
type Gateway interface {
	// SendMessage sends text with an optional keyboard markup and
	// returns the new message id.
	SendMessage(ctx context.Context, chatID int64, text string, markup interface{}) (int64, error)

	// SendPhoto / SendVideo re-send stored attachments by file id.
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error
	SendVideo(ctx context.Context, chatID int64, fileID, caption string) error

	// SendDocument uploads a generated file.
	SendDocument(ctx context.Context, chatID int64, filename string, content []byte, caption string) error

	// ClearReplyMarkup removes the inline keyboard from a sent message
	// after its buttons have been consumed.
	ClearReplyMarkup(ctx context.Context, chatID int64, messageID int64) error

	// AnswerCallback acknowledges a button press.
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
