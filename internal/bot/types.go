package bot

// Telegram Bot API wire types, limited to the fields the service reads.

// Update one long-poll update.
type Update struct {
	UpdateID int64          `json:"update_id"`
	Message  *Message       `json:"message,omitempty"`
	Callback *CallbackQuery `json:"callback_query,omitempty"`
}

// ChatID returns the chat the update belongs to, or 0 for updates the
// service does not handle.
func (u *Update) ChatID() int64 {
	if u.Message != nil {
		return u.Message.Chat.ID
	}
	if u.Callback != nil && u.Callback.Message != nil {
		return u.Callback.Message.Chat.ID
	}
	return 0
}

// Message incoming chat message.
type Message struct {
	MessageID int64      `json:"message_id"`
	From      *ChatUser  `json:"from,omitempty"`
	Chat      Chat       `json:"chat"`
	Text      string     `json:"text,omitempty"`
	Contact   *Contact   `json:"contact,omitempty"`
	Location  *Location  `json:"location,omitempty"`
	Photo     []PhotoSize `json:"photo,omitempty"`
	Video     *Video     `json:"video,omitempty"`
}

// LargestPhoto returns the file id of the highest-resolution variant.
func (m *Message) LargestPhoto() string {
	if len(m.Photo) == 0 {
		return ""
	}
	return m.Photo[len(m.Photo)-1].FileID
}

// CallbackQuery inline keyboard button press.
type CallbackQuery struct {
	ID      string    `json:"id"`
	From    *ChatUser `json:"from,omitempty"`
	Message *Message  `json:"message,omitempty"`
	Data    string    `json:"data,omitempty"`
}

// ChatUser message sender.
type ChatUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Chat chat the message was sent in.
type Chat struct {
	ID int64 `json:"id"`
}

// Contact shared phone contact.
type Contact struct {
	PhoneNumber string `json:"phone_number"`
	UserID      int64  `json:"user_id,omitempty"`
}

// Location shared GPS point.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PhotoSize one resolution variant of a photo.
type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Video attached video.
type Video struct {
	FileID string `json:"file_id"`
}

// InlineKeyboardMarkup inline keyboard attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton one inline button.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

// ReplyKeyboardMarkup persistent reply keyboard.
type ReplyKeyboardMarkup struct {
	Keyboard        [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
}

// KeyboardButton one reply keyboard button.
type KeyboardButton struct {
	Text            string `json:"text"`
	RequestContact  bool   `json:"request_contact,omitempty"`
	RequestLocation bool   `json:"request_location,omitempty"`
}

// ReplyKeyboardRemove hides the reply keyboard.
type ReplyKeyboardRemove struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

// InlineRow builds one row of inline buttons.
func InlineRow(buttons ...InlineKeyboardButton) []InlineKeyboardButton {
	return buttons
}

// InlineBtn builds an inline button.
func InlineBtn(text, data string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, CallbackData: data}
}
