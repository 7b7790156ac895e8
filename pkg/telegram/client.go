package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Update represents a Telegram update. Only fields we need.
type Update struct {
	UpdateID      int            `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// CallbackQuery is the payload of an inline-keyboard button press.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"`
}

// InlineButton is one button of an inline keyboard.
type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// BotCommand describes a bot command for the Telegram menu.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// ChatMember is the membership state of a user in a chat.
type ChatMember struct {
	Status string `json:"status"`
	User   User   `json:"user"`
}

// InChat reports whether the member currently has access to the chat.
func (m *ChatMember) InChat() bool {
	switch m.Status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}

// Client is a minimal Telegram Bot API client.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    "https://api.telegram.org",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) url(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

func (c *Client) call(ctx context.Context, method string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(method), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var wrapper struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return fmt.Errorf("telegram: decode %s response: %w", method, err)
	}
	if !wrapper.OK {
		return fmt.Errorf("telegram: %s: %s", method, wrapper.Description)
	}
	if out != nil {
		return json.Unmarshal(wrapper.Result, out)
	}
	return nil
}

// SendMessage sends a plain text message and returns the message ID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	body := map[string]any{"chat_id": chatID, "text": text}
	var msg Message
	if err := c.call(ctx, "sendMessage", body, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// SendMessageMarkdown sends a Markdown-formatted message.
func (c *Client) SendMessageMarkdown(ctx context.Context, chatID int64, text string) (int, error) {
	body := map[string]any{"chat_id": chatID, "text": text, "parse_mode": "Markdown"}
	var msg Message
	if err := c.call(ctx, "sendMessage", body, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// SendInlineKeyboard sends a message with inline buttons.
func (c *Client) SendInlineKeyboard(ctx context.Context, chatID int64, text string, buttons [][]InlineButton) (int, error) {
	body := map[string]any{
		"chat_id":      chatID,
		"text":         text,
		"reply_markup": map[string]any{"inline_keyboard": buttons},
	}
	var msg Message
	if err := c.call(ctx, "sendMessage", body, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// SendPhoto uploads a photo from raw bytes.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return err
	}
	part, err := w.CreateFormFile("photo", "photo.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(photo); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("sendPhoto"), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("telegram: sendPhoto: unexpected status " + resp.Status)
	}
	return nil
}

// AnswerCallbackQuery acknowledges a button press so the client stops the
// loading spinner.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": callbackID}, nil)
}

// EditMessageText replaces the text of a previously sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	body := map[string]any{"chat_id": chatID, "message_id": messageID, "text": text}
	return c.call(ctx, "editMessageText", body, nil)
}

// CreateChatInviteLink creates an invite link with an expiry and member limit.
// With memberLimit 1 the link is single-use.
func (c *Client) CreateChatInviteLink(ctx context.Context, chatID int64, expire time.Time, memberLimit int) (string, error) {
	body := map[string]any{
		"chat_id":      chatID,
		"expire_date":  expire.Unix(),
		"member_limit": memberLimit,
	}
	var result struct {
		InviteLink string `json:"invite_link"`
	}
	if err := c.call(ctx, "createChatInviteLink", body, &result); err != nil {
		return "", err
	}
	return result.InviteLink, nil
}

// GetChatMember returns the membership state of a user in a chat.
func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (*ChatMember, error) {
	body := map[string]any{"chat_id": chatID, "user_id": userID}
	var member ChatMember
	if err := c.call(ctx, "getChatMember", body, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// BanChatMember removes a user from a chat.
func (c *Client) BanChatMember(ctx context.Context, chatID, userID int64) error {
	return c.call(ctx, "banChatMember", map[string]any{"chat_id": chatID, "user_id": userID}, nil)
}

// UnbanChatMember lifts a ban so the user may rejoin with a fresh invite.
func (c *Client) UnbanChatMember(ctx context.Context, chatID, userID int64) error {
	body := map[string]any{"chat_id": chatID, "user_id": userID, "only_if_banned": true}
	return c.call(ctx, "unbanChatMember", body, nil)
}

// GetUpdates long-polls for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	q := url.Values{}
	if offset != 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	q.Set("timeout", "25")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("getUpdates"), nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = q.Encode()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("telegram: unexpected status " + resp.Status)
	}
	var wrapper struct {
		OK     bool     `json:"ok"`
		Result []Update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, err
	}
	if !wrapper.OK {
		return nil, errors.New("telegram: api responded with not ok")
	}
	return wrapper.Result, nil
}

// SetCommands registers the bot commands shown in the Telegram UI.
func (c *Client) SetCommands(ctx context.Context, commands []BotCommand) error {
	return c.call(ctx, "setMyCommands", map[string]any{"commands": commands}, nil)
}
