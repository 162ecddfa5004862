package whatsapp

import "encoding/json"

// WebhookPayload is the top-level webhook delivery. Entries stay raw so a
// malformed entry can be skipped without losing its siblings
type WebhookPayload struct {
	Object string            `json:"object"`
	Entry  []json.RawMessage `json:"entry"`
}

// Entry represents one business account entry
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a single change notification
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue holds the message data
type ChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         Metadata         `json:"metadata"`
	Contacts         []Contact        `json:"contacts,omitempty"`
	Messages         []InboundMessage `json:"messages,omitempty"`
	Statuses         []Status         `json:"statuses,omitempty"`
}

// Metadata about the receiving phone number
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is a WhatsApp contact
type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

// ContactProfile has the display name
type ContactProfile struct {
	Name string `json:"name"`
}

// InboundMessage is one customer message in a webhook delivery
type InboundMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextContent        `json:"text,omitempty"`
	Interactive *InteractiveContent `json:"interactive,omitempty"`
	Button      *ButtonContent      `json:"button,omitempty"`
	Location    *LocationContent    `json:"location,omitempty"`
	Image       *ImageContent       `json:"image,omitempty"`
}

// TextContent holds a text message body
type TextContent struct {
	Body string `json:"body"`
}

// InteractiveContent is the reply to a button or list message
type InteractiveContent struct {
	Type        string        `json:"type"`
	ButtonReply *ReplyContent `json:"button_reply,omitempty"`
	ListReply   *ReplyContent `json:"list_reply,omitempty"`
}

// ReplyContent carries the id we put on the button or row
type ReplyContent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ButtonContent is a template quick-reply tap
type ButtonContent struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

// LocationContent holds location message data
type LocationContent struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

// ImageContent holds image message data
type ImageContent struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// Status represents a message delivery status update
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// Payload is one outbound message in send-API shape. To is filled by the sender
type Payload struct {
	MessagingProduct string       `json:"messaging_product"`
	RecipientType    string       `json:"recipient_type,omitempty"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             *TextBody    `json:"text,omitempty"`
	Interactive      *Interactive `json:"interactive,omitempty"`
	// Choices shown earlier in the same batch, so numbering runs on
	ChoiceOffset int `json:"-"`
}

// TextBody is the text of a plain message
type TextBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url,omitempty"`
}

// Interactive is a button or list message
type Interactive struct {
	Type   string             `json:"type"`
	Header *InteractiveHeader `json:"header,omitempty"`
	Body   InteractiveText    `json:"body"`
	Footer *InteractiveText   `json:"footer,omitempty"`
	Action InteractiveAction  `json:"action"`
}

type InteractiveHeader struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type InteractiveText struct {
	Text string `json:"text"`
}

// InteractiveAction holds reply buttons, or the list button and sections
type InteractiveAction struct {
	Button   string         `json:"button,omitempty"`
	Buttons  []ActionButton `json:"buttons,omitempty"`
	Sections []ListSection  `json:"sections,omitempty"`
}

type ActionButton struct {
	Type  string      `json:"type"`
	Reply ReplyButton `json:"reply"`
}

type ReplyButton struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ListSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []ListRow `json:"rows"`
}

type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ReadReceipt marks an inbound message as read
type ReadReceipt struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

// SendMessageResponse is the response from the send message API
type SendMessageResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}
