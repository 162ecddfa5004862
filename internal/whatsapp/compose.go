package whatsapp

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Cloud API limits, counted in characters
const (
	MaxTextBody        = 4096
	MaxInteractiveBody = 1024
	MaxHeader          = 60
	MaxFooter          = 60
	MaxButtons         = 3
	MaxButtonTitle     = 20
	MaxListButton      = 20
	MaxSectionTitle    = 24
	MaxRowTitle        = 24
	MaxRowDescription  = 72
	MaxRows            = 10
	MaxSections        = 10
	MaxReplyID         = 200
)

const (
	ellipsis         = "…"
	overflowJoiner   = " • "
	defaultListLabel = "Options"
	defaultBody      = "Choose an option"
)

// Compose turns a logical message into payloads that satisfy the channel
// limits. Interactive messages that end up with nothing to choose become
// text. Long text is split across several messages.
func Compose(msg Message) []Payload {
	switch msg.Kind {
	case KindButtons:
		return composeButtons(msg)
	case KindList:
		return composeList(msg)
	default:
		return composeText(msg.Body)
	}
}

// ComposeAll composes a batch in order. Choice numbers continue from one
// payload to the next, matching ChoiceIDs over the whole batch.
func ComposeAll(msgs []Message) []Payload {
	var out []Payload
	offset := 0
	for _, m := range msgs {
		for _, p := range Compose(m) {
			p.ChoiceOffset = offset
			offset += len(ChoiceIDs(p))
			out = append(out, p)
		}
	}
	return out
}

// ChoiceIDs lists the reply ids of a payload in the order PlainText numbers them
func ChoiceIDs(p Payload) []string {
	if p.Interactive == nil {
		return nil
	}
	var ids []string
	for _, btn := range p.Interactive.Action.Buttons {
		ids = append(ids, btn.Reply.ID)
	}
	for _, s := range p.Interactive.Action.Sections {
		for _, r := range s.Rows {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func composeText(body string) []Payload {
	var out []Payload
	for _, chunk := range SplitText(body, MaxTextBody) {
		out = append(out, Payload{
			MessagingProduct: "whatsapp",
			RecipientType:    "individual",
			Type:             "text",
			Text:             &TextBody{Body: chunk},
		})
	}
	return out
}

func composeButtons(msg Message) []Payload {
	var buttons []ActionButton
	seen := make(map[string]bool)
	for _, b := range msg.Buttons {
		id := truncate(strings.TrimSpace(b.ID), MaxReplyID)
		title := strings.TrimSpace(b.Title)
		if id == "" || title == "" || seen[id] {
			continue
		}
		seen[id] = true
		buttons = append(buttons, ActionButton{
			Type:  "reply",
			Reply: ReplyButton{ID: id, Title: truncate(title, MaxButtonTitle)},
		})
		if len(buttons) == MaxButtons {
			break
		}
	}
	if len(buttons) == 0 {
		return composeText(withHeader(msg))
	}

	in := interactiveShell("button", msg)
	in.Action.Buttons = buttons
	return []Payload{interactivePayload(in)}
}

func composeList(msg Message) []Payload {
	var sections []ListSection
	seen := make(map[string]bool)
	remaining := MaxRows
	for _, s := range msg.Sections {
		if remaining == 0 || len(sections) == MaxSections {
			break
		}
		var rows []ListRow
		for _, r := range s.Rows {
			id := truncate(strings.TrimSpace(r.ID), MaxReplyID)
			if id == "" || strings.TrimSpace(r.Title) == "" || seen[id] {
				continue
			}
			seen[id] = true
			title, desc := FitRow(r.Title, r.Description)
			rows = append(rows, ListRow{ID: id, Title: title, Description: desc})
			remaining--
			if remaining == 0 {
				break
			}
		}
		if len(rows) == 0 {
			continue
		}
		sections = append(sections, ListSection{
			Title: truncate(strings.TrimSpace(s.Title), MaxSectionTitle),
			Rows:  rows,
		})
	}
	if len(sections) == 0 {
		return composeText(withHeader(msg))
	}

	in := interactiveShell("list", msg)
	label := strings.TrimSpace(msg.Label)
	if label == "" {
		label = defaultListLabel
	}
	in.Action.Button = truncate(label, MaxListButton)
	in.Action.Sections = sections
	return []Payload{interactivePayload(in)}
}

func interactiveShell(kind string, msg Message) *Interactive {
	body := strings.TrimSpace(msg.Body)
	if body == "" {
		body = defaultBody
	}
	in := &Interactive{
		Type: kind,
		Body: InteractiveText{Text: truncate(body, MaxInteractiveBody)},
	}
	if h := strings.TrimSpace(msg.Header); h != "" {
		in.Header = &InteractiveHeader{Type: "text", Text: truncate(h, MaxHeader)}
	}
	if f := strings.TrimSpace(msg.Footer); f != "" {
		in.Footer = &InteractiveText{Text: truncate(f, MaxFooter)}
	}
	return in
}

func interactivePayload(in *Interactive) Payload {
	return Payload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		Type:             "interactive",
		Interactive:      in,
	}
}

func withHeader(msg Message) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{msg.Header, msg.Body, msg.Footer} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// FitRow keeps a row title within the limit. An over-long title is split at
// its first dash separator, or failing that at the last word boundary that
// fits, and the rest is moved to the front of the description.
func FitRow(title, description string) (string, string) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(title) <= MaxRowTitle {
		return title, truncate(description, MaxRowDescription)
	}

	head, tail := splitTitle(title)
	if tail != "" {
		if description != "" {
			description = tail + overflowJoiner + description
		} else {
			description = tail
		}
		title = head
	}
	return truncate(title, MaxRowTitle), truncate(description, MaxRowDescription)
}

func splitTitle(title string) (string, string) {
	if i := strings.IndexAny(title, "–—-"); i > 0 {
		_, size := utf8.DecodeRuneInString(title[i:])
		head := strings.TrimSpace(title[:i])
		tail := strings.TrimSpace(title[i+size:])
		if head != "" && tail != "" {
			return head, tail
		}
	}

	runes := []rune(title)
	cut := -1
	for i := 0; i <= MaxRowTitle && i < len(runes); i++ {
		if runes[i] == ' ' {
			cut = i
		}
	}
	if cut <= 0 {
		return title, ""
	}
	return strings.TrimSpace(string(runes[:cut])), strings.TrimSpace(string(runes[cut:]))
}

// SplitText breaks s into chunks of at most max characters, preferring
// line breaks, then spaces.
func SplitText(s string, max int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []string
	for utf8.RuneCountInString(s) > max {
		runes := []rune(s)
		cut := lastIndexRune(runes[:max+1], '\n')
		if cut <= 0 {
			cut = lastIndexRune(runes[:max+1], ' ')
		}
		if cut <= 0 {
			cut = max
		}
		out = append(out, strings.TrimSpace(string(runes[:cut])))
		s = strings.TrimSpace(string(runes[cut:]))
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

func lastIndexRune(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-1])) + ellipsis
}

// PlainText renders a payload for channels without interactive support.
// Choices are numbered in order, starting after p.ChoiceOffset.
func PlainText(p Payload) string {
	if p.Text != nil {
		return p.Text.Body
	}
	if p.Interactive == nil {
		return ""
	}
	in := p.Interactive
	var b strings.Builder
	if in.Header != nil {
		b.WriteString("*" + in.Header.Text + "*\n")
	}
	b.WriteString(in.Body.Text)
	n := p.ChoiceOffset
	for _, btn := range in.Action.Buttons {
		n++
		b.WriteString("\n" + strconv.Itoa(n) + ". " + btn.Reply.Title)
	}
	for _, s := range in.Action.Sections {
		if s.Title != "" {
			b.WriteString("\n\n_" + s.Title + "_")
		}
		for _, r := range s.Rows {
			n++
			b.WriteString("\n" + strconv.Itoa(n) + ". " + r.Title)
			if r.Description != "" {
				b.WriteString(" - " + r.Description)
			}
		}
	}
	if in.Footer != nil {
		b.WriteString("\n\n" + in.Footer.Text)
	}
	return b.String()
}
