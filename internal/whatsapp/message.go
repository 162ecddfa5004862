package whatsapp

// MessageKind selects the shape of a logical outbound message
type MessageKind string

const (
	KindText    MessageKind = "text"
	KindButtons MessageKind = "buttons"
	KindList    MessageKind = "list"
)

// Message is what the flow engine wants to say, before channel limits apply
type Message struct {
	Kind     MessageKind
	Header   string
	Body     string
	Footer   string
	Label    string
	Buttons  []Button
	Sections []Section
}

// Button is a quick-reply button
type Button struct {
	ID    string
	Title string
}

// Section groups list rows under an optional title
type Section struct {
	Title string
	Rows  []Row
}

// Row is a single list choice
type Row struct {
	ID          string
	Title       string
	Description string
}

// Text builds a plain message
func Text(body string) Message {
	return Message{Kind: KindText, Body: body}
}

// Buttons builds a quick-reply message
func Buttons(body string, buttons ...Button) Message {
	return Message{Kind: KindButtons, Body: body, Buttons: buttons}
}

// List builds a list message opened by the label button
func List(body, label string, sections ...Section) Message {
	return Message{Kind: KindList, Body: body, Label: label, Sections: sections}
}

// WithHeader sets the header line
func (m Message) WithHeader(header string) Message {
	m.Header = header
	return m
}

// WithFooter sets the footer line
func (m Message) WithFooter(footer string) Message {
	m.Footer = footer
	return m
}

// RowCount is the number of list rows across sections
func (m Message) RowCount() int {
	n := 0
	for _, s := range m.Sections {
		n += len(s.Rows)
	}
	return n
}
