package whatsapp

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitRowSplitsAtDash(t *testing.T) {
	title, desc := FitRow("Keko Modern Furniture — near Omax Bar", "")
	assert.Equal(t, "Keko Modern Furniture", title)
	assert.Equal(t, "near Omax Bar", desc)

	title, desc = FitRow("Mikocheni Industrial - behind Shoppers", "3.2 km")
	assert.Equal(t, "Mikocheni Industrial", title)
	assert.Equal(t, "behind Shoppers • 3.2 km", desc)
}

func TestFitRowWordBoundary(t *testing.T) {
	title, desc := FitRow("Mbezi Beach Africana Junction Road", "")
	assert.LessOrEqual(t, utf8.RuneCountInString(title), MaxRowTitle)
	assert.Equal(t, "Mbezi Beach Africana", title)
	assert.Equal(t, "Junction Road", desc)
}

func TestFitRowHardCut(t *testing.T) {
	long := strings.Repeat("x", 40)
	title, desc := FitRow(long, "")
	assert.Equal(t, MaxRowTitle, utf8.RuneCountInString(title))
	assert.True(t, strings.HasSuffix(title, "…"))
	assert.Equal(t, "", desc)
}

func TestFitRowShortUntouched(t *testing.T) {
	title, desc := FitRow("Sinza", "Kijitonyama side")
	assert.Equal(t, "Sinza", title)
	assert.Equal(t, "Kijitonyama side", desc)
}

func TestComposeListLimits(t *testing.T) {
	var rows []Row
	for i := 0; i < 14; i++ {
		rows = append(rows, Row{ID: fmt.Sprintf("street:%d", i), Title: fmt.Sprintf("Street number %d with a long name", i), Description: strings.Repeat("d", 100)})
	}
	msg := List(strings.Repeat("b", 1500), "Choose your street please", Section{Title: "Streets in Mwenge and surrounding", Rows: rows})

	out := Compose(msg)
	require.Len(t, out, 1)
	in := out[0].Interactive
	require.NotNil(t, in)
	assert.Equal(t, "list", in.Type)
	assert.LessOrEqual(t, utf8.RuneCountInString(in.Body.Text), MaxInteractiveBody)
	assert.LessOrEqual(t, utf8.RuneCountInString(in.Action.Button), MaxListButton)
	require.Len(t, in.Action.Sections, 1)
	sec := in.Action.Sections[0]
	assert.LessOrEqual(t, utf8.RuneCountInString(sec.Title), MaxSectionTitle)
	assert.Len(t, sec.Rows, MaxRows)
	for _, r := range sec.Rows {
		assert.LessOrEqual(t, utf8.RuneCountInString(r.Title), MaxRowTitle, r.Title)
		assert.LessOrEqual(t, utf8.RuneCountInString(r.Description), MaxRowDescription)
	}
}

func TestComposeListDropsEmptySections(t *testing.T) {
	msg := List("Pick", "Open",
		Section{Title: "Empty"},
		Section{Title: "Good", Rows: []Row{{ID: "a", Title: "A"}}},
	)
	out := Compose(msg)
	require.Len(t, out, 1)
	require.Len(t, out[0].Interactive.Action.Sections, 1)
	assert.Equal(t, "Good", out[0].Interactive.Action.Sections[0].Title)
}

func TestComposeEmptyListFallsBackToText(t *testing.T) {
	out := Compose(List("Nothing here yet", "Open", Section{Title: "Empty"}))
	require.Len(t, out, 1)
	assert.Equal(t, "text", out[0].Type)
	assert.Equal(t, "Nothing here yet", out[0].Text.Body)
}

func TestComposeButtons(t *testing.T) {
	msg := Buttons("How would you like it?",
		Button{ID: "mode:delivery", Title: "Delivery to my door please"},
		Button{ID: "mode:pickup", Title: "Pickup"},
		Button{ID: "mode:pickup", Title: "Duplicate"},
		Button{ID: "cart", Title: "View cart"},
		Button{ID: "menu", Title: "Menu"},
	).WithHeader("Checkout")

	out := Compose(msg)
	require.Len(t, out, 1)
	in := out[0].Interactive
	assert.Equal(t, "button", in.Type)
	require.Len(t, in.Action.Buttons, MaxButtons)
	assert.Equal(t, "mode:delivery", in.Action.Buttons[0].Reply.ID)
	assert.Equal(t, "cart", in.Action.Buttons[2].Reply.ID)
	for _, b := range in.Action.Buttons {
		assert.Equal(t, "reply", b.Type)
		assert.LessOrEqual(t, utf8.RuneCountInString(b.Reply.Title), MaxButtonTitle)
	}
	require.NotNil(t, in.Header)
	assert.Equal(t, "Checkout", in.Header.Text)
}

func TestComposeButtonsWithoutChoicesIsText(t *testing.T) {
	out := Compose(Buttons("Thanks!"))
	require.Len(t, out, 1)
	assert.Equal(t, "text", out[0].Type)
}

func TestComposeSplitsLongText(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 600; i++ {
		b.WriteString("line of order text\n")
	}
	out := Compose(Text(b.String()))
	require.Greater(t, len(out), 1)
	total := 0
	for _, p := range out {
		n := utf8.RuneCountInString(p.Text.Body)
		assert.LessOrEqual(t, n, MaxTextBody)
		total += strings.Count(p.Text.Body, "line of order text")
	}
	assert.Equal(t, 600, total)
}

func TestComposeEmptyTextSendsNothing(t *testing.T) {
	assert.Empty(t, Compose(Text("   ")))
}

func TestPlainTextNumbersChoices(t *testing.T) {
	out := Compose(List("Pick a ward", "Wards", Section{Rows: []Row{
		{ID: "ward:a", Title: "Mwenge"},
		{ID: "ward:b", Title: "Sinza", Description: "near Kijitonyama"},
	}}))
	require.Len(t, out, 1)
	text := PlainText(out[0])
	assert.Contains(t, text, "Pick a ward")
	assert.Contains(t, text, "1. Mwenge")
	assert.Contains(t, text, "2. Sinza - near Kijitonyama")
}

func TestComposeAllNumbersAcrossBatch(t *testing.T) {
	out := ComposeAll([]Message{
		Text("Karibu"),
		List("Our products", "Products", Section{Rows: []Row{
			{ID: "prod:sofa", Title: "Sofa"},
			{ID: "prod:bed", Title: "Bed"},
		}}),
		Buttons("Or", Button{ID: "cart", Title: "Cart"}, Button{ID: "track", Title: "Track"}),
	})
	require.Len(t, out, 3)

	assert.Nil(t, ChoiceIDs(out[0]))
	assert.Equal(t, []string{"prod:sofa", "prod:bed"}, ChoiceIDs(out[1]))
	assert.Equal(t, 2, out[2].ChoiceOffset)

	assert.Contains(t, PlainText(out[1]), "1. Sofa")
	text := PlainText(out[2])
	assert.Contains(t, text, "3. Cart")
	assert.Contains(t, text, "4. Track")
}
