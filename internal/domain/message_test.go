package domain

import "testing"

func TestMessageText_PlainContent(t *testing.T) {
	m := Message{Content: "hello"}
	if got := m.Text(); got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestMessageText_EmbedDescriptionWins(t *testing.T) {
	m := Message{
		Content: "fallback",
		Embeds: []Embed{{
			Description: "from embed",
			Fields:      []EmbedField{{Name: "a", Value: "b"}},
		}},
	}
	if got := m.Text(); got != "from embed" {
		t.Fatalf("embed description must win, got %q", got)
	}
}

func TestMessageText_EmbedFieldsJoined(t *testing.T) {
	m := Message{
		Embeds: []Embed{{
			Fields: []EmbedField{
				{Name: "👤 First Name", Value: "Ana"},
				{Name: "🆔 Order ID", Value: "ORD-1"},
			},
		}},
	}
	want := "👤 First Name: Ana\n🆔 Order ID: ORD-1"
	if got := m.Text(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMessageText_EmptyEmbedFallsThrough(t *testing.T) {
	m := Message{Content: "body", Embeds: []Embed{{}}}
	if got := m.Text(); got != "body" {
		t.Fatalf("empty embed should fall back to content, got %q", got)
	}
}

func TestMessageText_NoBody(t *testing.T) {
	if got := (Message{}).Text(); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestOrderValid(t *testing.T) {
	o := &Order{OrderID: "ORD-1", FirstName: "Ana"}
	if !o.Valid() {
		t.Fatal("record with both mandatory fields must be valid")
	}

	o = &Order{OrderID: "  ", FirstName: "Ana"}
	if o.Valid() {
		t.Fatal("whitespace order id must be invalid")
	}

	o = &Order{OrderID: "ORD-1"}
	if o.Valid() {
		t.Fatal("missing first name must be invalid")
	}
}
