package airtable

import "testing"

func TestEqualsEscaping(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{
			name:  "plain value",
			field: "Email",
			value: "kid@example.com",
			want:  `{Email} = "kid@example.com"`,
		},
		{
			name:  "embedded quote",
			field: "Name",
			value: `say "hi"`,
			want:  `{Name} = "say \"hi\""`,
		},
		{
			name:  "backslash before quote",
			field: "Name",
			value: `a\"b`,
			want:  `{Name} = "a\\\"b"`,
		},
		{
			name:  "field with spaces",
			field: "First Name",
			value: "Ada",
			want:  `{First Name} = "Ada"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equals(tt.field, tt.value); got != tt.want {
				t.Errorf("Equals(%q, %q) = %q, want %q", tt.field, tt.value, got, tt.want)
			}
		})
	}
}

func TestInvalidFieldNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for field name containing a brace")
		}
	}()
	Equals("Email} = \"\" OR {x", "anything")
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "and of two",
			got:  And(`a`, `b`),
			want: `AND(a, b)`,
		},
		{
			name: "or collapses single clause",
			got:  Or(`a`),
			want: `a`,
		},
		{
			name: "empty and",
			got:  And(),
			want: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestRecordIDIn(t *testing.T) {
	got := RecordIDIn([]string{"rec1", "rec2"})
	want := `OR(RECORD_ID() = "rec1", RECORD_ID() = "rec2")`
	if got != want {
		t.Errorf("RecordIDIn = %q, want %q", got, want)
	}

	if got := RecordIDIn([]string{"only"}); got != `RECORD_ID() = "only"` {
		t.Errorf("single id = %q", got)
	}
}

func TestNormalizedEquals(t *testing.T) {
	got := NormalizedEquals("Email", "kid@example.com")
	want := `LOWER(SUBSTITUTE({Email}, " ", "")) = "kid@example.com"`
	if got != want {
		t.Errorf("NormalizedEquals = %q, want %q", got, want)
	}
}
