package dom

import "testing"

func TestParseStyle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		len   int
	}{
		{"empty", "", "", 0},
		{"single", "color: red", "color: red", 1},
		{"trailing semicolon", "color:red;", "color: red", 1},
		{"uppercase property", "COLOR: Red; margin:0", "color: Red; margin: 0", 2},
		{"custom property", "--Accent: blue", "--Accent: blue", 1},
		{"malformed skipped", "nonsense; :x; width: 1px", "width: 1px", 1},
		{"duplicate keeps position", "a: 1; b: 2; a: 3", "a: 3; b: 2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ParseStyle(tt.input)
			if s.String() != tt.want {
				t.Errorf("String() = %q, want %q", s.String(), tt.want)
			}
			if s.Len() != tt.len {
				t.Errorf("Len() = %d, want %d", s.Len(), tt.len)
			}
		})
	}
}

func TestStyleSetRemove(t *testing.T) {
	n := NewElement("div")
	s := StyleOf(n)
	s.Set("width", "1px")
	s.Set("height", "2px")
	s.Set("width", "3px")
	SetStyle(n, s)

	if v, _ := Attr(n, "style"); v != "width: 3px; height: 2px" {
		t.Errorf("style = %q", v)
	}

	s = StyleOf(n)
	s.Remove("width")
	s.Remove("height")
	SetStyle(n, s)
	if _, ok := Attr(n, "style"); ok {
		t.Error("empty style should remove the attribute")
	}
}
