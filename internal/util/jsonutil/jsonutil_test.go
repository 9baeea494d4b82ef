package jsonutil

import "testing"

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence with array", "```json\n[\"x\"]\n```", `["x"]`},
		{"whitespace", "  {\"a\":1}  ", `{"a":1}`},
		{"fence on same line", "```{\"a\":1}```", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFence(tc.in); got != tc.want {
				t.Fatalf("got=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestUnmarshalStringList(t *testing.T) {
	got, err := UnmarshalStringList("```json\n[\"lumber\", \"drywall\"]\n```")
	if err != nil {
		t.Fatalf("UnmarshalStringList: %v", err)
	}
	if len(got) != 2 || got[0] != "lumber" || got[1] != "drywall" {
		t.Fatalf("got=%v", got)
	}

	one, err := UnmarshalStringList(`"concrete mix"`)
	if err != nil {
		t.Fatalf("single string: %v", err)
	}
	if len(one) != 1 || one[0] != "concrete mix" {
		t.Fatalf("got=%v", one)
	}

	if _, err := UnmarshalStringList("not json at all"); err == nil {
		t.Fatalf("want error for junk input")
	}
}

func TestMarshalNoEscape(t *testing.T) {
	out, err := MarshalNoEscape(map[string]string{"link": "https://example.com/a?b=1&c=2"})
	if err != nil {
		t.Fatalf("MarshalNoEscape: %v", err)
	}
	if string(out) != `{"link":"https://example.com/a?b=1&c=2"}` {
		t.Fatalf("got=%s", out)
	}
}
