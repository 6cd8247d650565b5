package bulkparse

import "testing"

func TestParse_SpecScenario(t *testing.T) {
	res := Parse([]string{"Ep1 http://a.co/1\nEp2 notalink\n\nEp3 http://a.co/3"})

	if len(res.Valid) != 2 {
		t.Fatalf("valid = %+v", res.Valid)
	}
	if res.Valid[0] != (Pair{"Ep1", "http://a.co/1"}) {
		t.Errorf("valid[0] = %+v", res.Valid[0])
	}
	if res.Valid[1] != (Pair{"Ep3", "http://a.co/3"}) {
		t.Errorf("valid[1] = %+v", res.Valid[1])
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %+v", res.Errors)
	}
	e := res.Errors[0]
	if e.Line != 2 || e.Raw != "Ep2 notalink" || e.Reason != "invalid link" {
		t.Errorf("error = %+v", e)
	}
	if res.Blank != 1 {
		t.Errorf("blank = %d, want 1", res.Blank)
	}
}

func TestParse_MultipleBlocksPreserveGlobalOrder(t *testing.T) {
	res := Parse([]string{
		"Ep1 http://a.co/1",
		"Ep2 http://a.co/2\nEp3 http://a.co/3",
	})
	want := []Pair{
		{"Ep1", "http://a.co/1"},
		{"Ep2", "http://a.co/2"},
		{"Ep3", "http://a.co/3"},
	}
	if len(res.Valid) != len(want) {
		t.Fatalf("valid = %+v", res.Valid)
	}
	for i := range want {
		if res.Valid[i] != want[i] {
			t.Errorf("valid[%d] = %+v, want %+v", i, res.Valid[i], want[i])
		}
	}
}

func TestParse_LineNumbersSpanBlocks(t *testing.T) {
	res := Parse([]string{"Ep1 http://a.co/1\nbadline", "alsobad"})
	if len(res.Errors) != 2 {
		t.Fatalf("errors = %+v", res.Errors)
	}
	if res.Errors[0].Line != 2 {
		t.Errorf("errors[0].Line = %d, want 2", res.Errors[0].Line)
	}
	if res.Errors[1].Line != 3 {
		t.Errorf("errors[1].Line = %d, want 3", res.Errors[1].Line)
	}
}

func TestParse_TotalAccounting(t *testing.T) {
	inputs := [][]string{
		{"Ep1 http://a.co/1\nEp2 notalink\n\nEp3 http://a.co/3"},
		{"", "\n\n"},
		{"one two three http://x.y"},
		{"solo"},
		{"Ep1 http://a.co/1", "Ep2 http://a.co/2"},
	}
	for _, blocks := range inputs {
		total := 0
		for _, b := range blocks {
			total++
			for _, r := range b {
				if r == '\n' {
					total++
				}
			}
		}
		res := Parse(blocks)
		if res.Lines() != total {
			t.Errorf("Parse(%q): valid+errors+blank = %d, want %d lines", blocks, res.Lines(), total)
		}
	}
}

func TestParse_NameWithLinkKeepsRemainderVerbatim(t *testing.T) {
	// Only the first whitespace run splits; the rest belongs to the link
	// field, and a link with embedded spaces fails the shape check.
	res := Parse([]string{"Ep1 http://a.co/1 extra"})
	if len(res.Valid) != 0 || len(res.Errors) != 1 {
		t.Fatalf("res = %+v", res)
	}
	if res.Errors[0].Reason != "invalid link" {
		t.Errorf("reason = %q", res.Errors[0].Reason)
	}
}

func TestParse_TabSeparator(t *testing.T) {
	res := Parse([]string{"Ep1\thttp://a.co/1"})
	if len(res.Valid) != 1 || res.Valid[0] != (Pair{"Ep1", "http://a.co/1"}) {
		t.Errorf("res = %+v", res)
	}
}

func TestParse_MissingLink(t *testing.T) {
	res := Parse([]string{"justaname"})
	if len(res.Errors) != 1 || res.Errors[0].Reason != "missing link" {
		t.Errorf("res = %+v", res)
	}
}

func TestParse_NormalizesMobileHosts(t *testing.T) {
	res := Parse([]string{"Ep1 https://m.facebook.com/story"})
	if len(res.Valid) != 1 {
		t.Fatalf("res = %+v", res)
	}
	if res.Valid[0].Link != "https://www.facebook.com/story" {
		t.Errorf("link = %q", res.Valid[0].Link)
	}
}

func TestParse_StripsZeroWidthSpace(t *testing.T) {
	res := Parse([]string{"Ep1​ http://a.co/1"})
	if len(res.Valid) != 1 || res.Valid[0].Name != "Ep1" {
		t.Errorf("res = %+v", res)
	}
}

func TestParse_CRLFLines(t *testing.T) {
	res := Parse([]string{"Ep1 http://a.co/1\r\nEp2 http://a.co/2"})
	if len(res.Valid) != 2 {
		t.Errorf("res = %+v", res)
	}
}

func TestParse_Empty(t *testing.T) {
	res := Parse(nil)
	if res.Lines() != 0 || len(res.Valid) != 0 || len(res.Errors) != 0 {
		t.Errorf("res = %+v", res)
	}
}
