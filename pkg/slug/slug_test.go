package slug

import "testing"

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Office Chair":         "office-chair",
		"  Crème  Brûlée  ":    "creme-brulee",
		"Nguyễn Nhật Ánh":      "nguyen-nhat-anh",
		"A/B testing -- 2024!": "ab-testing-2024",
		"snake_case_name":      "snake-case-name",
		"Стул":                 "",
		"---":                  "",
		"Desk 120x60 (walnut)": "desk-120x60-walnut",
	}
	for in, want := range cases {
		if got := Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidAndWithSeq(t *testing.T) {
	if !Valid("office-chair-2") {
		t.Fatal("expected valid slug")
	}
	for _, bad := range []string{"", "Office", "a--b", "-a", "a b"} {
		if Valid(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
	if got := WithSeq("office-chair", 4); got != "office-chair-4" {
		t.Fatalf("unexpected slug %q", got)
	}
}
