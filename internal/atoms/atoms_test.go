package atoms

import "testing"

func wantSize(t *testing.T, in string, want uint64) {
	t.Helper()
	got, _, ok := ParseSize(in)
	if !ok {
		t.Fatalf("ParseSize(%q): unexpected error", in)
	}
	if got != want {
		t.Errorf("ParseSize(%q) = %d, want %d", in, got, want)
	}
}

func wantSizeErr(t *testing.T, in string, wantKind ReasonKind) {
	t.Helper()
	_, r, ok := ParseSize(in)
	if ok {
		t.Fatalf("ParseSize(%q): expected error, got success", in)
	}
	if r.Kind != wantKind {
		t.Errorf("ParseSize(%q) reason = %v, want %v", in, r.Kind, wantKind)
	}
}

func TestParseSizeIntegerNoRounding(t *testing.T) {
	wantSize(t, "500M", 524_288_000)
	wantSize(t, "1T", 1_099_511_627_776)
	wantSize(t, "1024", 1024)
	wantSize(t, "0", 0)
}

func TestParseSizeDecimalRounding(t *testing.T) {
	wantSize(t, "4.2G", 4_509_715_661)
	wantSize(t, "1.5T", 1_649_267_441_664)
}

func TestParseSizeTiesHalfUp(t *testing.T) {
	wantSize(t, "0.00048828125K", 1)
	wantSize(t, "0.00146484375K", 2)
	wantSize(t, "0.000390625K", 0)
}

func TestParseSizeEdgeCases(t *testing.T) {
	wantSize(t, "  4G  ", 4_294_967_296)
	wantSize(t, "1g", 1_073_741_824)
	wantSize(t, "1Gi", 1_073_741_824)
	wantSize(t, ".5G", 536_870_912)
	wantSize(t, "5.G", 5_368_709_120)
	wantSize(t, "5.", 5)
	wantSize(t, "1024B", 1024)
}

func TestParseSizeErrors(t *testing.T) {
	wantSizeErr(t, "-5G", NegativeValue)
	wantSizeErr(t, "-0", NegativeValue)
	wantSizeErr(t, "+5G", InvalidNumber)
	wantSizeErr(t, "", EmptyNumber)
	wantSizeErr(t, "G", EmptyNumber)
	wantSizeErr(t, ".", EmptyNumber)
	wantSizeErr(t, "abc", EmptyNumber)

	_, r, ok := ParseSize("5X")
	if ok || r.Kind != UnknownSuffix || r.Detail != "X" {
		t.Errorf("ParseSize(5X) = %+v, ok=%v", r, ok)
	}
	_, r, ok = ParseSize("5GB")
	if ok || r.Kind != UnknownSuffix || r.Detail != "GB" {
		t.Errorf("ParseSize(5GB) = %+v, ok=%v", r, ok)
	}
}

func TestParsePercentValid(t *testing.T) {
	cases := map[string]uint8{"0%": 0, "85%": 85, "100%": 100, "85": 85, "  50%  ": 50}
	for in, want := range cases {
		got, _, ok := ParsePercent(in)
		if !ok || got != want {
			t.Errorf("ParsePercent(%q) = %d, ok=%v, want %d", in, got, ok, want)
		}
	}
}

func TestParsePercentErrors(t *testing.T) {
	_, r, ok := ParsePercent("101%")
	if ok || r.Kind != PercentOutOfRange {
		t.Errorf("ParsePercent(101%%) expected PercentOutOfRange, got %+v ok=%v", r, ok)
	}
	_, r, ok = ParsePercent("-5%")
	if ok || r.Kind != NegativeValue {
		t.Errorf("ParsePercent(-5%%) expected NegativeValue")
	}
	_, r, ok = ParsePercent("")
	if ok || r.Kind != EmptyNumber {
		t.Errorf("ParsePercent(\"\") expected EmptyNumber")
	}
	_, r, ok = ParsePercent("abc")
	if ok || r.Kind != InvalidNumber {
		t.Errorf("ParsePercent(abc) expected InvalidNumber")
	}
}

func TestNormalizeServiceName(t *testing.T) {
	cases := map[string]string{
		"nginx":             "nginx.service",
		"nginx.service":     "nginx.service",
		"foo.socket":        "foo.socket",
		"sshd@paula":        "sshd@paula.service",
		"user@1000.service": "user@1000.service",
		"-.mount":           "-.mount",
		"  nginx  ":         "nginx.service",
	}
	for in, want := range cases {
		if got := NormalizeServiceName(in); got != want {
			t.Errorf("NormalizeServiceName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDisplaySizeAcceptsGbMbKb(t *testing.T) {
	got, _, ok := ParseDisplaySize("4GB")
	if !ok || got != 4_294_967_296 {
		t.Errorf("ParseDisplaySize(4GB) = %d, ok=%v", got, ok)
	}
	got, _, ok = ParseDisplaySize("500MiB")
	if !ok || got != 524_288_000 {
		t.Errorf("ParseDisplaySize(500MiB) = %d, ok=%v", got, ok)
	}
	got, _, ok = ParseDisplaySize("1TB")
	if !ok || got != 1_099_511_627_776 {
		t.Errorf("ParseDisplaySize(1TB) = %d, ok=%v", got, ok)
	}
}

func TestParseDisplaySizeDecimal(t *testing.T) {
	got, _, ok := ParseDisplaySize("4.2GB")
	if !ok || got != 4_509_715_661 {
		t.Errorf("ParseDisplaySize(4.2GB) = %d, ok=%v", got, ok)
	}
	got, _, ok = ParseDisplaySize("2.5MB")
	if !ok || got != 2_621_440 {
		t.Errorf("ParseDisplaySize(2.5MB) = %d, ok=%v", got, ok)
	}
}

func TestParseDisplaySizeRejectsInvalid(t *testing.T) {
	_, r, ok := ParseDisplaySize("5GB/s")
	if ok || r.Kind != UnknownSuffix {
		t.Errorf("ParseDisplaySize(5GB/s) expected UnknownSuffix, got %+v ok=%v", r, ok)
	}
	_, r, ok = ParseDisplaySize("-5GB")
	if ok || r.Kind != NegativeValue {
		t.Errorf("ParseDisplaySize(-5GB) expected NegativeValue")
	}
}
