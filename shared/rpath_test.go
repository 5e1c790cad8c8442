package shared

import (
	"reflect"
	"testing"
)

func TestFromPathsEmpty(t *testing.T) {
	got := FromPaths(nil)
	want := RpathList{None}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FromPaths(nil) = %v, want %v", got, want)
	}
}

func TestFromPathsPopulated(t *testing.T) {
	got := FromPaths([]string{"./lib", "/opt/lib"})
	want := RpathList{Yes("./lib"), Yes("/opt/lib")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FromPaths(...) = %v, want %v", got, want)
	}
}

func TestFromPathsSplitsColonJoinedEntry(t *testing.T) {
	got := FromPaths([]string{"./lib:/opt/lib"})
	want := RpathList{Yes("./lib"), Yes("/opt/lib")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FromPaths(...) = %v, want %v", got, want)
	}
}

func TestFromPathsSkipsEmptySegments(t *testing.T) {
	got := FromPaths([]string{"./lib::/opt/lib", ""})
	want := RpathList{Yes("./lib"), Yes("/opt/lib")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FromPaths(...) = %v, want %v", got, want)
	}
}

func TestRpathStringForms(t *testing.T) {
	cases := []struct {
		r    Rpath
		want string
	}{
		{None, "None"},
		{Yes("./lib"), "Yes(./lib)"},
		{YesRW("./lib"), "YesRW(./lib)"},
	}
	for _, c := range cases {
		if got := c.r.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}
