package elfsec

import "testing"

func names(ss ...string) map[string]bool {
	m := map[string]bool{}
	for _, s := range ss {
		m[s] = true
	}
	return m
}

func TestClassifyFortifyUndecidable(t *testing.T) {
	fortify, fortified, fortifiable := classifyFortify(names("strcpy"), false, false)
	if fortify != FortifyUndecidable || fortified != 0 || fortifiable != 0 {
		t.Fatalf("got (%s, %d, %d), want (Undecidable, 0, 0)", fortify, fortified, fortifiable)
	}
}

func TestClassifyFortifyFullWhenDynLinkingWithoutLibc(t *testing.T) {
	// dynamically linked against something other than libc still counts
	// as "dynamic linking present" and is decidable.
	fortify, fortified, fortifiable := classifyFortify(names("__strcpy_chk"), true, false)
	if fortify != FortifyFull {
		t.Fatalf("got %s, want Full", fortify)
	}
	if fortified != 1 || fortifiable != 1 {
		t.Fatalf("got (%d, %d), want (1, 1)", fortified, fortifiable)
	}
}

func TestClassifyFortifyNone(t *testing.T) {
	fortify, fortified, fortifiable := classifyFortify(names("strcpy", "memcpy"), true, true)
	if fortify != FortifyNone || fortified != 0 || fortifiable != 2 {
		t.Fatalf("got (%s, %d, %d), want (None, 0, 2)", fortify, fortified, fortifiable)
	}
}

func TestClassifyFortifyPartial(t *testing.T) {
	fortify, fortified, fortifiable := classifyFortify(names("__strcpy_chk", "memcpy"), true, true)
	if fortify != FortifyPartial || fortified != 1 || fortifiable != 2 {
		t.Fatalf("got (%s, %d, %d), want (Partial, 1, 2)", fortify, fortified, fortifiable)
	}
	if fortified > fortifiable {
		t.Fatalf("invariant violated: fortified (%d) > fortifiable (%d)", fortified, fortifiable)
	}
}

func TestClassifyFortifyFullWhenAllEligibleAreFortified(t *testing.T) {
	fortify, fortified, fortifiable := classifyFortify(names("__strcpy_chk", "__memcpy_chk"), true, true)
	if fortify != FortifyFull || fortified != 2 || fortifiable != 2 {
		t.Fatalf("got (%s, %d, %d), want (Full, 2, 2)", fortify, fortified, fortifiable)
	}
}

func TestFortifiableBaseNamesHasTwentyThreeEntries(t *testing.T) {
	if len(fortifiableBaseNames) != 23 {
		t.Fatalf("got %d fortifiable base names, want 23", len(fortifiableBaseNames))
	}
}
