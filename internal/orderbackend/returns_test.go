package orderbackend

import "testing"

// TestEligibilityIsTotal walks the decision table's input space from §8 and
// checks the function never panics and always returns a note, i.e. that it
// behaves as a total function over every combination.
func TestEligibilityIsTotal(t *testing.T) {
	reasons := []ReturnReason{ReasonDefective, ReasonDamaged, ReasonWrongItem, ReasonSizeIssue, ReasonImageDifferent, ReasonOther}
	conditions := []ReturnCondition{ConditionUnopened, ConditionOpened}
	amounts := []float64{0, 9999, 10000}
	days := []int{0, 7, 8}

	for _, r := range reasons {
		for _, c := range conditions {
			for _, a := range amounts {
				for _, d := range days {
					eligible, requiresHandoff, note := Eligibility(r, c, a, d)
					if note == "" {
						t.Fatalf("Eligibility(%v,%v,%v,%v) returned empty note", r, c, a, d)
					}
					if eligible && requiresHandoff {
						t.Fatalf("Eligibility(%v,%v,%v,%v) eligible and requiresHandoff both true", r, c, a, d)
					}
				}
			}
		}
	}
}

func TestEligibilityHighValueAlwaysHandoff(t *testing.T) {
	eligible, requiresHandoff, _ := Eligibility(ReasonDefective, ConditionUnopened, 10000, 0)
	if eligible || !requiresHandoff {
		t.Fatalf("expected ineligible+handoff for high-value order, got eligible=%v handoff=%v", eligible, requiresHandoff)
	}
}

func TestEligibilityStaleWindowAlwaysHandoff(t *testing.T) {
	eligible, requiresHandoff, _ := Eligibility(ReasonOther, ConditionUnopened, 0, 8)
	if eligible || !requiresHandoff {
		t.Fatalf("expected ineligible+handoff past the return window, got eligible=%v handoff=%v", eligible, requiresHandoff)
	}
}

func TestEligibilityDefectiveEligibleEvenOpened(t *testing.T) {
	eligible, requiresHandoff, note := Eligibility(ReasonDefective, ConditionOpened, 0, 0)
	if !eligible || requiresHandoff {
		t.Fatalf("expected eligible+no-handoff for a defective item, got eligible=%v handoff=%v", eligible, requiresHandoff)
	}
	if note != "seller pays return shipping" {
		t.Errorf("got note %q", note)
	}
}

func TestEligibilityOpenedNonDefectiveNeedsHandoff(t *testing.T) {
	eligible, requiresHandoff, _ := Eligibility(ReasonOther, ConditionOpened, 0, 0)
	if eligible || !requiresHandoff {
		t.Fatalf("expected ineligible+handoff for an opened non-qualifying item, got eligible=%v handoff=%v", eligible, requiresHandoff)
	}
}

func TestEligibilityUnopenedOtherIsEligible(t *testing.T) {
	eligible, requiresHandoff, note := Eligibility(ReasonOther, ConditionUnopened, 0, 0)
	if !eligible || requiresHandoff {
		t.Fatalf("expected eligible+no-handoff for an unopened return, got eligible=%v handoff=%v", eligible, requiresHandoff)
	}
	if note != "buyer pays return shipping" {
		t.Errorf("got note %q", note)
	}
}
