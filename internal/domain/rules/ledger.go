package rules

import "github.com/viraj01032007/setmystay/backend/internal/domain/enums"

// Ledger is an immutable unlock-credit ledger. Update functions return a new
// value instead of mutating in place, so a multi-field transition is either
// fully applied or not applied at all.
type Ledger struct {
	UnlockCredits int
	IsUnlimited   bool
	unlockedIDs   map[string]struct{}
}

func NewLedger() Ledger {
	return Ledger{}
}

// LedgerFromSnapshot rebuilds a ledger from its persisted form. Unlocked ids
// are serialized as an array; membership is reconstructed explicitly and any
// order in the array carries no meaning.
func LedgerFromSnapshot(credits int, unlimited bool, unlockedIDs []string) Ledger {
	if credits < 0 {
		credits = 0
	}
	ledger := Ledger{
		UnlockCredits: credits,
		IsUnlimited:   unlimited,
	}
	for _, id := range unlockedIDs {
		if id == "" {
			continue
		}
		ledger = ledger.withUnlocked(id)
	}
	return ledger
}

func (l Ledger) Unlocked(id string) bool {
	_, ok := l.unlockedIDs[id]
	return ok
}

func (l Ledger) UnlockedIDs() []string {
	ids := make([]string, 0, len(l.unlockedIDs))
	for id := range l.unlockedIDs {
		ids = append(ids, id)
	}
	return ids
}

// Consume attempts to unlock id. An already-unlocked id succeeds without
// touching the count; an unlimited ledger never decrements; otherwise one
// credit is spent. On failure the receiver is returned unchanged.
func (l Ledger) Consume(id string) (Ledger, bool) {
	if id == "" {
		return l, false
	}
	if l.Unlocked(id) {
		return l, true
	}
	if l.IsUnlimited {
		return l.withUnlocked(id), true
	}
	if l.UnlockCredits <= 0 {
		return l, false
	}

	next := l.withUnlocked(id)
	next.UnlockCredits = l.UnlockCredits - 1
	return next, true
}

// Apply credits a purchased plan. The plan set is closed; an unknown SKU is
// rejected without mutation. Apply never decreases any field.
func (l Ledger) Apply(sku enums.PlanSKU, credits int) (Ledger, bool) {
	switch sku {
	case enums.PlanSKUUnlockUnlimited:
		next := l.clone()
		next.IsUnlimited = true
		return next, true
	case enums.PlanSKUUnlock1, enums.PlanSKUUnlock5, enums.PlanSKUUnlock10:
		if credits <= 0 {
			return l, false
		}
		next := l.clone()
		next.UnlockCredits += credits
		return next, true
	default:
		return l, false
	}
}

// Reset returns the zero-value ledger (logout path).
func (l Ledger) Reset() Ledger {
	return NewLedger()
}

func (l Ledger) clone() Ledger {
	next := Ledger{
		UnlockCredits: l.UnlockCredits,
		IsUnlimited:   l.IsUnlimited,
	}
	if len(l.unlockedIDs) > 0 {
		next.unlockedIDs = make(map[string]struct{}, len(l.unlockedIDs))
		for id := range l.unlockedIDs {
			next.unlockedIDs[id] = struct{}{}
		}
	}
	return next
}

func (l Ledger) withUnlocked(id string) Ledger {
	next := l.clone()
	if next.unlockedIDs == nil {
		next.unlockedIDs = make(map[string]struct{}, 1)
	}
	next.unlockedIDs[id] = struct{}{}
	return next
}
