package game

import "fmt"

// startDealerLocked reveals the hole card and hands play to the dealer. With
// no delay configured the dealer is played out before returning.
func (t *Table) startDealerLocked() {
	t.revealLocked()
	t.state = DealerTurn
	t.message = fmt.Sprintf("Dealer turns over %d.", t.dealer.Value(true))

	if t.rules.DealerDelay <= 0 {
		for t.state == DealerTurn {
			t.dealerStepLocked()
		}
		return
	}
	if t.dealer.Value(true) >= t.rules.DealerStandsOn {
		t.settleLocked()
		return
	}
	t.scheduleDealerLocked()
}

// dealerStepLocked draws at most one card and settles once the dealer
// reaches its standing total. It reports whether another step is needed.
func (t *Table) dealerStepLocked() bool {
	if t.dealer.Value(true) < t.rules.DealerStandsOn {
		c := t.draw()
		t.dealer = append(t.dealer, c)
		t.logger.Debug("Dealer draws", "round", t.round, "card", c, "total", t.dealer.Value(true))
	}
	if v := t.dealer.Value(true); v < t.rules.DealerStandsOn {
		t.message = fmt.Sprintf("Dealer has %d.", v)
		return true
	}
	t.settleLocked()
	return false
}

func (t *Table) scheduleDealerLocked() {
	gen := t.generation
	t.pending = t.clock.AfterFunc(t.rules.DealerDelay, func() {
		t.runDealerStep(gen)
	}, "Table", "dealer")
}

// runDealerStep is the timer callback for a paced dealer draw
func (t *Table) runDealerStep(gen uint64) {
	t.mu.Lock()
	if gen != t.generation || t.state != DealerTurn {
		t.mu.Unlock()
		t.logger.Debug("Dropping stale dealer step", "generation", gen)
		return
	}

	t.pending = nil
	t.receipt = nil
	if t.dealerStepLocked() {
		t.scheduleDealerLocked()
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
}

func (t *Table) cancelPendingLocked() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}
