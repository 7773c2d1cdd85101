package ledger

// SeedTransaction is a test helper that appends a pre-built entry directly
// into the in-memory store, bypassing service validation. Useful to simulate
// rows recorded outside the service.
func SeedTransaction(s Store, tx Transaction) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.byID[tx.ID] = len(mem.entries)
		mem.entries = append(mem.entries, tx)
	}
}
