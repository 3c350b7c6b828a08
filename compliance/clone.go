package compliance

// =============================================================================
// STRUCTURAL CLONE - Snapshot immutability without serialization round-trips
// =============================================================================

// CloneOutEntries returns an independent deep copy of an out-list. Ledger
// snapshots must never alias the live slices: later edits to a site's
// out-lists cannot be allowed to alter a historical completion.
func CloneOutEntries(entries []OutEntry) []OutEntry {
	if entries == nil {
		return nil
	}
	out := make([]OutEntry, len(entries))
	copy(out, entries)
	return out
}

// CloneCompletion returns an independent deep copy of a ledger entry,
// including both snapshot lists.
func CloneCompletion(c ServiceCompletion) ServiceCompletion {
	c.ExtinguishersOutSnapshot = CloneOutEntries(c.ExtinguishersOutSnapshot)
	c.SystemTanksSnapshot = CloneOutEntries(c.SystemTanksSnapshot)
	return c
}

// CloneSite returns an independent deep copy of a site, used by stores that
// must not hand out aliased state.
func CloneSite(s *Site) *Site {
	if s == nil {
		return nil
	}
	cp := *s
	cp.ServiceMonths = append([]int(nil), s.ServiceMonths...)
	cp.SystemMonths = append([]int(nil), s.SystemMonths...)
	cp.ExtinguishersOut = CloneOutEntries(s.ExtinguishersOut)
	cp.SystemTanks = CloneOutEntries(s.SystemTanks)
	cp.CompletedServices = make([]ServiceCompletion, len(s.CompletedServices))
	for i, c := range s.CompletedServices {
		cp.CompletedServices[i] = CloneCompletion(c)
	}
	return &cp
}

// CloneAppData deep-copies the whole in-memory state.
func CloneAppData(d *AppData) *AppData {
	if d == nil {
		return nil
	}
	cp := &AppData{
		Sites:  make([]*Site, len(d.Sites)),
		Assets: make([]*Asset, len(d.Assets)),
	}
	for i, s := range d.Sites {
		cp.Sites[i] = CloneSite(s)
	}
	for i, a := range d.Assets {
		ac := *a
		cp.Assets[i] = &ac
	}
	return cp
}
