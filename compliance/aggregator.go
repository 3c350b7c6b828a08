/*
aggregator.go - Out-for-service aggregation and the Clear transition

PURPOSE:
  For each site, two input streams are combined into one grouped view:

  Auto-synced stream: every asset of the site whose boolean due check is true,
  excluding assets already superseded by a manual entry. Auto lines are
  grouped by (brand, size, type, lastServiceYear), summing counts into one
  synthetic line with a derived key and NO persisted identity.

  Manual stream: the site's stored out-list entries, each with persisted
  identity and independently editable quantity/year.

  Both are merged for display by grouping case-insensitively on (brand, size,
  type), summing quantities across origins, while retaining per-line origin
  tags: only manual lines are editable, auto lines expose a single Clear
  action.

CLEAR TRANSITION:
  Clear on an auto line does NOT mutate any asset record. It appends a new
  manual OutEntry with the same brand/size/type, year = the reference year, a
  fresh identity, and an explicit SupersededKey back to the synthetic key it
  replaces. The auto line disappears on the next computation while the new
  manual line preserves the unit in the merged total - net displayed quantity
  is unchanged. The asset's own LastServiceYear is updated only through the
  separate per-asset ServiceAsset action; out-for-service is not serviced.

MEMOIZATION:
  The view is a pure function of (assets, manualEntries, referenceYear). The
  ViewCache fingerprints those inputs and recomputes only on change, not on
  every render tick.
*/
package compliance

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// LINES AND GROUPS
// =============================================================================

// Origin tags whether a view line came from the computed or the manual stream.
type Origin string

const (
	OriginAuto   Origin = "auto"
	OriginManual Origin = "manual"
)

// AutoLine is one synthetic out-for-service line computed from asset records.
// It has no persistent identity beyond its derived key.
type AutoLine struct {
	Key             string
	Kind            AssetKind
	Brand           string
	Size            string
	Type            Category
	LastServiceYear string
	Quantity        int
}

// ViewLine is one display line of the merged view. EntryID is set only for
// manual lines.
type ViewLine struct {
	Origin   Origin
	EntryID  string
	Key      string
	Quantity int
	Year     string
}

// Group is one merged display row: all lines sharing (brand, size, type)
// case-insensitively, with the summed quantity and the total agent magnitude
// (numeric size x quantity) used for ordering and report totals.
type Group struct {
	Brand      string
	Size       string
	Type       Category
	Total      int
	AgentTotal decimal.Decimal
	Lines      []ViewLine
}

// DeriveKey builds the stable key for an auto-synced observation.
func DeriveKey(brand, size string, category Category, lastServiceYear string) string {
	return strings.ToLower(strings.Join([]string{brand, size, string(category), lastServiceYear}, "|"))
}

func groupKey(brand, size string, category Category) string {
	return strings.ToLower(brand) + "|" + strings.ToLower(size) + "|" + category.Normalized()
}

// =============================================================================
// AUTO-SYNCED STREAM
// =============================================================================

// disciplineKind maps a service discipline to the asset kind it covers.
func disciplineKind(t ServiceType) AssetKind {
	if t == ServiceSystem {
		return KindSystemTank
	}
	return KindExtinguisher
}

// AutoEntries computes the auto-synced stream for one discipline: due assets
// grouped by (brand, size, type, lastServiceYear), minus anything a manual
// entry already covers for the reference year.
func AutoEntries(p IntervalPolicy, assets []*Asset, manual []OutEntry, t ServiceType, referenceYear int) []AutoLine {
	kind := disciplineKind(t)
	byKey := make(map[string]*AutoLine)
	var order []string

	for _, a := range assets {
		if a.Kind != kind || !AssetIsDue(p, a, referenceYear) {
			continue
		}
		key := DeriveKey(a.Brand, a.Size, a.Category, a.LastServiceYear)
		if supersededByManual(manual, a, key, referenceYear) {
			continue
		}
		if line, ok := byKey[key]; ok {
			line.Quantity++
			continue
		}
		byKey[key] = &AutoLine{
			Key:             key,
			Kind:            a.Kind,
			Brand:           a.Brand,
			Size:            a.Size,
			Type:            a.Category,
			LastServiceYear: a.LastServiceYear,
			Quantity:        1,
		}
		order = append(order, key)
	}

	lines := make([]AutoLine, 0, len(order))
	for _, k := range order {
		lines = append(lines, *byKey[k])
	}
	return lines
}

// supersededByManual reports whether a due asset is already covered by a
// manual entry: an explicit SupersededKey reference from a Clear, or a
// (type, brand, size) match dated to the reference year. Both checks keep a
// just-cleared unit from reappearing as still-due in the same session.
func supersededByManual(manual []OutEntry, a *Asset, key string, referenceYear int) bool {
	for _, e := range manual {
		if e.SupersededKey != "" && e.SupersededKey == key {
			return true
		}
		if !strings.EqualFold(e.Brand, a.Brand) || !strings.EqualFold(e.Size, a.Size) {
			continue
		}
		if e.Type.Normalized() != a.Category.Normalized() {
			continue
		}
		if y, ok := ParseYear(e.Year); ok && y == referenceYear {
			return true
		}
	}
	return false
}

// =============================================================================
// MERGED VIEW
// =============================================================================

// MergeView groups both streams for display. Groups are ordered by brand,
// then numeric size magnitude, then type, so "2.5 gal" sorts before "5lb"
// regardless of the unit text.
func MergeView(auto []AutoLine, manual []OutEntry) []Group {
	byKey := make(map[string]*Group)
	var order []string

	add := func(brand, size string, category Category, line ViewLine) {
		k := groupKey(brand, size, category)
		g, ok := byKey[k]
		if !ok {
			g = &Group{Brand: brand, Size: size, Type: category}
			byKey[k] = g
			order = append(order, k)
		}
		g.Total += line.Quantity
		g.AgentTotal = g.AgentTotal.Add(sizeMagnitude(size).Mul(decimal.NewFromInt(int64(line.Quantity))))
		g.Lines = append(g.Lines, line)
	}

	for _, a := range auto {
		add(a.Brand, a.Size, a.Type, ViewLine{
			Origin:   OriginAuto,
			Key:      a.Key,
			Quantity: a.Quantity,
			Year:     a.LastServiceYear,
		})
	}
	for _, e := range manual {
		add(e.Brand, e.Size, e.Type, ViewLine{
			Origin:   OriginManual,
			EntryID:  e.ID,
			Quantity: e.Quantity,
			Year:     e.Year,
		})
	}

	groups := make([]Group, 0, len(order))
	for _, k := range order {
		groups = append(groups, *byKey[k])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		bi, bj := strings.ToLower(groups[i].Brand), strings.ToLower(groups[j].Brand)
		if bi != bj {
			return bi < bj
		}
		si, sj := sizeMagnitude(groups[i].Size), sizeMagnitude(groups[j].Size)
		if !si.Equal(sj) {
			return si.LessThan(sj)
		}
		return groups[i].Type.Normalized() < groups[j].Type.Normalized()
	})
	return groups
}

// sizeMagnitude parses the leading numeric run of a size label ("2.5 gal"
// -> 2.5). Unparseable labels sort as zero.
func sizeMagnitude(size string) decimal.Decimal {
	s := strings.TrimSpace(size)
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	if end == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s[:end])
	if err != nil {
		return decimal.Zero
	}
	return d
}

// OutView computes the full merged view for one site and discipline.
func OutView(p IntervalPolicy, s *Site, assets []*Asset, t ServiceType, referenceYear int) []Group {
	manual := s.OutList(t)
	return MergeView(AutoEntries(p, assets, manual, t, referenceYear), manual)
}

// =============================================================================
// CLEAR TRANSITION
// =============================================================================

// Clear converts an auto-synced observation into a persisted manual entry on
// the site's matching out-list. Returns the new entry. The underlying assets
// are untouched.
func Clear(s *Site, line AutoLine, referenceYear int) OutEntry {
	entry := OutEntry{
		ID:            uuid.NewString(),
		Quantity:      line.Quantity,
		Brand:         line.Brand,
		Size:          line.Size,
		Type:          line.Type,
		Year:          strconv.Itoa(referenceYear),
		SupersededKey: line.Key,
	}
	if line.Kind == KindSystemTank {
		s.SystemTanks = append(s.SystemTanks, entry)
	} else {
		s.ExtinguishersOut = append(s.ExtinguishersOut, entry)
	}
	return entry
}

// =============================================================================
// MANUAL ENTRY MUTATIONS
// =============================================================================

// AddManualEntry appends a manual out-list line with a fresh identity.
func AddManualEntry(s *Site, t ServiceType, quantity int, brand, size string, category Category, year string) OutEntry {
	entry := OutEntry{
		ID:       uuid.NewString(),
		Quantity: quantity,
		Brand:    brand,
		Size:     size,
		Type:     category,
		Year:     year,
	}
	if t == ServiceSystem {
		s.SystemTanks = append(s.SystemTanks, entry)
	} else {
		s.ExtinguishersOut = append(s.ExtinguishersOut, entry)
	}
	return entry
}

// UpdateManualEntry edits a manual line's quantity and year. Missing IDs are
// a no-op; reports whether an entry changed.
func UpdateManualEntry(s *Site, t ServiceType, entryID string, quantity int, year string) bool {
	list := s.OutList(t)
	for i := range list {
		if list[i].ID == entryID {
			list[i].Quantity = quantity
			list[i].Year = year
			return true
		}
	}
	return false
}

// DeleteManualEntry removes a manual line. Missing IDs are a no-op.
func DeleteManualEntry(s *Site, t ServiceType, entryID string) bool {
	list := s.OutList(t)
	for i := range list {
		if list[i].ID == entryID {
			setOutList(s, t, append(list[:i:i], list[i+1:]...))
			return true
		}
	}
	return false
}

func setOutList(s *Site, t ServiceType, list []OutEntry) {
	if t == ServiceSystem {
		s.SystemTanks = list
	} else {
		s.ExtinguishersOut = list
	}
}

// =============================================================================
// MEMOIZED VIEW CACHE
// =============================================================================

// ViewCache memoizes OutView per (site, discipline). The cached result is
// reused until the input fingerprint - assets, manual entries, reference
// year - changes.
type ViewCache struct {
	policy IntervalPolicy

	mu    sync.Mutex
	cache map[viewKey]viewEntry
}

type viewKey struct {
	SiteID string
	Type   ServiceType
}

type viewEntry struct {
	fingerprint uint64
	groups      []Group
}

// NewViewCache creates a memoizing view over the given interval policy.
func NewViewCache(p IntervalPolicy) *ViewCache {
	return &ViewCache{policy: p, cache: make(map[viewKey]viewEntry)}
}

// View returns the merged out-for-service view, recomputing only when the
// inputs changed since the last call for this site and discipline.
func (vc *ViewCache) View(s *Site, assets []*Asset, t ServiceType, referenceYear int) []Group {
	fp := fingerprint(s.OutList(t), assets, t, referenceYear)
	k := viewKey{SiteID: s.ID, Type: t}

	vc.mu.Lock()
	defer vc.mu.Unlock()
	if e, ok := vc.cache[k]; ok && e.fingerprint == fp {
		return e.groups
	}
	groups := OutView(vc.policy, s, assets, t, referenceYear)
	vc.cache[k] = viewEntry{fingerprint: fp, groups: groups}
	return groups
}

func fingerprint(manual []OutEntry, assets []*Asset, t ServiceType, referenceYear int) uint64 {
	h := fnv.New64a()
	write := func(parts ...string) {
		for _, p := range parts {
			h.Write([]byte(p))
			h.Write([]byte{0})
		}
	}
	write(string(t), strconv.Itoa(referenceYear))
	for _, e := range manual {
		write(e.ID, strconv.Itoa(e.Quantity), e.Brand, e.Size, string(e.Type), e.Year, e.SupersededKey)
	}
	kind := disciplineKind(t)
	for _, a := range assets {
		if a.Kind != kind {
			continue
		}
		write(a.ID, a.Brand, a.Size, string(a.Category), a.LastServiceYear)
	}
	return h.Sum64()
}
