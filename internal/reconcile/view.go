package reconcile

import "github.com/erazemk/tcgpocket/internal/model"

// Options are the caller's view settings.
type Options struct {
	SortBy      SortMode
	ShowMissing bool
}

// View is a sorted set of rows plus the counts used for "X/Y" labels.
type View struct {
	Rows        []Row    `json:"rows"`
	SortBy      SortMode `json:"sort_by"`
	ShowMissing bool     `json:"show_missing"`
	UniqueOwned int      `json:"unique_owned"`
	TotalOwned  int      `json:"total_owned"`
	// SetSize is the manifest's slot count, or zero when no manifest was given.
	SetSize int `json:"set_size"`
	// Fallback is set when no manifest was available.
	Fallback bool `json:"fallback"`
}

// Build runs Rows and Sort and attaches the summary counts. The set size is
// reported whenever a manifest is present, even if missing slots are hidden.
func Build(instances []model.CardInstance, overview *model.Overview, opts Options) View {
	sortBy := ParseSortMode(string(opts.SortBy))
	g := Group(instances)

	v := View{
		Rows:        Sort(Rows(instances, overview, opts.ShowMissing), sortBy),
		SortBy:      sortBy,
		ShowMissing: opts.ShowMissing,
		UniqueOwned: g.Len(),
		TotalOwned:  g.Total(),
		Fallback:    overview == nil,
	}
	if overview != nil {
		v.SetSize = overview.TotalCardsInSet
	}
	return v
}
