package search

import (
	"sort"
	"strings"
)

// SuggestionSearcher serves title-prefix suggestions from the
// archive's title listing (front articles in title order).
//
// The listing on disk is ordered by raw title bytes, which disagrees
// with case-folded order (e.g. "Two" sorts before "apple" raw but
// after it folded). Matching is case-insensitive, so the searcher
// resolves every title once at construction and keeps a case-folded
// key per entry, sorted in folded order for binary search.
type SuggestionSearcher struct {
	src  Source
	keys []suggestKey
}

type suggestKey struct {
	folded   string
	urlIndex uint32
}

// NewSuggestionSearcher loads the title listing. Archives without
// front articles yield an empty (but valid) searcher.
func NewSuggestionSearcher(src Source) (*SuggestionSearcher, error) {
	listing, err := src.TitleListing()
	if err != nil {
		return nil, err
	}

	keys := make([]suggestKey, 0, len(listing))
	for _, urlIndex := range listing {
		title, err := src.TitleAt(urlIndex)
		if err != nil {
			return nil, err
		}
		keys = append(keys, suggestKey{folded: strings.ToLower(title), urlIndex: urlIndex})
	}
	// Stable so titles equal under folding keep their byte order.
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].folded < keys[j].folded
	})

	return &SuggestionSearcher{src: src, keys: keys}, nil
}

// Suggest returns the suggestions whose title starts with prefix,
// case-insensitively. The match range is located by binary search over
// the folded keys.
func (s *SuggestionSearcher) Suggest(prefix string) (*Suggestions, error) {
	lower := strings.ToLower(prefix)

	start := sort.Search(len(s.keys), func(i int) bool {
		return s.keys[i].folded >= lower
	})
	end := sort.Search(len(s.keys), func(i int) bool {
		k := s.keys[i].folded
		return !strings.HasPrefix(k, lower) && k >= lower
	})
	if end < start {
		end = start
	}

	window := make([]uint32, 0, end-start)
	for _, k := range s.keys[start:end] {
		window = append(window, k.urlIndex)
	}
	return &Suggestions{src: s.src, window: window}, nil
}

// Suggestions is the result set of one Suggest call.
type Suggestions struct {
	src    Source
	window []uint32
}

// EstimatedMatches returns the number of matching titles.
func (sg *Suggestions) EstimatedMatches() int { return len(sg.window) }

// Results returns a forward-only iterator over [start, start+count).
func (sg *Suggestions) Results(start, count int) *SuggestionIterator {
	if start < 0 || count < 0 {
		return &SuggestionIterator{}
	}
	end := start + count
	if start > len(sg.window) {
		start = len(sg.window)
	}
	if end > len(sg.window) {
		end = len(sg.window)
	}
	return &SuggestionIterator{src: sg.src, window: sg.window[start:end]}
}

// SuggestionIterator walks one suggestion window.
type SuggestionIterator struct {
	src    Source
	window []uint32
	cur    Result
	err    error
}

// Next advances to the next suggestion.
func (it *SuggestionIterator) Next() bool {
	if it.err != nil || len(it.window) == 0 {
		return false
	}
	urlIndex := it.window[0]
	it.window = it.window[1:]

	path, err := it.src.PathAt(urlIndex)
	if err != nil {
		it.err = err
		return false
	}
	title, err := it.src.TitleAt(urlIndex)
	if err != nil {
		it.err = err
		return false
	}
	it.cur = Result{Path: path, Title: title}
	return true
}

// Result returns the current suggestion. Valid only after a true Next.
func (it *SuggestionIterator) Result() Result { return it.cur }

// Err returns the first resolution error encountered, if any.
func (it *SuggestionIterator) Err() error { return it.err }
