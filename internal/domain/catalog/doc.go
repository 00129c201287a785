// Package catalog holds the fetched set of categories and recommended
// template apps and derives the filtered view consumed by the explore UI.
//
// The Store keeps one atomic snapshot: revalidation replaces it wholesale,
// there is no partial update. A View layers the user's filter state
// (category, type, debounced search term) on top of a Store and memoizes
// the derived list keyed by (snapshot version, category, type, term).
package catalog
