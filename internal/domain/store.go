package domain

// Store handles local persistence (BoltDB + memory).
// Page snapshots let a restarted client resume a category without a refetch;
// local favorites back the guest (signed-out) favorites list.
type Store interface {
	// === Category pages (key: "{category}-{query}") ===
	GetPage(key string) (CachedPage, bool)
	SavePage(key string, page CachedPage) error
	DeletePage(key string)
	InvalidatePages()

	// === Guest favorites ===
	GetLocalFavorites() ([]Favorite, bool)
	SaveLocalFavorites(favs []Favorite) error

	InvalidateAll()

	Close() error
}
