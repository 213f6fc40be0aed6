package cache

// SQL schemas for cache tables. All cache tables use "cache_key" as the
// primary key column for consistency.

// WorksCacheSchema defines the schema for OpenLibrary work-detail responses.
const WorksCacheSchema = `
CREATE TABLE IF NOT EXISTS works_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_works_cached_at ON works_cache(cached_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization.
var AllCacheSchemas = []string{
	WorksCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names, used to
// prevent SQL injection when interpolating table names.
var ValidCacheTableNames = map[string]bool{
	"works_cache": true,
}
