package favorites

// Schema defines the favorites table. List-valued columns (authors,
// languages) are stored as JSON-encoded text and decoded on read.
const Schema = `
CREATE TABLE IF NOT EXISTS favorite_books (
	id TEXT PRIMARY KEY NOT NULL,
	title TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	authors TEXT NOT NULL DEFAULT '[]',
	description TEXT,
	languages TEXT NOT NULL DEFAULT '[]',
	first_publish_year TEXT NOT NULL DEFAULT '',
	average_rating REAL,
	rating_count INTEGER,
	num_pages INTEGER,
	num_editions INTEGER NOT NULL DEFAULT 0
);
`
