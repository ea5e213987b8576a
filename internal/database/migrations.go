package database

// SQL migrations for the folio database.
// All migrations use IF NOT EXISTS to be idempotent.

const migrationEquities = `
CREATE TABLE IF NOT EXISTS equities (
    symbol TEXT PRIMARY KEY,
    shares INTEGER NOT NULL CHECK (shares >= 0),
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationBullion = `
CREATE TABLE IF NOT EXISTS bullion (
    metal TEXT PRIMARY KEY CHECK (metal IN ('gold', 'silver', 'platinum', 'palladium')),
    ounces REAL NOT NULL DEFAULT 0,
    premium REAL NOT NULL DEFAULT 0
);
`

const migrationCash = `
CREATE TABLE IF NOT EXISTS cash (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    value REAL NOT NULL DEFAULT 0
);
`

const migrationAPI = `
CREATE TABLE IF NOT EXISTS api (
    keyword TEXT PRIMARY KEY,
    data TEXT NOT NULL DEFAULT ''
);
`

const migrationPreferences = `
CREATE TABLE IF NOT EXISTS preferences (
    keyword TEXT PRIMARY KEY,
    data TEXT NOT NULL DEFAULT ''
);
`

const migrationViews = `
CREATE TABLE IF NOT EXISTS views (
    name TEXT PRIMARY KEY,
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    x INTEGER NOT NULL DEFAULT 0,
    y INTEGER NOT NULL DEFAULT 0
);
`

const migrationSymbolNames = `
CREATE TABLE IF NOT EXISTS symbol_names (
    symbol TEXT PRIMARY KEY,
    name TEXT NOT NULL
);
`

const migrationSymbolMeta = `
CREATE TABLE IF NOT EXISTS symbol_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    fetched_at DATETIME NOT NULL
);
`

const migrationFetchHistory = `
CREATE TABLE IF NOT EXISTS fetch_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'started',
    requests INTEGER NOT NULL DEFAULT 0,
    error_message TEXT,
    started_at DATETIME NOT NULL,
    completed_at DATETIME,
    duration_ms INTEGER
);
`

const migrationIndexes = `
CREATE INDEX IF NOT EXISTS idx_fetch_history_started ON fetch_history(started_at);
CREATE INDEX IF NOT EXISTS idx_symbol_names_name ON symbol_names(name COLLATE NOCASE);
`

// Seed rows every installation has. INSERT OR IGNORE keeps user values.
const migrationDefaults = `
INSERT OR IGNORE INTO cash (id, value) VALUES (1, 0);
INSERT OR IGNORE INTO bullion (metal) VALUES ('gold'), ('silver'), ('platinum'), ('palladium');
INSERT OR IGNORE INTO views (name, width, height) VALUES ('main', 900, 600), ('rsi', 900, 600), ('history', 900, 600);
INSERT OR IGNORE INTO preferences (keyword, data) VALUES
    ('Main_Font', 'Sans 10'),
    ('Clocks_Displayed', 'FALSE'),
    ('Indices_Displayed', 'TRUE'),
    ('Decimal_Places', '2'),
    ('Updates_Per_Min', '6'),
    ('Updates_Hours', '1');
INSERT OR IGNORE INTO api (keyword, data) VALUES
    ('Stock_URL', 'https://finnhub.io/api/v1/quote?symbol='),
    ('URL_KEY', ''),
    ('Nasdaq_Symbol_URL', 'https://www.nasdaqtrader.com/dynamic/SymDir/nasdaqlisted.txt'),
    ('NYSE_Symbol_URL', 'https://www.nasdaqtrader.com/dynamic/SymDir/otherlisted.txt');
`

// Early databases lacked the equity timestamp.
const migrationAddEquityCreatedAt = `ALTER TABLE equities ADD COLUMN created_at DATETIME`
