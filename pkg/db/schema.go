package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- One row per extract or merge invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,          -- uuid
    kind TEXT NOT NULL,               -- extract, merge
    started_at TEXT NOT NULL,         -- RFC 3339 UTC
    finished_at TEXT,
    output_path TEXT NOT NULL,
    record_count INTEGER DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'running'  -- running, success, partial, failed
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);

-- Per-URL outcome of an extract run
CREATE TABLE IF NOT EXISTS url_extractions (
    extraction_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    url TEXT NOT NULL,
    site_type TEXT NOT NULL,
    strategy TEXT NOT NULL,
    attempts TEXT,                    -- comma separated strategy names
    record_count INTEGER NOT NULL,
    fallback_reason TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_extractions_run ON url_extractions(run_id);
CREATE INDEX IF NOT EXISTS idx_extractions_url ON url_extractions(url);

-- Statistics of a merge run
CREATE TABLE IF NOT EXISTS merge_runs (
    run_id TEXT PRIMARY KEY,
    input_files INTEGER NOT NULL,
    input_lines INTEGER NOT NULL,
    written INTEGER NOT NULL,
    skipped_duplicates INTEGER NOT NULL,
    skipped_invalid INTEGER NOT NULL,
    dedup_strategy TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);
`
