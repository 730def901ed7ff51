package help

const ColdstartYAML = `# lwd Quick Start

pipeline:
  - "classify each URL by host (ecommerce, news, docs, forum, job, academic, ...)"
  - "run the site type's strategy; retry once with dom_based if text < 300 chars"
  - "chunk text into 1200-char windows with 100-char overlap"
  - "drop boilerplate and low-quality chunks"
  - "write JSONL records plus <output>.manifest.yaml"

strategies:
  static_html: "HTTP fetch + readability main content (news, academic)"
  dom_based: "paragraphs, list items and headings (docs, forum, job, unknown)"
  js_rendered: "headless Chrome, then visible text (ecommerce, real_estate)"
  fallback: "placeholder record, confidence 0.2"

profiles:
  training_minimal: '{"text"}'
  training_with_source: '{"text", "source_url"}'
  debug_full: "every record field (default)"

commands:
  basic_extract: |
    lwd extract --urls "https://en.wikipedia.org/wiki/Tide"

  from_config: |
    lwd extract --config config.yaml --workers 4 --profile training_minimal

  english_only: |
    lwd extract --urls "url1,url2" --language en

  with_qa: |
    # needs OPENROUTER_API_KEY in the environment or .env
    lwd extract --urls "url1" --qa --qa-max 5

  merge: |
    lwd merge --output combined.jsonl --source-tag a.jsonl b.jsonl

  qa_from_dataset: |
    lwd qa --input combined.jsonl --output chatbot_dataset.jsonl

  list_runs: |
    lwd runs

  run_details: |
    lwd runs show <run_id>

merge_rules:
  - "invalid lines (bad JSON, no non-empty string text, over 16 MiB) are counted and skipped"
  - "duplicates compare lowercased text without punctuation (--exact: without hashing)"
  - "written + skipped_duplicates + skipped_invalid = input_lines"
  - "a missing input aborts before the output is created"

error_behavior:
  - "Malformed URLs: not fetched, each gets a fallback record (reason: invalid URL)"
  - "Extraction failures: fallback record, never a crash"
  - "Exit codes: 0=success, 1=usage error or every URL fell back, 2=fatal"
`
