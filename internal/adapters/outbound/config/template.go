package config

// Template is the commented default file written by `linkwatch init`.
const Template = `# linkwatch configuration
# Paths are relative to this file's directory.

database_path: data/promises.db
results_path: latest_validation_results.json
reports_dir: reports
log_level: info

validator:
  timeout: 10s
  # Pause after each network check before the next one starts. 0 disables.
  request_delay: 500ms
  # user_agent: "Mozilla/5.0 ..."

# Hosts containing any of these are treated as placeholders.
placeholder_domains:
  - example.com
  - placeholder.com
  - dummy.com
  - fake.com
  - test.com

auto_repair:
  enabled: true
  # First keyword found in a linked promise's text or category wins.
  replacements:
    - keyword: border
      title: Department of Homeland Security - Border Security
      url: https://www.dhs.gov/topic/border-security
      source_type: Official Statement
      reliability_score: 0.95
    - keyword: tax
      title: Internal Revenue Service - Tax Information
      url: https://www.irs.gov/
      source_type: Official Statement
      reliability_score: 0.95
    - keyword: healthcare
      title: Department of Health and Human Services
      url: https://www.hhs.gov/
      source_type: Official Statement
      reliability_score: 0.95
    - keyword: energy
      title: Department of Energy
      url: https://www.energy.gov/
      source_type: Official Statement
      reliability_score: 0.95
    - keyword: trade
      title: Office of the United States Trade Representative
      url: https://ustr.gov/
      source_type: Official Statement
      reliability_score: 0.95

# Set interval to 0, or daily_at / weekly_day to "", to disable that trigger.
schedule:
  interval: 6h
  daily_at: "09:00"
  weekly_day: monday
  weekly_at: "08:00"
  poll_interval: 1m

status:
  warning_after: 6h
  stale_after: 12h

audit:
  reliability_threshold: 0.7

http:
  addr: ":8080"
  # allowed_origins:
  #   - http://localhost:3000
`
