package evaluate

// CapabilityKeywords signal work a coding agent can take on. Matching is a
// case-insensitive substring test against the listing title; each distinct
// hit contributes one score point.
var CapabilityKeywords = []string{
	"code", "script", "api", "python", "javascript", "solidity",
	"smart contract", "bot", "automation", "research", "analyze",
	"data", "scrape", "build", "create", "develop", "fix", "bug",
	"test", "documentation", "markdown", "convert", "migrate",
}
