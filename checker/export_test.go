package checker

// Exported aliases for testing internal functions from
// the checker_test package.

// CheckHexForTest exposes checkHex.
var CheckHexForTest = checkHex

// TemplateVarsForTest exposes templateVars.
var TemplateVarsForTest = templateVars
