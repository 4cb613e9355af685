package templates

import _ "embed"

//go:embed quote.html
var QuoteSheet string
