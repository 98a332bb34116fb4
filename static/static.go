package static

import "embed"

//go:embed clarity.css clarity.js serviceWorker.js
var FS embed.FS
