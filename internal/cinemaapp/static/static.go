package static

import "embed"

//go:embed app.css app.js
var Assets embed.FS
