package station

import _ "embed"

//go:embed static/index.html
var indexHTML []byte

//go:embed static/settings.html
var settingsHTML []byte

//go:embed static/app.css
var appCSS []byte
