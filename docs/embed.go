// Copyright © 2018 The ELPS authors

// Package docs embeds the rasp language reference for use by the CLI.
package docs

import _ "embed"

//go:embed lang.md
var LangGuide string
