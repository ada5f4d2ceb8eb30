package resources

import "embed"

// FS carries everything the binary needs at runtime: schema migrations
// and reply-text translations.
//
//go:embed migrations i18n
var FS embed.FS
