// Package content embeds the stock NeonCore world, characters and NPCs.
package content

import "embed"

// FS holds world/*.lua, characters.yaml and npcs.yaml.
//
//go:embed world/*.lua characters.yaml npcs.yaml
var FS embed.FS
