// Package icon renders the status symbols printed by CLI commands.
//
// Icons can be displayed as emoji, nerd-font glyphs or plain ASCII depending on user preference.
package icon

import (
	"github.com/anisan-cli/playtrack/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Play
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

func (d iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

var icons = map[Icon]iconDef{
	Success:  {emoji: "🎉", nerd: "\uf00c", plain: "✓"},
	Fail:     {emoji: "💀", nerd: "\uf00d", plain: "✗"},
	Progress: {emoji: "⏳", nerd: "\uf110", plain: "…"},
	Play:     {emoji: "▶️", nerd: "\uf04b", plain: ">"},
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	return icons[i].get()
}
