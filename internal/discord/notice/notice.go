// Package notice holds the embed colours and error kinds shared by everything
// that talks to Discord channels.
package notice

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/disgoorg/disgo/discord"
)

// Embed colours.
const (
	ColorGood          = 0x7DB358
	ColorIGuess        = 0xF9AE36
	ColorBad           = 0xD52D48
	ColorAutomaticBlue = 0x1C669B
)

// MaxDescriptionLength is the longest description Discord accepts on an embed.
const MaxDescriptionLength = 2048

var (
	// ErrUnknownMessage means the platform confirmed the message no longer exists.
	ErrUnknownMessage = errors.New("unknown message")
	// ErrUnknownTarget means a guild, channel, thread or role could not be resolved.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrMissingAccess means the bot is not allowed to act on the target.
	ErrMissingAccess = errors.New("missing access")
	// ErrChannelNotConfigured means the guild has no channel set for the requested log.
	ErrChannelNotConfigured = errors.New("log channel not configured")
)

// New builds an embed with the given colour, title and description.
func New(color int, title, description string) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle(title).
		SetDescription(description).
		SetColor(color).
		Build()
}

// Chunk splits text into pieces no longer than limit, breaking on line boundaries
// whenever a single line fits.
func Chunk(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		buf    strings.Builder
	)

	flush := func() {
		if buf.Len() > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
	}

	for line := range strings.SplitSeq(text, "\n") {
		// Lines longer than the limit are hard split on a rune boundary
		for len(line) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}

		extra := len(line)
		if buf.Len() > 0 {
			extra++
		}

		if buf.Len()+extra > limit {
			flush()
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}
	flush()

	return chunks
}
