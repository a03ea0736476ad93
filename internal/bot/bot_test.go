package bot

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/stretchr/testify/assert"
)

func TestMayBeThread(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		channel discord.GuildChannel
		cached  bool
		want    bool
	}{
		{name: "thread", channel: discord.GuildThread{}, cached: true, want: true},
		{name: "text channel", channel: discord.GuildTextChannel{}, cached: true, want: false},
		{name: "not cached", channel: nil, cached: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, mayBeThread(tt.channel, tt.cached))
		})
	}
}
