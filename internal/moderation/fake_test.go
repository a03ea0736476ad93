package moderation_test

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/robalyx/fuzzy/internal/discord/notice"
)

// memDB is an in-memory record store shared by the fake models below.
type memDB struct {
	mu           sync.Mutex
	nextID       int64
	infractions  map[int64]types.Infraction
	pardons      map[int64]types.Pardon
	publications map[uint64]types.PublishedMessage
	settings     map[uint64]types.GuildSettings
	writes       int
}

func newMemDB() *memDB {
	return &memDB{
		infractions:  make(map[int64]types.Infraction),
		pardons:      make(map[int64]types.Pardon),
		publications: make(map[uint64]types.PublishedMessage),
		settings:     make(map[uint64]types.GuildSettings),
	}
}

// load returns a detached copy of an infraction with its relations.
func (db *memDB) load(id int64) *types.Infraction {
	row, ok := db.infractions[id]
	if !ok {
		return nil
	}

	infraction := row
	infraction.Pardon = nil
	infraction.Publications = nil

	if pardon, ok := db.pardons[id]; ok {
		infraction.Pardon = &pardon
	}

	for _, p := range db.publications {
		if p.InfractionID == id {
			publication := p
			infraction.Publications = append(infraction.Publications, &publication)
		}
	}
	slices.SortFunc(infraction.Publications, func(a, b *types.PublishedMessage) int {
		return cmp.Compare(a.MessageID, b.MessageID)
	})

	return &infraction
}

func (db *memDB) writeCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.writes
}

func (db *memDB) publicationCount(infractionID int64) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := 0
	for _, p := range db.publications {
		if p.InfractionID == infractionID {
			n++
		}
	}
	return n
}

type fakeInfractions struct{ db *memDB }

func (f fakeInfractions) Create(_ context.Context, infraction *types.Infraction) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	f.db.nextID++
	infraction.ID = f.db.nextID
	row := *infraction
	row.Pardon = nil
	row.Publications = nil
	f.db.infractions[row.ID] = row
	f.db.writes++
	return nil
}

func (f fakeInfractions) Get(_ context.Context, guildID uint64, id int64) (*types.Infraction, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	infraction := f.db.load(id)
	if infraction == nil || infraction.GuildID != guildID {
		return nil, types.ErrRecordNotFound
	}
	return infraction, nil
}

func (f fakeInfractions) Save(_ context.Context, infraction *types.Infraction) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	row, ok := f.db.infractions[infraction.ID]
	if !ok {
		return types.ErrRecordNotFound
	}
	row.Reason = infraction.Reason
	row.Moderator = infraction.Moderator
	f.db.infractions[row.ID] = row
	f.db.writes++
	return nil
}

func (f fakeInfractions) Delete(_ context.Context, id int64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if _, ok := f.db.infractions[id]; !ok {
		return false, nil
	}
	delete(f.db.infractions, id)

	// Cascade
	delete(f.db.pardons, id)
	for messageID, p := range f.db.publications {
		if p.InfractionID == id {
			delete(f.db.publications, messageID)
		}
	}
	f.db.writes++
	return true, nil
}

func (f fakeInfractions) ListForUser(
	_ context.Context, guildID, userID uint64, infractionType *enum.InfractionType,
	after *types.InfractionCursor, limit int,
) ([]*types.Infraction, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var matched []*types.Infraction
	for id, row := range f.db.infractions {
		if row.GuildID != guildID || row.User.ID != userID {
			continue
		}
		if infractionType != nil && row.Type != *infractionType {
			continue
		}
		if after != nil {
			if row.IssuedAt.Before(after.IssuedAt) ||
				(row.IssuedAt.Equal(after.IssuedAt) && row.ID <= after.ID) {
				continue
			}
		}
		matched = append(matched, f.db.load(id))
	}

	slices.SortFunc(matched, func(a, b *types.Infraction) int {
		if c := a.IssuedAt.Compare(b.IssuedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f fakeInfractions) CountByModerator(
	_ context.Context, guildID, moderatorID uint64,
) (map[enum.InfractionType]int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	counts := make(map[enum.InfractionType]int)
	for _, row := range f.db.infractions {
		if row.GuildID == guildID && row.Moderator.ID == moderatorID {
			counts[row.Type]++
		}
	}
	return counts, nil
}

type fakePardons struct{ db *memDB }

func (f fakePardons) Save(_ context.Context, pardon *types.Pardon) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if existing, ok := f.db.pardons[pardon.InfractionID]; ok {
		existing.Reason = pardon.Reason
		f.db.pardons[pardon.InfractionID] = existing
	} else {
		f.db.pardons[pardon.InfractionID] = *pardon
	}
	f.db.writes++
	return nil
}

func (f fakePardons) Delete(_ context.Context, infractionID int64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if _, ok := f.db.pardons[infractionID]; !ok {
		return false, nil
	}
	delete(f.db.pardons, infractionID)
	f.db.writes++
	return true, nil
}

type fakePublications struct{ db *memDB }

func (f fakePublications) Create(_ context.Context, publication *types.PublishedMessage) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	f.db.publications[publication.MessageID] = *publication
	f.db.writes++
	return nil
}

func (f fakePublications) Delete(_ context.Context, messageID uint64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if _, ok := f.db.publications[messageID]; !ok {
		return false, nil
	}
	delete(f.db.publications, messageID)
	f.db.writes++
	return true, nil
}

type fakeSettings struct{ db *memDB }

func (f fakeSettings) Get(_ context.Context, guildID uint64) (*types.GuildSettings, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	settings, ok := f.db.settings[guildID]
	if !ok {
		return nil, types.ErrRecordNotFound
	}
	return &settings, nil
}

// fakeNotifier stores sent embeds by message id.
type fakeNotifier struct {
	mu       sync.Mutex
	nextID   uint64
	messages map[uint64]discord.Embed
	sendErr  error
	fetchErr error
	editErr  error
	edits    int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{nextID: 1000, messages: make(map[uint64]discord.Embed)}
}

func (n *fakeNotifier) Send(_ context.Context, _ uint64, embed discord.Embed) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.sendErr != nil {
		return 0, n.sendErr
	}
	n.nextID++
	n.messages[n.nextID] = embed
	return n.nextID, nil
}

func (n *fakeNotifier) Fetch(_ context.Context, _, messageID uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.fetchErr != nil {
		return n.fetchErr
	}
	if _, ok := n.messages[messageID]; !ok {
		return notice.ErrUnknownMessage
	}
	return nil
}

func (n *fakeNotifier) Edit(_ context.Context, _, messageID uint64, embed discord.Embed) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.editErr != nil {
		return n.editErr
	}
	if _, ok := n.messages[messageID]; !ok {
		return notice.ErrUnknownMessage
	}
	n.messages[messageID] = embed
	n.edits++
	return nil
}

// deleteRemote simulates a moderator deleting the message by hand.
func (n *fakeNotifier) deleteRemote(messageID uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.messages, messageID)
}

func (n *fakeNotifier) message(messageID uint64) (discord.Embed, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	embed, ok := n.messages[messageID]
	return embed, ok
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []discord.Embed
}

func (a *fakeAudit) PostLog(_ context.Context, _ uint64, embed discord.Embed) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries = append(a.entries, embed)
	return nil
}

func (a *fakeAudit) descriptions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	descriptions := make([]string, 0, len(a.entries))
	for _, entry := range a.entries {
		descriptions = append(descriptions, entry.Description)
	}
	return descriptions
}
