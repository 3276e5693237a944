package storage

import (
	"sort"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/models"
)

// sortHistory orders entries newest first; equal timestamps put the later
// append first
func sortHistory(entries []models.ThoughtHistory) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].EditedAt.Equal(entries[j].EditedAt) {
			return entries[i].EditedAt.After(entries[j].EditedAt)
		}
		return entries[i].ID > entries[j].ID
	})
}

// synthesizeCreated stands in for the missing history of a thought written
// before history tracking existed or by an import path
func synthesizeCreated(t models.Thought) models.ThoughtHistory {
	return models.Snapshot(t, t.AuthorID, t.CreatedAt, models.ChangeCreated)
}

// historyEditorIDs lists the user ids buildHistory will resolve
func historyEditorIDs(thought *models.Thought, entries []models.ThoughtHistory) []uint {
	if len(entries) == 0 {
		if thought == nil {
			return nil
		}
		return []uint{thought.AuthorID}
	}
	seen := make(map[uint]struct{}, len(entries))
	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.EditedBy]; ok {
			continue
		}
		seen[e.EditedBy] = struct{}{}
		ids = append(ids, e.EditedBy)
	}
	return ids
}

// buildHistory joins sorted entries with their editors. A thought with no
// entries gets exactly one synthesized created entry; a missing thought with
// no entries yields an empty result.
func buildHistory(thought *models.Thought, entries []models.ThoughtHistory, users map[uint]models.User) []dto.HistoryEntry {
	if len(entries) == 0 {
		if thought == nil {
			return []dto.HistoryEntry{}
		}
		entries = []models.ThoughtHistory{synthesizeCreated(*thought)}
	}

	out := make([]dto.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		editor, ok := users[e.EditedBy]
		if !ok {
			editor = models.UnknownUser(e.EditedBy)
		}
		out = append(out, dto.HistoryEntry{ThoughtHistory: e, Editor: editor})
	}
	return out
}
