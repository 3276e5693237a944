package storage

import (
	"sort"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/models"
)

// filterThoughts applies the listing pipeline in order: deleted, date window,
// author, department, read state. Input must be in insertion order; the
// output is newest first with ties left in insertion order.
func filterThoughts(thoughts []models.Thought, includeDeleted bool, filters dto.ThoughtFilters) []models.Thought {
	from, to := filters.Bounds()

	out := make([]models.Thought, 0, len(thoughts))
	for _, t := range thoughts {
		if !includeDeleted && t.IsDeleted {
			continue
		}
		if from != nil && t.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && t.CreatedAt.After(*to) {
			continue
		}
		if filters.UserID != nil && t.AuthorID != *filters.UserID {
			continue
		}
		if filters.Department != nil && !t.HasDepartment(*filters.Department) {
			continue
		}
		if filters.ExcludesRead() && t.IsRead {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// joinAuthors pairs thoughts with their authors, dropping thoughts whose
// author no longer exists
func joinAuthors(thoughts []models.Thought, users map[uint]models.User) []dto.ThoughtWithAuthor {
	out := make([]dto.ThoughtWithAuthor, 0, len(thoughts))
	for _, t := range thoughts {
		author, ok := users[t.AuthorID]
		if !ok {
			continue
		}
		out = append(out, dto.ThoughtWithAuthor{Thought: t, Author: author})
	}
	return out
}

func authorIDs(thoughts []models.Thought) []uint {
	seen := make(map[uint]struct{}, len(thoughts))
	ids := make([]uint, 0, len(thoughts))
	for _, t := range thoughts {
		if _, ok := seen[t.AuthorID]; ok {
			continue
		}
		seen[t.AuthorID] = struct{}{}
		ids = append(ids, t.AuthorID)
	}
	return ids
}

func usersByID(users []models.User) map[uint]models.User {
	m := make(map[uint]models.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return m
}
