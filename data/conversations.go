package data

import (
	"fmt"
	"sort"
)

// ConversationInfo summarizes what one conversation contributed to the map.
type ConversationInfo struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	PointsCount int    `json:"pointsCount"`
	RoutesCount int    `json:"routesCount"`
}

// Conversations lists every conversation referenced by pinned locations or
// saved routes, busiest first.
func (s *Store) Conversations() []ConversationInfo {
	byID := map[string]*ConversationInfo{}

	get := func(id string) *ConversationInfo {
		info, ok := byID[id]
		if !ok {
			label := id
			if len(id) > 8 {
				label = id[:8] + "..."
			}
			info = &ConversationInfo{ID: id, Label: fmt.Sprintf("Conversation %s", label)}
			byID[id] = info
		}
		return info
	}

	for _, r := range s.Routes.List() {
		if r.ConversationID != "" {
			get(r.ConversationID).RoutesCount++
		}
	}
	for _, p := range s.Pinned.List() {
		if p.ConversationID != "" {
			get(p.ConversationID).PointsCount++
		}
	}

	out := make([]ConversationInfo, 0, len(byID))
	for _, info := range byID {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool {
		ti := out[i].PointsCount + out[i].RoutesCount
		tj := out[j].PointsCount + out[j].RoutesCount
		if ti != tj {
			return ti > tj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
