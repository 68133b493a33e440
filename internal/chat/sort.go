package chat

import (
	"sort"

	"learnhub/backend/internal/models"
)

// SortRooms orders by unread count descending, then last message time descending with
// message-less rooms last, then room id.
func SortRooms(rooms []models.RoomSummary) {
	sort.SliceStable(rooms, func(i, j int) bool {
		a, b := rooms[i], rooms[j]
		if a.UnreadCount != b.UnreadCount {
			return a.UnreadCount > b.UnreadCount
		}
		switch {
		case a.LastMessageAt == nil && b.LastMessageAt != nil:
			return false
		case a.LastMessageAt != nil && b.LastMessageAt == nil:
			return true
		case a.LastMessageAt != nil && b.LastMessageAt != nil && !a.LastMessageAt.Equal(*b.LastMessageAt):
			return a.LastMessageAt.After(*b.LastMessageAt)
		}
		return a.Room.ID < b.Room.ID
	})
}
