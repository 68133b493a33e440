package chat_test

import (
	"testing"
	"time"

	"learnhub/backend/internal/chat"
	"learnhub/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func summary(id uint, unread int64, at *time.Time) models.RoomSummary {
	return models.RoomSummary{Room: models.ChatRoom{ID: id}, UnreadCount: unread, LastMessageAt: at}
}

func ids(rooms []models.RoomSummary) []uint {
	out := make([]uint, len(rooms))
	for i, r := range rooms {
		out[i] = r.Room.ID
	}
	return out
}

func TestSortRooms(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	old := base
	recent := base.Add(time.Hour)
	newest := base.Add(2 * time.Hour)

	tests := []struct {
		name  string
		rooms []models.RoomSummary
		want  []uint
	}{
		{
			name:  "unread beats recency",
			rooms: []models.RoomSummary{summary(1, 0, &newest), summary(2, 3, &old)},
			want:  []uint{2, 1},
		},
		{
			name:  "equal unread sorts by most recent message",
			rooms: []models.RoomSummary{summary(1, 1, &old), summary(2, 1, &newest), summary(3, 1, &recent)},
			want:  []uint{2, 3, 1},
		},
		{
			name:  "rooms without messages sort last",
			rooms: []models.RoomSummary{summary(1, 0, nil), summary(2, 0, &old), summary(3, 0, nil)},
			want:  []uint{2, 1, 3},
		},
		{
			name:  "ties fall back to room id",
			rooms: []models.RoomSummary{summary(9, 2, &old), summary(4, 2, &old)},
			want:  []uint{4, 9},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat.SortRooms(tt.rooms)
			assert.Equal(t, tt.want, ids(tt.rooms))
		})
	}
}
