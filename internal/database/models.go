package database

import (
	"time"

	"liveroom-server/internal/types"
)

type User struct {
	Id           int
	Name         string
	LeaderCardId int
	Token        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Room struct {
	Id        int64
	LiveId    int
	UserCount int
	Status    types.RoomStatus
	Members   []RoomMember
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomMember is a membership row joined with the owning user's display
// attributes. Rows are ordered by admission: the first member admitted into a
// room has the lowest member id and is the host.
type RoomMember struct {
	Id             int64
	RoomId         int64
	UserId         int
	Name           string
	LeaderCardId   int
	IsHost         bool
	LiveDifficulty types.LiveDifficulty
	CreatedAt      time.Time
}

type CreateUserParams struct {
	Name         string
	LeaderCardId int
	Token        string
}

type UpdateUserParams struct {
	UserId       int
	Name         string
	LeaderCardId int
}

type CreateRoomParams struct {
	LiveId     int
	HostUserId int
	Difficulty types.LiveDifficulty
}
