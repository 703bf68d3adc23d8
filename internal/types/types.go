package types

// LiveDifficulty is the difficulty a user selects when entering a room.
type LiveDifficulty int

const (
	DifficultyNormal LiveDifficulty = 1
	DifficultyHard   LiveDifficulty = 2
)

func (d LiveDifficulty) Valid() bool {
	return d == DifficultyNormal || d == DifficultyHard
}

// JoinRoomResult is the closed set of outcomes of a join attempt. It is a
// result, not an error: the transport layer reports it to the client in a
// 200 response.
type JoinRoomResult int

const (
	JoinOk         JoinRoomResult = 1
	JoinRoomFull   JoinRoomResult = 2
	JoinDisbanded  JoinRoomResult = 3
	JoinOtherError JoinRoomResult = 4
)

// RoomStatus is the lifecycle state of a room. Rooms are never deleted;
// dissolution is a terminal status.
type RoomStatus int

const (
	StatusWaiting     RoomStatus = 1
	StatusLiveStart   RoomStatus = 2
	StatusDissolution RoomStatus = 3
)

// MaxRoomMembers is the room capacity. The admission transaction enforces it
// under a row lock; the rooms table carries a matching CHECK constraint.
const MaxRoomMembers = 4

// User is a user's public attributes, without the auth token.
type User struct {
	Id           int    `json:"id"`
	Name         string `json:"name"`
	LeaderCardId int    `json:"leader_card_id"`
}

// RoomInfo is one entry of a room listing.
type RoomInfo struct {
	RoomId          int64 `json:"room_id"`
	LiveId          int   `json:"live_id"`
	JoinedUserCount int   `json:"joined_user_count"`
	MaxUserCount    int   `json:"max_user_count"`
}

// RoomUser is one member of a room as seen by a polling client.
type RoomUser struct {
	UserId           int            `json:"user_id"`
	Name             string         `json:"name"`
	LeaderCardId     int            `json:"leader_card_id"`
	SelectDifficulty LiveDifficulty `json:"select_difficulty"`
	IsMe             bool           `json:"is_me"`
	IsHost           bool           `json:"is_host"`
}
