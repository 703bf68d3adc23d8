package database

import "liveroom-server/internal/types"

// LiveRoomRepository is the transactional store behind the room coordinator.
// Every method runs in its own transaction scope; no transaction spans calls.
// Absent rows are reported as sql.ErrNoRows, admission outcomes as the
// sentinel errors in errors.go.
type LiveRoomRepository interface {
	Ping() error
	CreateUser(params CreateUserParams) (User, error)
	GetUserByToken(token string) (User, error)
	UpdateUser(params UpdateUserParams) (User, error)
	CreateRoom(params CreateRoomParams) (int64, error)
	JoinRoom(roomId int64, userId int, difficulty types.LiveDifficulty) error
	LeaveRoom(roomId int64, userId int) error
	ListRooms(liveId int) ([]Room, error)
	GetRoomWithMembers(roomId int64) (*Room, error)
}
