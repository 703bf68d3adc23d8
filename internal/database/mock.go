package database

import (
	"github.com/stretchr/testify/mock"

	"liveroom-server/internal/types"
)

type MockLiveRoomRepository struct {
	mock.Mock
}

func (m *MockLiveRoomRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockLiveRoomRepository) CreateUser(params CreateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockLiveRoomRepository) GetUserByToken(token string) (User, error) {
	args := m.Called(token)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockLiveRoomRepository) UpdateUser(params UpdateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockLiveRoomRepository) CreateRoom(params CreateRoomParams) (int64, error) {
	args := m.Called(params)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockLiveRoomRepository) JoinRoom(roomId int64, userId int, difficulty types.LiveDifficulty) error {
	args := m.Called(roomId, userId, difficulty)
	return args.Error(0)
}
func (m *MockLiveRoomRepository) LeaveRoom(roomId int64, userId int) error {
	args := m.Called(roomId, userId)
	return args.Error(0)
}
func (m *MockLiveRoomRepository) ListRooms(liveId int) ([]Room, error) {
	args := m.Called(liveId)
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockLiveRoomRepository) GetRoomWithMembers(roomId int64) (*Room, error) {
	args := m.Called(roomId)
	if room, ok := args.Get(0).(*Room); ok {
		return room, args.Error(1)
	}
	return nil, args.Error(1)
}
