// Package room implements the matchmaking coordinator on top of the
// transactional store: room creation, capacity-controlled admission, the
// joinable-room directory and the wait-room view.
package room

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"liveroom-server/internal/database"
	"liveroom-server/internal/stats"
	"liveroom-server/internal/types"
)

const (
	MetricRoomsCreated  = "RoomsCreated"
	MetricJoinsAccepted = "JoinsAccepted"
	MetricJoinsRejected = "JoinsRejected"
	MetricLeaves        = "Leaves"
)

type Service struct {
	log   *log.Logger
	db    database.LiveRoomRepository
	stats stats.StatsProvider
}

func NewService(logger *log.Logger, db database.LiveRoomRepository, sp stats.StatsProvider) *Service {
	sp.RegisterMetric(MetricRoomsCreated)
	sp.RegisterMetric(MetricJoinsAccepted)
	sp.RegisterMetric(MetricJoinsRejected)
	sp.RegisterMetric(MetricLeaves)

	return &Service{
		log:   logger,
		db:    db,
		stats: sp,
	}
}

// Create opens a new waiting room for the given live and enters the creator
// as its first member. The creator always becomes host.
func (s *Service) Create(user types.User, liveId int, difficulty types.LiveDifficulty) (int64, error) {
	roomId, err := s.db.CreateRoom(database.CreateRoomParams{
		LiveId:     liveId,
		HostUserId: user.Id,
		Difficulty: difficulty,
	})
	if err != nil {
		return 0, fmt.Errorf("create room: %w", err)
	}

	s.stats.Incr(MetricRoomsCreated)
	s.log.Printf("user %d created room %d for live %d", user.Id, roomId, liveId)

	return roomId, nil
}

// Join attempts to admit the user into the room. Expected rejections (full,
// disbanded, nonexistent, already joined) are folded into the JoinRoomResult
// enumeration with a nil error; only store failures are returned as errors,
// paired with JoinOtherError.
func (s *Service) Join(roomId int64, user types.User, difficulty types.LiveDifficulty) (types.JoinRoomResult, error) {
	err := s.db.JoinRoom(roomId, user.Id, difficulty)
	switch {
	case err == nil:
		s.stats.Incr(MetricJoinsAccepted)
		return types.JoinOk, nil
	case errors.Is(err, database.ErrRoomFull):
		s.stats.Incr(MetricJoinsRejected)
		return types.JoinRoomFull, nil
	case errors.Is(err, database.ErrRoomDisbanded):
		s.stats.Incr(MetricJoinsRejected)
		return types.JoinDisbanded, nil
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, database.ErrAlreadyJoined):
		s.stats.Incr(MetricJoinsRejected)
		s.log.Printf("join room %d by user %d rejected: %v", roomId, user.Id, err)
		return types.JoinOtherError, nil
	default:
		return types.JoinOtherError, fmt.Errorf("join room: %w", err)
	}
}

// List returns the joinable rooms for a live, or for every live when liveId
// is zero. Counts are a point-in-time snapshot.
func (s *Service) List(liveId int) ([]types.RoomInfo, error) {
	dbRooms, err := s.db.ListRooms(liveId)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	roomInfoList := make([]types.RoomInfo, 0, len(dbRooms))
	for _, dbRoom := range dbRooms {
		roomInfoList = append(roomInfoList, types.RoomInfo{
			RoomId:          dbRoom.Id,
			LiveId:          dbRoom.LiveId,
			JoinedUserCount: dbRoom.UserCount,
			MaxUserCount:    types.MaxRoomMembers,
		})
	}

	return roomInfoList, nil
}

// Wait returns the room's status and its members in admission order, marking
// the requesting user's own entry. A nonexistent room surfaces sql.ErrNoRows.
func (s *Service) Wait(roomId int64, requester types.User) (types.RoomStatus, []types.RoomUser, error) {
	dbRoom, err := s.db.GetRoomWithMembers(roomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, err
		}
		return 0, nil, fmt.Errorf("get room %d: %w", roomId, err)
	}

	roomUserList := make([]types.RoomUser, 0, len(dbRoom.Members))
	for _, member := range dbRoom.Members {
		roomUserList = append(roomUserList, types.RoomUser{
			UserId:           member.UserId,
			Name:             member.Name,
			LeaderCardId:     member.LeaderCardId,
			SelectDifficulty: member.LiveDifficulty,
			IsMe:             member.UserId == requester.Id,
			IsHost:           member.IsHost,
		})
	}

	return dbRoom.Status, roomUserList, nil
}

// Leave removes the user from the room. The last member leaving dissolves the
// room; a departing host hands the role to the earliest remaining member.
// Sentinel errors from the store pass through for the transport layer to map.
func (s *Service) Leave(roomId int64, user types.User) error {
	if err := s.db.LeaveRoom(roomId, user.Id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, database.ErrNotJoined) {
			return err
		}
		return fmt.Errorf("leave room: %w", err)
	}

	s.stats.Incr(MetricLeaves)
	s.log.Printf("user %d left room %d", user.Id, roomId)

	return nil
}
