package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"liveroom-server/internal/database"
	"liveroom-server/internal/types"
)

type CreateUserRequest struct {
	UserName     string `json:"user_name"`
	LeaderCardId int    `json:"leader_card_id"`
}

type CreateUserResponse struct {
	UserToken string `json:"user_token"`
}

type CreateRoomRequest struct {
	LiveId           int                  `json:"live_id"`
	SelectDifficulty types.LiveDifficulty `json:"select_difficulty"`
}

type RoomIdResponse struct {
	RoomId int64 `json:"room_id"`
}

type ListRoomRequest struct {
	LiveId int `json:"live_id"`
}

type ListRoomResponse struct {
	RoomInfoList []types.RoomInfo `json:"room_info_list"`
}

type JoinRoomRequest struct {
	RoomId           int64                `json:"room_id"`
	SelectDifficulty types.LiveDifficulty `json:"select_difficulty"`
}

type JoinRoomResponse struct {
	JoinRoomResult types.JoinRoomResult `json:"join_room_result"`
}

type WaitRoomRequest struct {
	RoomId int64 `json:"room_id"`
}

type WaitRoomResponse struct {
	Status       types.RoomStatus `json:"status"`
	RoomUserList []types.RoomUser `json:"room_user_list"`
}

type LeaveRoomRequest struct {
	RoomId int64 `json:"room_id"`
}

func (s *LiveRoomApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *LiveRoomApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Printf("health check: %v", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *LiveRoomApp) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.UserName == "" || req.LeaderCardId < 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// Token collisions are astronomically unlikely; if one ever happens the
	// insert fails and the client retries user creation.
	params := database.CreateUserParams{
		Name:         req.UserName,
		LeaderCardId: req.LeaderCardId,
		Token:        s.generateToken(),
	}

	newUser, err := s.db.CreateUser(params)
	if err != nil {
		s.log.Printf("create user: %v", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, CreateUserResponse{
		UserToken: newUser.Token,
	})
}

func (s *LiveRoomApp) me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, user)
}

func (s *LiveRoomApp) updateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.UserName == "" || req.LeaderCardId < 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	updated, err := s.db.UpdateUser(database.UpdateUserParams{
		UserId:       user.Id,
		Name:         req.UserName,
		LeaderCardId: req.LeaderCardId,
	})
	if err != nil {
		s.log.Printf("update user: %v", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, types.User{
		Id:           updated.Id,
		Name:         updated.Name,
		LeaderCardId: updated.LeaderCardId,
	})
}

func (s *LiveRoomApp) createRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !req.SelectDifficulty.Valid() || req.LiveId < 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roomId, err := s.rooms.Create(user, req.LiveId, req.SelectDifficulty)
	if err != nil {
		s.log.Printf("create room: %v", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, RoomIdResponse{RoomId: roomId})
}

func (s *LiveRoomApp) listRooms(w http.ResponseWriter, r *http.Request) {
	var req ListRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roomInfoList, err := s.rooms.List(req.LiveId)
	if err != nil {
		s.log.Printf("list rooms: %v", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, ListRoomResponse{RoomInfoList: roomInfoList})
}

func (s *LiveRoomApp) joinRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !req.SelectDifficulty.Valid() || req.RoomId <= 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	result, err := s.rooms.Join(req.RoomId, user, req.SelectDifficulty)
	if err != nil {
		s.log.Printf("join room: %v", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, JoinRoomResponse{JoinRoomResult: result})
}

func (s *LiveRoomApp) waitRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req WaitRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomId <= 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	status, roomUserList, err := s.rooms.Wait(req.RoomId, user)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			s.log.Printf("wait room: %v", err)
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, WaitRoomResponse{
		Status:       status,
		RoomUserList: roomUserList,
	})
}

func (s *LiveRoomApp) leaveRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req LeaveRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomId <= 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.rooms.Leave(req.RoomId, user); err != nil {
		var errResp *ApiError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			errResp = NewNotFoundError()
		case errors.Is(err, database.ErrNotJoined):
			errResp = NewBadRequestError()
		default:
			s.log.Printf("leave room: %v", err)
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, struct{}{})
}
