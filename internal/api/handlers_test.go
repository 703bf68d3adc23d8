package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"liveroom-server/internal/config"
	"liveroom-server/internal/database"
	"liveroom-server/internal/room"
	"liveroom-server/internal/stats"
	"liveroom-server/internal/testutil"
	"liveroom-server/internal/types"
)

func newTestApp(t *testing.T, mockRepo database.LiveRoomRepository) *LiveRoomApp {
	t.Helper()

	mockStats := &stats.MockStatsRecorder{}
	mockStats.On("RegisterMetric", mock.AnythingOfType("string")).Return()
	mockStats.On("Incr", mock.AnythingOfType("string")).Return().Maybe()

	logger := testutil.TestLogger(t)
	rooms := room.NewService(logger, mockRepo, mockStats)

	return NewLiveRoomApp(http.NewServeMux(), logger, rooms, mockRepo, &config.Config{
		ServerAddr: "localhost:8000",
	})
}

// jsonBody marshals v into a request body.
func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(v))
	return buf
}

func authedRequest(t *testing.T, method, target string, body *bytes.Buffer, user types.User) *http.Request {
	t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(WithUser(req.Context(), user))
}

func Test_healthCheck(t *testing.T) {
	tcases := []struct {
		name    string
		mockErr error
	}{
		{
			name:    "successful health check",
			mockErr: nil,
		},
		{
			name:    "failed health check",
			mockErr: errors.New("db error"),
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockLiveRoomRepository{}
			defer mockRepo.AssertExpectations(t)
			mockRepo.On("Ping").Return(tc.mockErr).Once()

			app := newTestApp(t, mockRepo)
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			app.healthCheck(rr, req)

			if tc.mockErr != nil {
				assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected status code to be 500")
			} else {
				assert.Equal(t, http.StatusOK, rr.Code, "expected status code to be 200")
				assert.Equal(t, "OK", rr.Body.String(), "expected response body to be 'OK'")
			}
		})
	}
}

func TestCreateUserHandler(t *testing.T) {
	const token = "2a75e86a-5dc7-4b16-92d1-e7eeaa386021"

	tcases := []struct {
		name         string
		body         any
		mockErr      error
		expectCreate bool
		expectedCode int
	}{
		{
			name:         "successfully creates a user",
			body:         CreateUserRequest{UserName: "alice", LeaderCardId: 100},
			expectCreate: true,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "invalid json body",
			body:         "invalid json",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "missing user name",
			body:         CreateUserRequest{LeaderCardId: 100},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "negative leader card id",
			body:         CreateUserRequest{UserName: "alice", LeaderCardId: -1},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "db error",
			body:         CreateUserRequest{UserName: "alice", LeaderCardId: 100},
			mockErr:      errors.New("db error"),
			expectCreate: true,
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockLiveRoomRepository{}
			defer mockRepo.AssertExpectations(t)
			if tc.expectCreate {
				mockRepo.On("CreateUser", database.CreateUserParams{
					Name:         "alice",
					LeaderCardId: 100,
					Token:        token,
				}).Return(database.User{
					Id:           1,
					Name:         "alice",
					LeaderCardId: 100,
					Token:        token,
				}, tc.mockErr).Once()
			}

			app := newTestApp(t, mockRepo)
			app.generateToken = func() string { return token }

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/user/create", jsonBody(t, tc.body))
			app.createUser(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusCreated {
				var resp CreateUserResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, token, resp.UserToken, "expected the generated token to be returned")
			}
		})
	}
}

func TestUpdateUserHandler(t *testing.T) {
	user := types.User{Id: 1, Name: "alice", LeaderCardId: 100}

	t.Run("updates display attributes", func(t *testing.T) {
		mockRepo := &database.MockLiveRoomRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("UpdateUser", database.UpdateUserParams{
			UserId:       user.Id,
			Name:         "alicia",
			LeaderCardId: 101,
		}).Return(database.User{Id: 1, Name: "alicia", LeaderCardId: 101}, nil).Once()

		app := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := authedRequest(t, http.MethodPost, "/api/user/update",
			jsonBody(t, CreateUserRequest{UserName: "alicia", LeaderCardId: 101}), user)
		app.updateUser(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp types.User
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, types.User{Id: 1, Name: "alicia", LeaderCardId: 101}, resp)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		app := newTestApp(t, &database.MockLiveRoomRepository{})
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/user/update",
			jsonBody(t, CreateUserRequest{UserName: "alicia", LeaderCardId: 101}))
		app.updateUser(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestMeHandler(t *testing.T) {
	user := types.User{Id: 1, Name: "alice", LeaderCardId: 100}

	app := newTestApp(t, &database.MockLiveRoomRepository{})
	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodGet, "/api/user/me", nil, user)
	app.me(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp types.User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, user, resp)
}

func TestCreateRoomHandler(t *testing.T) {
	user := types.User{Id: 1, Name: "alice", LeaderCardId: 100}

	tcases := []struct {
		name         string
		body         any
		mockErr      error
		expectCreate bool
		expectedCode int
	}{
		{
			name:         "successfully creates a room",
			body:         CreateRoomRequest{LiveId: 5, SelectDifficulty: types.DifficultyNormal},
			expectCreate: true,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "invalid difficulty",
			body:         CreateRoomRequest{LiveId: 5, SelectDifficulty: 3},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "invalid json body",
			body:         "invalid json",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "db error",
			body:         CreateRoomRequest{LiveId: 5, SelectDifficulty: types.DifficultyNormal},
			mockErr:      errors.New("db error"),
			expectCreate: true,
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockLiveRoomRepository{}
			defer mockRepo.AssertExpectations(t)
			if tc.expectCreate {
				mockRepo.On("CreateRoom", database.CreateRoomParams{
					LiveId:     5,
					HostUserId: user.Id,
					Difficulty: types.DifficultyNormal,
				}).Return(int64(42), tc.mockErr).Once()
			}

			app := newTestApp(t, mockRepo)
			rr := httptest.NewRecorder()
			req := authedRequest(t, http.MethodPost, "/api/room/create", jsonBody(t, tc.body), user)
			app.createRoom(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusCreated {
				var resp RoomIdResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, int64(42), resp.RoomId)
			}
		})
	}
}

func TestListRoomsHandler(t *testing.T) {
	t.Run("lists joinable rooms for a live", func(t *testing.T) {
		mockRepo := &database.MockLiveRoomRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("ListRooms", 5).Return([]database.Room{
			{Id: 1, LiveId: 5, UserCount: 1, Status: types.StatusWaiting},
		}, nil).Once()

		app := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/room/list", jsonBody(t, ListRoomRequest{LiveId: 5}))
		app.listRooms(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp ListRoomResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, []types.RoomInfo{
			{RoomId: 1, LiveId: 5, JoinedUserCount: 1, MaxUserCount: types.MaxRoomMembers},
		}, resp.RoomInfoList)
	})

	t.Run("empty listing is an empty array", func(t *testing.T) {
		mockRepo := &database.MockLiveRoomRepository{}
		mockRepo.On("ListRooms", 0).Return([]database.Room(nil), nil).Once()

		app := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/room/list", jsonBody(t, ListRoomRequest{}))
		app.listRooms(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"room_info_list":[]}`, rr.Body.String())
	})

	t.Run("db error", func(t *testing.T) {
		mockRepo := &database.MockLiveRoomRepository{}
		mockRepo.On("ListRooms", 0).Return([]database.Room(nil), errors.New("db error")).Once()

		app := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/room/list", jsonBody(t, ListRoomRequest{}))
		app.listRooms(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestJoinRoomHandler(t *testing.T) {
	user := types.User{Id: 2, Name: "bob", LeaderCardId: 200}

	tcases := []struct {
		name           string
		joinErr        error
		expectedResult types.JoinRoomResult
		expectedCode   int
	}{
		{
			name:           "admitted",
			joinErr:        nil,
			expectedResult: types.JoinOk,
			expectedCode:   http.StatusOK,
		},
		{
			name:           "room full",
			joinErr:        database.ErrRoomFull,
			expectedResult: types.JoinRoomFull,
			expectedCode:   http.StatusOK,
		},
		{
			name:           "room disbanded",
			joinErr:        database.ErrRoomDisbanded,
			expectedResult: types.JoinDisbanded,
			expectedCode:   http.StatusOK,
		},
		{
			name:           "room does not exist",
			joinErr:        sql.ErrNoRows,
			expectedResult: types.JoinOtherError,
			expectedCode:   http.StatusOK,
		},
		{
			name:         "store failure",
			joinErr:      errors.New("db error"),
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockLiveRoomRepository{}
			defer mockRepo.AssertExpectations(t)
			mockRepo.On("JoinRoom", int64(1), user.Id, types.DifficultyHard).
				Return(tc.joinErr).Once()

			app := newTestApp(t, mockRepo)
			rr := httptest.NewRecorder()
			req := authedRequest(t, http.MethodPost, "/api/room/join",
				jsonBody(t, JoinRoomRequest{RoomId: 1, SelectDifficulty: types.DifficultyHard}), user)
			app.joinRoom(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusOK {
				var resp JoinRoomResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tc.expectedResult, resp.JoinRoomResult)
			}
		})
	}

	t.Run("invalid difficulty", func(t *testing.T) {
		app := newTestApp(t, &database.MockLiveRoomRepository{})
		rr := httptest.NewRecorder()
		req := authedRequest(t, http.MethodPost, "/api/room/join",
			jsonBody(t, JoinRoomRequest{RoomId: 1, SelectDifficulty: 9}), user)
		app.joinRoom(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestWaitRoomHandler(t *testing.T) {
	user := types.User{Id: 2, Name: "bob", LeaderCardId: 200}

	t.Run("returns status and members", func(t *testing.T) {
		mockRepo := &database.MockLiveRoomRepository{}
		defer mockRepo.AssertExpectations(t)
		mockRepo.On("GetRoomWithMembers", int64(1)).Return(&database.Room{
			Id:        1,
			LiveId:    5,
			UserCount: 2,
			Status:    types.StatusWaiting,
			Members: []database.RoomMember{
				{UserId: 1, Name: "alice", LeaderCardId: 100, IsHost: true, LiveDifficulty: types.DifficultyNormal},
				{UserId: 2, Name: "bob", LeaderCardId: 200, IsHost: false, LiveDifficulty: types.DifficultyHard},
			},
		}, nil).Once()

		app := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := authedRequest(t, http.MethodPost, "/api/room/wait",
			jsonBody(t, WaitRoomRequest{RoomId: 1}), user)
		app.waitRoom(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp WaitRoomResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, types.StatusWaiting, resp.Status)
		require.Len(t, resp.RoomUserList, 2)
		assert.True(t, resp.RoomUserList[0].IsHost)
		assert.False(t, resp.RoomUserList[0].IsMe)
		assert.True(t, resp.RoomUserList[1].IsMe)
	})

	t.Run("room not found", func(t *testing.T) {
		mockRepo := &database.MockLiveRoomRepository{}
		mockRepo.On("GetRoomWithMembers", int64(9)).Return(nil, sql.ErrNoRows).Once()

		app := newTestApp(t, mockRepo)
		rr := httptest.NewRecorder()
		req := authedRequest(t, http.MethodPost, "/api/room/wait",
			jsonBody(t, WaitRoomRequest{RoomId: 9}), user)
		app.waitRoom(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestLeaveRoomHandler(t *testing.T) {
	user := types.User{Id: 2, Name: "bob", LeaderCardId: 200}

	tcases := []struct {
		name         string
		leaveErr     error
		expectedCode int
	}{
		{
			name:         "leaves the room",
			leaveErr:     nil,
			expectedCode: http.StatusOK,
		},
		{
			name:         "room not found",
			leaveErr:     sql.ErrNoRows,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "not a member",
			leaveErr:     database.ErrNotJoined,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "store failure",
			leaveErr:     errors.New("db error"),
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockLiveRoomRepository{}
			defer mockRepo.AssertExpectations(t)
			mockRepo.On("LeaveRoom", int64(1), user.Id).Return(tc.leaveErr).Once()

			app := newTestApp(t, mockRepo)
			rr := httptest.NewRecorder()
			req := authedRequest(t, http.MethodPost, "/api/room/leave",
				jsonBody(t, LeaveRoomRequest{RoomId: 1}), user)
			app.leaveRoom(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}
