package database

import "errors"

// Admission outcomes. These are results of a correctly executed transaction,
// not store failures; the room service maps them onto the JoinRoomResult
// enumeration. Anything else coming out of JoinRoom/LeaveRoom is a store
// failure and non-retryable within the request.
var (
	// ErrRoomFull is returned when the locked capacity check finds the room
	// already holding the maximum number of members.
	ErrRoomFull = errors.New("room is full")
	// ErrRoomDisbanded is returned when the room has been dissolved.
	ErrRoomDisbanded = errors.New("room is disbanded")
	// ErrAlreadyJoined is returned when the user already holds a membership
	// row in the room.
	ErrAlreadyJoined = errors.New("user already joined room")
	// ErrNotJoined is returned by LeaveRoom when the user holds no membership
	// row in the room.
	ErrNotJoined = errors.New("user is not a member of room")
)
