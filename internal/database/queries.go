package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"liveroom-server/internal/types"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (db *PgLiveRoomRepository) CreateUser(params CreateUserParams) (User, error) {
	// A token collision surfaces as a unique violation. The store does not
	// retry; that policy belongs to the caller.
	res := db.conn.QueryRow(
		"INSERT INTO users (name, leader_card_id, token, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, name, leader_card_id, token",
		params.Name,
		params.LeaderCardId,
		params.Token,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Name,
		&u.LeaderCardId,
		&u.Token,
	)

	return u, err
}

func (db *PgLiveRoomRepository) GetUserByToken(token string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, leader_card_id, token FROM users "+
			"WHERE token = $1 LIMIT 1",
		token,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Name,
		&u.LeaderCardId,
		&u.Token,
	)

	return u, err
}

func (db *PgLiveRoomRepository) UpdateUser(params UpdateUserParams) (User, error) {
	res := db.conn.QueryRow(
		"UPDATE users SET name = $2, leader_card_id = $3, updated_at = $4 "+
			"WHERE id = $1 RETURNING id, name, leader_card_id",
		params.UserId,
		params.Name,
		params.LeaderCardId,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Name,
		&u.LeaderCardId,
	)

	return u, err
}

// admitMember runs the locked admission step. The FOR UPDATE read serializes
// all admissions into the same room: the capacity check, the membership
// insert and the counter increment all happen while the room row is locked,
// so no two transactions can both observe the last open slot.
func admitMember(tx *sql.Tx, roomId int64, userId int, difficulty types.LiveDifficulty) error {
	var (
		userCount int
		status    int
	)
	err := tx.QueryRow(
		"SELECT user_count, status FROM rooms WHERE id = $1 FOR UPDATE",
		roomId,
	).Scan(&userCount, &status)
	if err != nil {
		return err
	}

	if types.RoomStatus(status) == types.StatusDissolution {
		return ErrRoomDisbanded
	}

	if userCount >= types.MaxRoomMembers {
		return ErrRoomFull
	}

	// First entry wins host status.
	isHost := userCount == 0

	_, err = tx.Exec(
		"INSERT INTO room_members (room_id, user_id, is_host, live_difficulty, created_at) "+
			"VALUES ($1, $2, $3, $4, $5)",
		roomId,
		userId,
		isHost,
		int(difficulty),
		time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyJoined
		}
		return err
	}

	_, err = tx.Exec(
		"UPDATE rooms SET user_count = user_count + 1, updated_at = $2 WHERE id = $1",
		roomId,
		time.Now().UTC(),
	)

	return err
}

// CreateRoom inserts an empty waiting room and admits the creator in the same
// transaction. No other transaction can reference the uncommitted room row,
// so the creator always observes user_count 0 and becomes host.
func (db *PgLiveRoomRepository) CreateRoom(params CreateRoomParams) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res := tx.QueryRow(
		"INSERT INTO rooms (live_id, user_count, status, created_at, updated_at) "+
			"VALUES ($1, 0, $2, $3, $3) RETURNING id",
		params.LiveId,
		int(types.StatusWaiting),
		time.Now().UTC(),
	)

	var roomId int64
	if err = res.Scan(&roomId); err != nil {
		return 0, err
	}

	if err = admitMember(tx, roomId, params.HostUserId, params.Difficulty); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return roomId, nil
}

// JoinRoom admits a user into an existing room. A nonexistent room is
// reported as sql.ErrNoRows, a full room as ErrRoomFull and a dissolved room
// as ErrRoomDisbanded; in every case the transaction is rolled back and the
// room lock released.
func (db *PgLiveRoomRepository) JoinRoom(roomId int64, userId int, difficulty types.LiveDifficulty) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = admitMember(tx, roomId, userId, difficulty); err != nil {
		return err
	}

	return tx.Commit()
}

// LeaveRoom removes a user's membership under the same room lock the
// admission path takes. The last member leaving dissolves the room; if the
// host leaves a non-empty room, the earliest remaining member is promoted.
func (db *PgLiveRoomRepository) LeaveRoom(roomId int64, userId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var userCount int
	err = tx.QueryRow(
		"SELECT user_count FROM rooms WHERE id = $1 FOR UPDATE",
		roomId,
	).Scan(&userCount)
	if err != nil {
		return err
	}

	var wasHost bool
	err = tx.QueryRow(
		"DELETE FROM room_members WHERE room_id = $1 AND user_id = $2 RETURNING is_host",
		roomId,
		userId,
	).Scan(&wasHost)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotJoined
		}
		return err
	}

	userCount--
	if userCount == 0 {
		_, err = tx.Exec(
			"UPDATE rooms SET user_count = 0, status = $2, updated_at = $3 WHERE id = $1",
			roomId,
			int(types.StatusDissolution),
			time.Now().UTC(),
		)
		if err != nil {
			return err
		}
		return tx.Commit()
	}

	if wasHost {
		_, err = tx.Exec(
			"UPDATE room_members SET is_host = TRUE WHERE id = "+
				"(SELECT id FROM room_members WHERE room_id = $1 ORDER BY id LIMIT 1)",
			roomId,
		)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(
		"UPDATE rooms SET user_count = user_count - 1, updated_at = $2 WHERE id = $1",
		roomId,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ListRooms returns joinable rooms: waiting status with an open slot. A zero
// liveId matches any song. The scan takes no locks; counts are a snapshot.
func (db *PgLiveRoomRepository) ListRooms(liveId int) ([]Room, error) {
	query := "SELECT id, live_id, user_count, status FROM rooms " +
		"WHERE status = $1 AND user_count < $2"
	args := []any{int(types.StatusWaiting), types.MaxRoomMembers}

	if liveId != 0 {
		query += " AND live_id = $3"
		args = append(args, liveId)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roomList []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.Id, &room.LiveId, &room.UserCount, &room.Status); err != nil {
			return nil, fmt.Errorf("scan room row: %w", err)
		}

		roomList = append(roomList, room)
	}

	return roomList, rows.Err()
}

// GetRoomWithMembers reads the room's status and its membership rows joined
// with user display attributes, ordered by admission. The read runs in a
// read-only read-committed transaction so a concurrently committing admission
// is observed as a whole, never as a count without its membership row.
func (db *PgLiveRoomRepository) GetRoomWithMembers(roomId int64) (*Room, error) {
	tx, err := db.conn.BeginTx(context.Background(), &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
		ReadOnly:  true,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	room := &Room{Id: roomId, Members: make([]RoomMember, 0)}
	err = tx.QueryRow(
		"SELECT live_id, user_count, status FROM rooms WHERE id = $1",
		roomId,
	).Scan(&room.LiveId, &room.UserCount, &room.Status)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(
		"SELECT m.id, m.user_id, u.name, u.leader_card_id, m.is_host, m.live_difficulty "+
			"FROM room_members m JOIN users u ON m.user_id = u.id "+
			"WHERE m.room_id = $1 ORDER BY m.id",
		roomId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		member := RoomMember{RoomId: roomId}
		err = rows.Scan(
			&member.Id,
			&member.UserId,
			&member.Name,
			&member.LeaderCardId,
			&member.IsHost,
			&member.LiveDifficulty,
		)
		if err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}

		room.Members = append(room.Members, member)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return room, nil
}
