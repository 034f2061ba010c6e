package students

import "time"

// Student は students テーブルの1行（パスワードは含めない）
type Student struct {
	ID        int64     `json:"id"`
	RegNo     string    `json:"reg_no"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RoomNo    *string   `json:"room_no"`
	Hostel    *string   `json:"hostel"`
	Mobile    *string   `json:"mobile"`
	Floor     *string   `json:"floor"`
	Seater    *string   `json:"seater"`
	ACStatus  *string   `json:"ac_status"`
	Enrolled  bool      `json:"enrolled"`
	CreatedAt time.Time `json:"created_at"`
}

// RosterEntry is one row of an imported roster sheet.
type RosterEntry struct {
	RegNo    string
	Name     string
	Email    string
	RoomNo   string
	Hostel   string
	Mobile   string
	Floor    string
	Seater   string
	ACStatus string
}
