package db

import "time"

type (
	WarningRecord struct {
		UserID int64 `db:"user_id"`
		Warns  int   `db:"warns"`
	}

	BanRecord struct {
		UserID int64     `db:"user_id"`
		Until  time.Time `db:"until"`
	}
)
