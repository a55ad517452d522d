package models

import "time"

type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

type Tag struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
